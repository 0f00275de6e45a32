// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"strings"
)

// ListFilter 列表查询过滤器
type ListFilter struct {
	Search    string `json:"search,omitempty"`     // 按名称模糊匹配
	StartDate string `json:"start_date,omitempty"` // 值班表开始日期不早于
	EndDate   string `json:"end_date,omitempty"`   // 值班表结束日期不晚于
	Offset    int    `json:"offset"`
	Limit     int    `json:"limit"`
}

// DefaultListFilter 返回默认过滤器
func DefaultListFilter() ListFilter {
	return ListFilter{
		Offset: 0,
		Limit:  20,
	}
}

// WithLimit 设置限制
func (f ListFilter) WithLimit(limit int) ListFilter {
	f.Limit = limit
	return f
}

// WithOffset 设置偏移
func (f ListFilter) WithOffset(offset int) ListFilter {
	f.Offset = offset
	return f
}

// WithSearch 设置名称搜索
func (f ListFilter) WithSearch(search string) ListFilter {
	f.Search = search
	return f
}

// WithDateRange 设置日期范围
func (f ListFilter) WithDateRange(start, end string) ListFilter {
	f.StartDate = start
	f.EndDate = end
	return f
}

// Normalize 限制分页参数，limit 超出 1..100 时取 20
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// likeEscaper 转义 LIKE 通配符，配合 ESCAPE '\' 使用
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// executor 数据库连接与事务共有的操作
type executor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Rebind(query string) string
}
