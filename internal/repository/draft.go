package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/paiban/oncall/internal/database"
	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
)

// DefaultDraftKey 未指定键时使用的草稿键
const DefaultDraftKey = "oncall-roster-data"

// DraftRepository 草稿仓储，保存尚未生成的成员、日期和请假输入
type DraftRepository struct {
	db executor
}

// NewDraftRepository 创建草稿仓储
func NewDraftRepository(db *database.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

type draftRow struct {
	Key     string    `db:"draft_key"`
	Data    string    `db:"data"`
	SavedAt time.Time `db:"saved_at"`
}

// Save 保存草稿，已存在则覆盖
func (r *DraftRepository) Save(ctx context.Context, key string, draft *model.Draft) error {
	draft.SavedAt = time.Now().UTC()
	data, err := json.Marshal(draft)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "序列化草稿失败")
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO drafts (draft_key, data, saved_at) VALUES (?, ?, ?)
		ON CONFLICT (draft_key) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at
	`), key, string(data), draft.SavedAt)
	if err != nil {
		return apperrors.Database("保存草稿失败", err)
	}
	return nil
}

// Load 读取草稿，不存在时返回 nil, nil
func (r *DraftRepository) Load(ctx context.Context, key string) (*model.Draft, error) {
	var row draftRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(
		"SELECT draft_key, data, saved_at FROM drafts WHERE draft_key = ?",
	), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Database("读取草稿失败", err)
	}

	var draft model.Draft
	if err := json.Unmarshal([]byte(row.Data), &draft); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "草稿数据格式错误")
	}
	return &draft, nil
}

// Clear 删除草稿，不存在时不报错
func (r *DraftRepository) Clear(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM drafts WHERE draft_key = ?"), key); err != nil {
		return apperrors.Database("删除草稿失败", err)
	}
	return nil
}
