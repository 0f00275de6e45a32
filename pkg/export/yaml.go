// Package export 提供值班配置的 YAML 导入导出和值班表的 CSV 导出
package export

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
)

// RosterConfig 值班配置文件
type RosterConfig struct {
	TeamMembers []string        `yaml:"teamMembers" json:"members"`
	DateRange   model.DateRange `yaml:"dateRange" json:"date_range"`
	Leaves      []model.Leave   `yaml:"leaves" json:"leaves"`
}

type rawDateRange struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type rawConfig struct {
	TeamMembers yaml.Node     `yaml:"teamMembers"`
	DateRange   *rawDateRange `yaml:"dateRange"`
	Leaves      []model.Leave `yaml:"leaves"`
}

// MarshalYAML 导出为 YAML，缩进两个空格
func MarshalYAML(cfg RosterConfig) ([]byte, error) {
	if cfg.TeamMembers == nil {
		cfg.TeamMembers = []string{}
	}
	if cfg.Leaves == nil {
		cfg.Leaves = []model.Leave{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "导出 YAML 失败")
	}
	if err := enc.Close(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "导出 YAML 失败")
	}
	return buf.Bytes(), nil
}

// UnmarshalYAML 解析 YAML 配置
// 只检查文档结构，业务校验见 Validate；请假记录按顺序编号
func UnmarshalYAML(data []byte) (*RosterConfig, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "Failed to parse YAML file").
			WithDetails(err.Error())
	}

	if raw.TeamMembers.Kind != yaml.SequenceNode {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "Invalid YAML: teamMembers must be an array")
	}
	var members []string
	if err := raw.TeamMembers.Decode(&members); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput, "Invalid YAML: teamMembers must be an array")
	}

	if raw.DateRange == nil || raw.DateRange.Start == "" || raw.DateRange.End == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "Invalid YAML: dateRange must have start and end dates")
	}

	leaves := make([]model.Leave, 0, len(raw.Leaves))
	for i, l := range raw.Leaves {
		l.ID = int64(i + 1)
		leaves = append(leaves, l)
	}

	return &RosterConfig{
		TeamMembers: members,
		DateRange:   model.DateRange{StartDate: raw.DateRange.Start, EndDate: raw.DateRange.End},
		Leaves:      leaves,
	}, nil
}

// Validate 校验配置
// 返回 VALIDATION_FAILED 错误，Fields 中列出每个字段的第一条问题
func (c *RosterConfig) Validate() error {
	ve := &apperrors.ValidationErrors{}

	known := make(map[string]bool, len(c.TeamMembers))
	if len(c.TeamMembers) == 0 {
		ve.Add("members", "至少需要一名成员")
	}
	for i, m := range c.TeamMembers {
		name := strings.TrimSpace(m)
		if name == "" {
			ve.Add(fmt.Sprintf("members[%d]", i), "成员名称不能为空")
			continue
		}
		if known[name] {
			ve.Add(fmt.Sprintf("members[%d]", i), fmt.Sprintf("成员 %s 重复", name))
			continue
		}
		known[name] = true
	}

	rangeValid := true
	if _, err := model.ParseDate(c.DateRange.StartDate); err != nil {
		ve.Add("start_date", "开始日期格式错误，应为 YYYY-MM-DD")
		rangeValid = false
	}
	if _, err := model.ParseDate(c.DateRange.EndDate); err != nil {
		ve.Add("end_date", "结束日期格式错误，应为 YYYY-MM-DD")
		rangeValid = false
	}
	if rangeValid && c.DateRange.Days() == 0 {
		ve.Add("end_date", "结束日期不能早于开始日期")
		rangeValid = false
	}

	for i, l := range c.Leaves {
		field := fmt.Sprintf("leaves[%d]", i)
		if !known[strings.TrimSpace(l.Member)] {
			ve.Add(field+".member", fmt.Sprintf("未知成员 %s", l.Member))
		}
		if !l.Type.Valid() {
			ve.Add(field+".type", fmt.Sprintf("未知请假类型 %s", l.Type))
			continue
		}
		if l.Type != model.LeaveCustom {
			continue
		}
		if _, err := model.ParseDate(l.Date); err != nil {
			ve.Add(field+".date", "自定义请假需要有效日期")
		} else if rangeValid && !c.DateRange.Contains(l.Date) {
			ve.Add(field+".date", "请假日期不在排班范围内")
		}
		if !l.Slot.Valid() {
			ve.Add(field+".slot", "自定义请假需要指定时段 Morning/Evening/Both")
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// Normalize 去除成员名两端空白
func (c *RosterConfig) Normalize() {
	for i, m := range c.TeamMembers {
		c.TeamMembers[i] = strings.TrimSpace(m)
	}
	for i := range c.Leaves {
		c.Leaves[i].Member = strings.TrimSpace(c.Leaves[i].Member)
	}
}

// ToDraft 转换为草稿
func (c *RosterConfig) ToDraft() *model.Draft {
	return &model.Draft{
		Members:   c.TeamMembers,
		StartDate: c.DateRange.StartDate,
		EndDate:   c.DateRange.EndDate,
		Leaves:    c.Leaves,
	}
}

// FromDraft 由草稿生成配置
func FromDraft(d *model.Draft) RosterConfig {
	return RosterConfig{
		TeamMembers: d.Members,
		DateRange:   model.DateRange{StartDate: d.StartDate, EndDate: d.EndDate},
		Leaves:      d.Leaves,
	}
}
