// Package constraints 描述排班引擎支持的约束，供前端展示和配置
package constraints

import (
	"strconv"

	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

// ConstraintParam 约束参数定义
type ConstraintParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, string
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
}

// ConstraintDefinition 约束定义
type ConstraintDefinition struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Type        string            `json:"type"` // 目前只有 hard
	Roles       []string          `json:"roles"`
	Description string            `json:"description"`
	Params      []ConstraintParam `json:"params"`
}

// LibraryResponse 约束库响应
type LibraryResponse struct {
	Rules   constraint.Rules       `json:"rules"`
	Library []ConstraintDefinition `json:"library"`
}

// GetLibrary 获取约束库，参数默认值取自当前生效的间隔规则
func GetLibrary(rules constraint.Rules) []ConstraintDefinition {
	return []ConstraintDefinition{
		{
			Name:        string(constraint.TypeLeave),
			DisplayName: "请假",
			Type:        "hard",
			Roles:       []string{"primary", "secondary"},
			Description: "请假期间不安排值班。allMorning/allEvening 只影响工作日对应时段，weekend 影响周六周日，complete 影响整个周期，custom 指定日期和时段（周末时段对任意时段的请假都生效）。",
			Params: []ConstraintParam{
				{Name: "type", Type: "string", Description: "allMorning | allEvening | complete | weekend | custom"},
				{Name: "date", Type: "string", Description: "custom 请假日期 YYYY-MM-DD"},
				{Name: "slot", Type: "string", Description: "custom 请假时段 Morning | Evening | Both"},
			},
		},
		{
			Name:        string(constraint.TypePrimaryGap),
			DisplayName: "主值班间隔",
			Type:        "hard",
			Roles:       []string{"primary", "secondary"},
			Description: "距上次主值班的时段数必须大于间隔；担任主值班时距上次副值班也必须大于间隔。",
			Params: []ConstraintParam{
				{Name: "primary_gap", Type: "int", Description: "最小间隔时段数", Default: strconv.Itoa(rules.PrimaryGap), Min: "0"},
			},
		},
		{
			Name:        string(constraint.TypeSecondaryGap),
			DisplayName: "副值班间隔",
			Type:        "hard",
			Roles:       []string{"secondary"},
			Description: "距上次副值班的时段数必须大于窗口。",
			Params: []ConstraintParam{
				{Name: "secondary_window", Type: "int", Description: "最小间隔时段数", Default: strconv.Itoa(rules.SecondaryWindow), Min: "0"},
			},
		},
		{
			Name:        string(constraint.TypeDistinctRoles),
			DisplayName: "主副不同人",
			Type:        "hard",
			Roles:       []string{"secondary"},
			Description: "同一时段的主值班不能兼任副值班。",
			Params:      []ConstraintParam{},
		},
	}
}

// GetByName 按名称查找约束定义
func GetByName(rules constraint.Rules, name string) (ConstraintDefinition, bool) {
	for _, def := range GetLibrary(rules) {
		if def.Name == name {
			return def, true
		}
	}
	return ConstraintDefinition{}, false
}
