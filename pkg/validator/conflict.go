// Package validator 提供值班表验证功能
package validator

import (
	"fmt"
	"sort"

	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
	"github.com/paiban/oncall/pkg/scheduler/constraint/builtin"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictSameSlot     ConflictType = "same_slot"     // 同一时段主副同一人
	ConflictPrimaryGap   ConflictType = "primary_gap"   // 主值班冷却不足
	ConflictSecondaryGap ConflictType = "secondary_gap" // 副值班冷却不足
	ConflictLeave        ConflictType = "leave"         // 请假期间被排班
)

// Conflict 冲突信息
type Conflict struct {
	Type     ConflictType   `json:"type"`
	Severity string         `json:"severity"` // error/warning
	Member   string         `json:"member"`
	Date     string         `json:"date"`
	Kind     model.SlotKind `json:"slot"`
	Index    int            `json:"index"`
	Role     model.Role     `json:"role"`
	Message  string         `json:"message"`
}

// DetectorConfig 检测器配置
type DetectorConfig struct {
	Rules       constraint.Rules // 间隔规则
	CheckLeaves bool             // 是否检查请假
}

// DefaultDetectorConfig 返回默认配置
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		Rules:       constraint.DefaultRules(),
		CheckLeaves: true,
	}
}

// ConflictDetector 冲突检测器
// 用于手工编辑过的值班表，规则与排班引擎一致
type ConflictDetector struct {
	config *DetectorConfig
}

// NewConflictDetector 创建冲突检测器
func NewConflictDetector(config *DetectorConfig) *ConflictDetector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	return &ConflictDetector{config: config}
}

type duty struct {
	member string
	role   model.Role
	a      model.Assignment
}

// DetectAll 检测所有冲突，结果按时段序号排列
func (d *ConflictDetector) DetectAll(assignments []model.Assignment, leaves []model.Leave) []Conflict {
	conflicts := make([]Conflict, 0)

	sorted := make([]model.Assignment, len(assignments))
	copy(sorted, assignments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})

	byMember := make(map[string][]duty)
	var order []string
	for _, a := range sorted {
		if a.HasPrimary() && a.Primary == a.Secondary {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictSameSlot,
				Severity: "error",
				Member:   a.Primary,
				Date:     a.Date,
				Kind:     a.Kind,
				Index:    a.Index,
				Role:     model.RoleSecondary,
				Message:  fmt.Sprintf("%s 同时担任主值班和副值班", a.Primary),
			})
		}
		for _, role := range []model.Role{model.RolePrimary, model.RoleSecondary} {
			m := a.Member(role)
			if m == model.Unfilled {
				continue
			}
			if _, ok := byMember[m]; !ok {
				order = append(order, m)
			}
			byMember[m] = append(byMember[m], duty{member: m, role: role, a: a})
		}
	}

	for _, m := range order {
		conflicts = append(conflicts, d.detectGapViolations(byMember[m])...)
		if d.config.CheckLeaves {
			conflicts = append(conflicts, d.detectLeaveViolations(byMember[m], leaves)...)
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].Index < conflicts[j].Index
	})
	return conflicts
}

// DetectForAssignment 检测单个分配放入现有值班表后产生的冲突
// 现有值班表中同序号的分配会被替换
func (d *ConflictDetector) DetectForAssignment(a model.Assignment, existing []model.Assignment, leaves []model.Leave) []Conflict {
	merged := make([]model.Assignment, 0, len(existing)+1)
	for _, e := range existing {
		if e.Index != a.Index {
			merged = append(merged, e)
		}
	}
	merged = append(merged, a)

	var conflicts []Conflict
	for _, c := range d.DetectAll(merged, leaves) {
		if c.Index == a.Index {
			conflicts = append(conflicts, c)
		}
	}
	return conflicts
}

// detectGapViolations 按时间顺序检查一个成员的所有值班
func (d *ConflictDetector) detectGapViolations(duties []duty) []Conflict {
	var conflicts []Conflict
	gap := d.config.Rules.PrimaryGap
	window := d.config.Rules.SecondaryWindow

	lastPrimary, lastSecondary := -1, -1
	hasPrimary, hasSecondary := false, false

	for _, du := range duties {
		i := du.a.Index
		switch du.role {
		case model.RolePrimary:
			if hasPrimary && i-lastPrimary <= gap {
				conflicts = append(conflicts, d.gapConflict(du, ConflictPrimaryGap, i-lastPrimary, "上次主值班"))
			} else if hasSecondary && i-lastSecondary <= gap {
				conflicts = append(conflicts, d.gapConflict(du, ConflictPrimaryGap, i-lastSecondary, "上次副值班"))
			}
			lastPrimary, hasPrimary = i, true
		case model.RoleSecondary:
			// 同一时段兼任由 same_slot 报告
			if hasPrimary && lastPrimary != i && i-lastPrimary <= gap {
				conflicts = append(conflicts, d.gapConflict(du, ConflictPrimaryGap, i-lastPrimary, "上次主值班"))
			} else if hasSecondary && abs(i-lastSecondary) <= window {
				conflicts = append(conflicts, d.gapConflict(du, ConflictSecondaryGap, abs(i-lastSecondary), "上次副值班"))
			}
			lastSecondary, hasSecondary = i, true
		}
	}

	return conflicts
}

func (d *ConflictDetector) gapConflict(du duty, t ConflictType, distance int, since string) Conflict {
	return Conflict{
		Type:     t,
		Severity: "error",
		Member:   du.member,
		Date:     du.a.Date,
		Kind:     du.a.Kind,
		Index:    du.a.Index,
		Role:     du.role,
		Message:  fmt.Sprintf("%s 距%s仅 %d 个时段", du.member, since, distance),
	}
}

// detectLeaveViolations 检查请假期间的排班
func (d *ConflictDetector) detectLeaveViolations(duties []duty, leaves []model.Leave) []Conflict {
	var conflicts []Conflict
	for _, du := range duties {
		if builtin.IsOnLeave(du.member, du.a.Date, du.a.Kind, leaves) {
			conflicts = append(conflicts, Conflict{
				Type:     ConflictLeave,
				Severity: "error",
				Member:   du.member,
				Date:     du.a.Date,
				Kind:     du.a.Kind,
				Index:    du.a.Index,
				Role:     du.role,
				Message:  fmt.Sprintf("%s 在 %s %s 请假", du.member, du.a.Date, du.a.Kind),
			})
		}
	}
	return conflicts
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
