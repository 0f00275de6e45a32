package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/paiban/oncall/internal/database"
	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
)

// RosterRepositoryInterface 值班表仓储接口
type RosterRepositoryInterface interface {
	Create(ctx context.Context, roster *model.Roster) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Roster, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*model.Roster, int, error)
}

// RosterRepository 值班表仓储实现
type RosterRepository struct {
	db *database.DB
}

// NewRosterRepository 创建值班表仓储
func NewRosterRepository(db *database.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// rosterRow 值班表行
type rosterRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	StartDate string    `db:"start_date"`
	EndDate   string    `db:"end_date"`
	Members   string    `db:"members"`
	Leaves    string    `db:"leaves"`
	FillRate  float64   `db:"fill_rate"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Create 保存值班表及其分配和负载，在一个事务内完成
func (r *RosterRepository) Create(ctx context.Context, roster *model.Roster) error {
	if roster.ID == uuid.Nil {
		roster.ID = uuid.New()
	}
	now := time.Now().UTC()
	if roster.CreatedAt.IsZero() {
		roster.CreatedAt = now
	}
	roster.UpdatedAt = now

	membersJSON, err := json.Marshal(nonNil(roster.Members))
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "序列化成员失败")
	}
	leavesJSON, err := json.Marshal(nonNilLeaves(roster.Leaves))
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "序列化请假失败")
	}

	err = r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO rosters (
				id, name, start_date, end_date, members, leaves, fill_rate, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`),
			roster.ID.String(), roster.Name, roster.StartDate, roster.EndDate,
			string(membersJSON), string(leavesJSON), roster.FillRate, roster.CreatedAt, roster.UpdatedAt,
		)
		if err != nil {
			return err
		}

		insertAssignment := tx.Rebind(`
			INSERT INTO roster_assignments (
				roster_id, slot_index, date, slot, primary_member, secondary_member
			) VALUES (?, ?, ?, ?, ?, ?)
		`)
		for _, a := range roster.Assignments {
			if _, err := tx.ExecContext(ctx, insertAssignment,
				roster.ID.String(), a.Index, a.Date, string(a.Kind), a.Primary, a.Secondary,
			); err != nil {
				return err
			}
		}

		insertLoad := tx.Rebind(`
			INSERT INTO roster_loads (
				roster_id, position, member, load_units, weekend_count, primary_count, secondary_count
			) VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		for i, l := range roster.Loads {
			if _, err := tx.ExecContext(ctx, insertLoad,
				roster.ID.String(), i, l.Member, l.Load, l.WeekendCount, l.PrimaryCount, l.SecondaryCount,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Database("创建值班表失败", err)
	}
	return nil
}

// GetByID 根据ID获取值班表，包含分配和负载
func (r *RosterRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Roster, error) {
	var row rosterRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT id, name, start_date, end_date, members, leaves, fill_rate, created_at, updated_at
		FROM rosters
		WHERE id = ?
	`), id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("值班表", id.String())
	}
	if err != nil {
		return nil, apperrors.Database("查询值班表失败", err)
	}

	roster, err := row.toModel()
	if err != nil {
		return nil, err
	}

	roster.Assignments = make([]model.Assignment, 0)
	if err := r.db.SelectContext(ctx, &roster.Assignments, r.db.Rebind(`
		SELECT date, slot, slot_index, primary_member, secondary_member
		FROM roster_assignments
		WHERE roster_id = ?
		ORDER BY slot_index
	`), id.String()); err != nil {
		return nil, apperrors.Database("查询值班分配失败", err)
	}

	roster.Loads = make([]model.MemberLoad, 0)
	if err := r.db.SelectContext(ctx, &roster.Loads, r.db.Rebind(`
		SELECT member, load_units, weekend_count, primary_count, secondary_count
		FROM roster_loads
		WHERE roster_id = ?
		ORDER BY position
	`), id.String()); err != nil {
		return nil, apperrors.Database("查询成员负载失败", err)
	}

	return roster, nil
}

// Delete 删除值班表
func (r *RosterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var affected int64
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		// 先删除分配和负载
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM roster_assignments WHERE roster_id = ?"), id.String()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM roster_loads WHERE roster_id = ?"), id.String()); err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM rosters WHERE id = ?"), id.String())
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return apperrors.Database("删除值班表失败", err)
	}
	if affected == 0 {
		return apperrors.NotFound("值班表", id.String())
	}
	return nil
}

// List 列出值班表（不含分配明细），按创建时间倒序
func (r *RosterRepository) List(ctx context.Context, filter ListFilter) ([]*model.Roster, int, error) {
	filter = filter.Normalize()

	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, `name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
	}
	if filter.StartDate != "" {
		conditions = append(conditions, "start_date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		conditions = append(conditions, "end_date <= ?")
		args = append(args, filter.EndDate)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind("SELECT COUNT(*) FROM rosters "+whereClause), args...); err != nil {
		return nil, 0, apperrors.Database("统计值班表失败", err)
	}

	var rows []rosterRow
	query := r.db.Rebind(`
		SELECT id, name, start_date, end_date, members, leaves, fill_rate, created_at, updated_at
		FROM rosters ` + whereClause + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`)
	if err := r.db.SelectContext(ctx, &rows, query, append(args, filter.Limit, filter.Offset)...); err != nil {
		return nil, 0, apperrors.Database("查询值班表列表失败", err)
	}

	rosters := make([]*model.Roster, 0, len(rows))
	for _, row := range rows {
		roster, err := row.toModel()
		if err != nil {
			return nil, 0, err
		}
		rosters = append(rosters, roster)
	}
	return rosters, total, nil
}

func (row rosterRow) toModel() (*model.Roster, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "值班表ID格式错误")
	}

	roster := &model.Roster{
		BaseModel: model.BaseModel{ID: id, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
		Name:      row.Name,
		StartDate: row.StartDate,
		EndDate:   row.EndDate,
		FillRate:  row.FillRate,
	}
	if err := json.Unmarshal([]byte(row.Members), &roster.Members); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "成员数据格式错误")
	}
	if err := json.Unmarshal([]byte(row.Leaves), &roster.Leaves); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "请假数据格式错误")
	}
	return roster, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilLeaves(l []model.Leave) []model.Leave {
	if l == nil {
		return []model.Leave{}
	}
	return l
}
