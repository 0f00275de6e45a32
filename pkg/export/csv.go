package export

import (
	"encoding/csv"
	"io"

	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/model"
)

// CSVHeader CSV 表头
var CSVHeader = []string{
	"Date",
	"Morning Primary",
	"Morning Secondary",
	"Evening Primary",
	"Evening Secondary",
	"Weekend Primary",
	"Weekend Secondary",
}

// ErrNoRosterData 没有可导出的数据
var ErrNoRosterData = apperrors.New(apperrors.CodeInvalidInput, "no roster data to export")

// WriteCSV 按日期一行写出值班表
// 工作日行的周末列留空，周末行的早晚班列留空；未分配显示为 —
func WriteCSV(w io.Writer, rows []model.RosterRow) error {
	if len(rows) == 0 {
		return ErrNoRosterData
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "写入 CSV 失败")
	}
	for _, row := range rows {
		if err := cw.Write(Record(row)); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "写入 CSV 失败")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "写入 CSV 失败")
	}
	return nil
}

// Record 将一行值班表转换为 CSV 字段
func Record(row model.RosterRow) []string {
	if row.IsWeekend {
		return []string{
			row.Date, "", "", "", "",
			model.Display(row.WeekendPrimary),
			model.Display(row.WeekendSecondary),
		}
	}
	return []string{
		row.Date,
		model.Display(row.MorningPrimary),
		model.Display(row.MorningSecondary),
		model.Display(row.EveningPrimary),
		model.Display(row.EveningSecondary),
		"", "",
	}
}
