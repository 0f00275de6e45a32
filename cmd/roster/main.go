// roster 命令行工具：读取 YAML 团队配置并生成值班表

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/paiban/oncall/internal/config"
	"github.com/paiban/oncall/internal/database"
	"github.com/paiban/oncall/internal/repository"
	apperrors "github.com/paiban/oncall/pkg/errors"
	"github.com/paiban/oncall/pkg/export"
	"github.com/paiban/oncall/pkg/logger"
	"github.com/paiban/oncall/pkg/model"
	"github.com/paiban/oncall/pkg/roster"
	"github.com/paiban/oncall/pkg/scheduler/solver"
	"github.com/paiban/oncall/pkg/stats"
)

// 退出码
const (
	exitOK          = 0
	exitUsage       = 2
	exitConfigError = 3
	exitFailure     = 1
)

// options 命令行参数
type options struct {
	configPath   string
	settingsPath string
	format       string
	out          string
	save         bool
	name         string
	dsn          string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("roster", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "团队配置 YAML 文件（必填）")
	fs.StringVar(&opts.settingsPath, "settings", "", "服务配置文件，提供间隔规则和数据库设置")
	fs.StringVar(&opts.format, "format", "table", "输出格式: table|csv|json|yaml|markdown|html")
	fs.StringVar(&opts.out, "out", "", "输出文件，默认标准输出")
	fs.BoolVar(&opts.save, "save", false, "保存生成结果到数据库")
	fs.StringVar(&opts.name, "name", "", "保存时使用的值班表名称")
	fs.StringVar(&opts.dsn, "db", "", "数据库 DSN，覆盖服务配置")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if opts.configPath == "" {
		fmt.Fprintln(stderr, "缺少 -config 参数")
		fs.Usage()
		return exitUsage
	}

	_ = godotenv.Load()

	settings, err := config.Load(opts.settingsPath)
	if err != nil {
		fmt.Fprintf(stderr, "配置错误: %v\n", err)
		return exitConfigError
	}
	if opts.dsn != "" {
		settings.Database.DSN = opts.dsn
	}
	logger.Init(logger.Config{Level: settings.App.LogLevel, Format: "console", Output: "stderr"})

	data, err := os.ReadFile(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "读取团队配置失败: %v\n", err)
		return exitConfigError
	}
	cfg, err := export.UnmarshalYAML(data)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitConfigError
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		printValidation(stderr, err)
		return exitConfigError
	}

	ctx := context.Background()
	if settings.Roster.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Roster.Timeout)
		defer cancel()
	}

	result, err := roster.Plan(ctx, cfg.TeamMembers, cfg.DateRange.StartDate, cfg.DateRange.EndDate, cfg.Leaves,
		roster.WithRules(settings.Roster.Rules()))
	if err != nil {
		fmt.Fprintf(stderr, "生成值班表失败: %v\n", err)
		return exitFailure
	}

	var w io.Writer = stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			fmt.Fprintf(stderr, "创建输出文件失败: %v\n", err)
			return exitFailure
		}
		defer f.Close()
		w = f
	}

	if err := render(w, opts.format, cfg, result); err != nil {
		fmt.Fprintf(stderr, "输出失败: %v\n", err)
		return exitFailure
	}

	if opts.save {
		id, err := save(ctx, &settings.Database, opts.name, cfg, result)
		if err != nil {
			fmt.Fprintf(stderr, "保存失败: %v\n", err)
			return exitFailure
		}
		fmt.Fprintf(stderr, "已保存值班表 %s\n", id)
	}

	return exitOK
}

// render 按格式输出
func render(w io.Writer, format string, cfg *export.RosterConfig, result *solver.Result) error {
	switch strings.ToLower(format) {
	case "table":
		return writeTable(w, result)
	case "csv":
		return export.WriteCSV(w, roster.FormatTable(result.Assignments))
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"run_id":      result.RunID,
			"assignments": result.Assignments,
			"table":       roster.FormatTable(result.Assignments),
			"loads":       result.Loads,
			"statistics":  result.Statistics,
		})
	case "markdown", "md":
		md, err := export.MarkdownTable(roster.FormatTable(result.Assignments))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	case "html":
		title := fmt.Sprintf("值班表 %s ~ %s", cfg.DateRange.StartDate, cfg.DateRange.EndDate)
		return export.WriteHTML(w, title, roster.FormatTable(result.Assignments))
	case "yaml":
		data, err := export.MarshalYAML(*cfg)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("不支持的输出格式: %s", format)
	}
}

// writeTable 以对齐文本输出值班表、负载和覆盖率
func writeTable(w io.Writer, result *solver.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(export.CSVHeader, "\t"))
	for _, row := range roster.FormatTable(result.Assignments) {
		fmt.Fprintln(tw, strings.Join(export.Record(row), "\t"))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Member\tLoad\tWeekend\tPrimary\tSecondary")
	for _, l := range result.Loads {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%d\t%d\n", l.Member, l.Load, l.WeekendCount, l.PrimaryCount, l.SecondaryCount)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	analyzer := stats.NewCoverageAnalyzer()
	_, err := fmt.Fprintf(w, "\n%s", analyzer.GenerateCoverageReport(analyzer.Analyze(result.Assignments)))
	return err
}

// save 将生成结果写入数据库
func save(ctx context.Context, dbCfg *config.DatabaseConfig, name string, cfg *export.RosterConfig, result *solver.Result) (string, error) {
	db, err := database.Open(dbCfg)
	if err != nil {
		return "", err
	}
	defer db.Close()

	if name == "" {
		name = fmt.Sprintf("值班表 %s ~ %s", cfg.DateRange.StartDate, cfg.DateRange.EndDate)
	}
	r := &model.Roster{
		Name:        name,
		StartDate:   cfg.DateRange.StartDate,
		EndDate:     cfg.DateRange.EndDate,
		Members:     cfg.TeamMembers,
		Leaves:      cfg.Leaves,
		Assignments: result.Assignments,
		Loads:       result.Loads,
		FillRate:    result.Statistics.FillRate,
	}
	if err := repository.NewRosterRepository(db).Create(ctx, r); err != nil {
		return "", err
	}
	return r.ID.String(), nil
}

// printValidation 逐字段输出校验错误
func printValidation(w io.Writer, err error) {
	appErr := apperrors.From(err)
	fmt.Fprintln(w, appErr.Message)

	fields := make([]string, 0, len(appErr.Fields))
	for field := range appErr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(w, "  %s: %v\n", field, appErr.Fields[field])
	}
}
