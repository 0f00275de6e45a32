// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// ContextKey 上下文键类型
type ContextKey string

// RequestIDKey 请求ID在上下文中的键
const RequestIDKey ContextKey = "request_id"

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level" mapstructure:"level"`
	Format     string `yaml:"format" json:"format" mapstructure:"format"` // json/console
	Output     string `yaml:"output" json:"output" mapstructure:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty" mapstructure:"file_path"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty" mapstructure:"time_format"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器，仅首次调用生效
func Init(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))
		logger = zerolog.New(newWriter(cfg)).With().Timestamp().Logger()
	})
}

// New 按配置创建独立日志器（测试或子命令使用）
func New(cfg Config) zerolog.Logger {
	return zerolog.New(newWriter(cfg)).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
}

func newWriter(cfg Config) io.Writer {
	var output io.Writer
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "file":
		output = os.Stderr
		if cfg.FilePath != "" {
			if f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
				output = f
			}
		}
	default:
		output = os.Stderr
	}

	if cfg.Format == "console" {
		timeFormat := cfg.TimeFormat
		if timeFormat == "" {
			timeFormat = time.RFC3339
		}
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: timeFormat}
	}
	return output
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	Init(DefaultConfig())
	return &logger
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}
	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// RosterLogger 排班引擎专用日志器
type RosterLogger struct {
	base *zerolog.Logger
}

// NewRosterLogger 创建排班引擎日志器
// 生成过程只记调试日志，调用方自行记录结果
func NewRosterLogger() *RosterLogger {
	return newRosterLogger(*Get())
}

func newRosterLogger(base zerolog.Logger) *RosterLogger {
	l := base.With().Str("component", "roster").Logger()
	return &RosterLogger{base: &l}
}

// StartGeneration 记录排班开始
func (l *RosterLogger) StartGeneration(runID string, members, slots int) {
	l.base.Debug().
		Str("run_id", runID).
		Int("members", members).
		Int("slots", slots).
		Msg("开始生成值班表")
}

// SlotUnfilled 记录时段无人可排
func (l *RosterLogger) SlotUnfilled(date string, kind string, role string) {
	l.base.Debug().
		Str("date", date).
		Str("slot", kind).
		Str("role", role).
		Msg("无可用成员")
}

// GenerationComplete 记录排班完成
func (l *RosterLogger) GenerationComplete(runID string, duration time.Duration, fillRate float64) {
	l.base.Debug().
		Str("run_id", runID).
		Dur("duration", duration).
		Float64("fill_rate", fillRate).
		Msg("值班表生成完成")
}
