// Package config 提供配置管理
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/paiban/oncall/pkg/notify"
	"github.com/paiban/oncall/pkg/scheduler/constraint"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	Roster   RosterConfig   `mapstructure:"roster"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name      string `mapstructure:"name"`
	Env       string `mapstructure:"env"`
	Port      int    `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite3 / postgres
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ConnString 返回数据库连接字符串
// postgres 未显式配置 dsn 时由主机等字段拼出
func (c *DatabaseConfig) ConnString() string {
	if c.DSN != "" || c.Driver != DriverPostgres {
		return c.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// 支持的数据库驱动
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// APIConfig API配置
type APIConfig struct {
	RateLimit int           `mapstructure:"rate_limit"`
	Timeout   time.Duration `mapstructure:"timeout"`
	APIKey    string        `mapstructure:"api_key"`
	CORS      CORSConfig    `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Origins []string `mapstructure:"origins"`
}

// RosterConfig 值班表生成配置
type RosterConfig struct {
	PrimaryGap      int           `mapstructure:"primary_gap"`
	SecondaryWindow int           `mapstructure:"secondary_window"`
	DefaultDays     int           `mapstructure:"default_days"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// Rules 返回间隔规则
func (c RosterConfig) Rules() constraint.Rules {
	return constraint.Rules{
		PrimaryGap:      c.PrimaryGap,
		SecondaryWindow: c.SecondaryWindow,
	}
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// NotifyConfig 通知配置
type NotifyConfig struct {
	Slack notify.SlackConfig `mapstructure:"slack"`
}

// Load 从配置文件和环境变量加载配置
// 环境变量前缀为 ONCALL_，如 ONCALL_APP_PORT、ONCALL_DATABASE_DRIVER
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetEnvPrefix("ONCALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "oncall")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 7012)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.dsn", "./data/oncall.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "oncall")
	v.SetDefault("database.user", "oncall")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("api.rate_limit", 100)
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("api.api_key", "")
	v.SetDefault("api.cors.enabled", true)
	v.SetDefault("api.cors.origins", []string{"*"})

	defaults := constraint.DefaultRules()
	v.SetDefault("roster.primary_gap", defaults.PrimaryGap)
	v.SetDefault("roster.secondary_window", defaults.SecondaryWindow)
	v.SetDefault("roster.default_days", 28)
	v.SetDefault("roster.timeout", "10s")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("notify.slack.webhook_url", "")
	v.SetDefault("notify.slack.bot_token", "")
	v.SetDefault("notify.slack.channel", "")
	v.SetDefault("notify.slack.api_url", "")
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("端口无效: %d", c.App.Port)
	}
	if c.Roster.PrimaryGap < 0 || c.Roster.SecondaryWindow < 0 {
		return fmt.Errorf("间隔规则不能为负数")
	}
	if c.Roster.DefaultDays <= 0 {
		return fmt.Errorf("default_days 必须为正数")
	}
	return nil
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction 检查是否为生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsTest 检查是否为测试环境
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}
