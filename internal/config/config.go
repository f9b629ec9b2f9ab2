package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // timezone names resolve without a system zoneinfo
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

// DefaultPath is used when no --config flag or CONFIG_PATH is given.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Input struct {
		Path       string `yaml:"path"`
		SQLitePath string `yaml:"sqlite_path" split_words:"true"`
		Table      string `yaml:"table"`
		Separator  string `yaml:"separator"`
		Timezone   string `yaml:"timezone"`
		Duplicates string `yaml:"duplicates"`
		Columns    struct {
			Datetime string `yaml:"datetime"`
			Open     string `yaml:"open"`
			High     string `yaml:"high"`
			Low      string `yaml:"low"`
			Close    string `yaml:"close"`
			Volume   string `yaml:"volume"`
		} `yaml:"columns"`
	} `yaml:"input"`
	Analysis struct {
		Workers int `yaml:"workers"`
	} `yaml:"analysis"`
	Output struct {
		Dir        string `yaml:"dir"`
		TableImage string `yaml:"table_image" split_words:"true"`
		ChartImage string `yaml:"chart_image" split_words:"true"`
		NoImages   bool   `yaml:"no_images" split_words:"true"`
	} `yaml:"output"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token" split_words:"true"`
		ChatID   string `yaml:"chat_id" split_words:"true"`
	} `yaml:"telegram"`
	Log struct {
		Level string `yaml:"level"`
		Env   string `yaml:"env"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// EnvPrefix prefixes every environment override, e.g. PIVOTSTAT_INPUT_TIMEZONE or
// PIVOTSTAT_OUTPUT_NO_IMAGES.
const EnvPrefix = "PIVOTSTAT"

// Load reads config from a YAML file (missing file is fine), loads .env, then applies
// environment variable overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" && cfg.Telegram.BotToken == "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" && cfg.Telegram.ChatID == "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" && cfg.Proxy == "" {
		cfg.Proxy = v
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills every empty field with its default.
func (c *Config) ApplyDefaults() {
	if c.Input.Separator == "" {
		c.Input.Separator = "\t"
	}
	if c.Input.Timezone == "" {
		c.Input.Timezone = "UTC"
	}
	if c.Input.Duplicates == "" {
		c.Input.Duplicates = "first"
	}
	if c.Input.Table == "" {
		c.Input.Table = "bars"
	}
	cols := &c.Input.Columns
	if cols.Datetime == "" {
		cols.Datetime = "Time"
	}
	if cols.Open == "" {
		cols.Open = "Open"
	}
	if cols.High == "" {
		cols.High = "High"
	}
	if cols.Low == "" {
		cols.Low = "Low"
	}
	if cols.Close == "" {
		cols.Close = "Close"
	}
	if cols.Volume == "" {
		cols.Volume = "Volume"
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = 1
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Output.TableImage == "" {
		c.Output.TableImage = "first_direction_table.png"
	}
	if c.Output.ChartImage == "" {
		c.Output.ChartImage = "first_direction_barchart.png"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 30 0 * * 2-6"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Env == "" {
		c.Log.Env = "development"
	}
}

// Location resolves the analysis timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Input.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalid, c.Input.Timezone, err)
	}
	return loc, nil
}

// Validate checks the settings needed for an analysis run.
func (c *Config) Validate() error {
	if c.Input.Path == "" && c.Input.SQLitePath == "" {
		return fmt.Errorf("%w: input.path (--csv) is required", ErrInvalid)
	}
	if c.Input.Path != "" && c.Input.SQLitePath != "" {
		return fmt.Errorf("%w: input.path and input.sqlite_path are mutually exclusive", ErrInvalid)
	}
	if c.Input.Path != "" {
		sep := c.Input.Separator
		if sep != `\t` && utf8.RuneCountInString(sep) != 1 {
			return fmt.Errorf("%w: input.separator must be a single character, got %q", ErrInvalid, sep)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Input.Duplicates {
	case "first", "reject":
	default:
		return fmt.Errorf("%w: input.duplicates must be first or reject, got %q", ErrInvalid, c.Input.Duplicates)
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("%w: analysis.workers must be positive", ErrInvalid)
	}
	return nil
}

// ValidateSchedule checks the settings needed by the scheduled mode.
func (c *Config) ValidateSchedule() error {
	if err := c.Validate(); err != nil {
		return err
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.Cron); err != nil {
		return fmt.Errorf("%w: schedule.cron %q: %v", ErrInvalid, c.Schedule.Cron, err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("%w: telegram.bot_token and telegram.chat_id must be set together", ErrInvalid)
	}
	return nil
}

// TelegramEnabled reports whether reports should be posted to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
