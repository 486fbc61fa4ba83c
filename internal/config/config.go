// Package config loads aiwriter settings from aiwriter.yaml, AIWRITER_*
// environment variables and a .env file, in increasing order of precedence
// for the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm/logger"

	"aiwriter/internal/models"
	"aiwriter/internal/utils"
)

const (
	FileName  = "aiwriter.yaml"
	EnvPrefix = "AIWRITER"
)

// Writer holds the defaults for the single-row writer settings. They apply
// until an administrator saves settings.
type Writer struct {
	TrackerID                   uint   `mapstructure:"tracker_id" yaml:"tracker_id"`
	PromptCustomFieldID         uint   `mapstructure:"prompt_custom_field_id" yaml:"prompt_custom_field_id"`
	PromptTemplateCustomFieldID uint   `mapstructure:"prompt_template_custom_field_id" yaml:"prompt_template_custom_field_id"`
	SystemPrompt                string `mapstructure:"system_prompt" yaml:"system_prompt"`
	ModelKey                    string `mapstructure:"model_key" yaml:"model_key"`
}

type Config struct {
	Listen       string            `mapstructure:"listen"`
	DatabasePath string            `mapstructure:"database_path"`
	LogLevel     string            `mapstructure:"log_level"`
	CSRFSecret   string            `mapstructure:"csrf_secret"`
	KeyringDir   string            `mapstructure:"keyring_dir"`
	WriteTimeout time.Duration     `mapstructure:"write_timeout"`
	BaseURLs     map[string]string `mapstructure:"base_urls"`
	Writer       Writer            `mapstructure:"writer"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

func Default() Config {
	return Config{
		Listen:       "127.0.0.1:8080",
		LogLevel:     "info",
		WriteTimeout: 2 * time.Minute,
		Writer: Writer{
			TrackerID:    12,
			SystemPrompt: models.DefaultSystemPrompt,
			ModelKey:     "openai|gpt-4o-mini",
		},
	}
}

// Load reads configuration. An explicit path must exist; otherwise
// aiwriter.yaml is looked up in the working directory, the project root and
// the user config directory, and its absence is not an error.
func Load(path string) (Config, error) {
	if err := utils.LoadEnv(); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
		v.AddConfigPath(".")
		if root, err := utils.FindProjectRoot(); err == nil {
			v.AddConfigPath(root)
		}
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(dir + string(os.PathSeparator) + "aiwriter")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Writer.SystemPrompt = strings.TrimSpace(cfg.Writer.SystemPrompt)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("listen", d.Listen)
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("csrf_secret", d.CSRFSecret)
	v.SetDefault("keyring_dir", d.KeyringDir)
	v.SetDefault("write_timeout", d.WriteTimeout)
	v.SetDefault("base_urls", map[string]string{})
	v.SetDefault("writer.tracker_id", d.Writer.TrackerID)
	v.SetDefault("writer.prompt_custom_field_id", d.Writer.PromptCustomFieldID)
	v.SetDefault("writer.prompt_template_custom_field_id", d.Writer.PromptTemplateCustomFieldID)
	v.SetDefault("writer.system_prompt", d.Writer.SystemPrompt)
	v.SetDefault("writer.model_key", d.Writer.ModelKey)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Listen) == "" {
		return errors.New("config: listen address is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.WriteTimeout < 0 {
		return errors.New("config: write_timeout must not be negative")
	}
	if c.Writer.PromptTemplateCustomFieldID != 0 && c.Writer.PromptTemplateCustomFieldID == c.Writer.PromptCustomFieldID {
		return errors.New("config: writer prompt template field must differ from the prompt field")
	}
	return nil
}

// Settings converts the writer defaults into the settings row used before
// anything is saved.
func (c Config) Settings() models.Settings {
	prompt := c.Writer.SystemPrompt
	if prompt == "" {
		prompt = models.DefaultSystemPrompt
	}
	return models.Settings{
		TrackerID:                   c.Writer.TrackerID,
		PromptCustomFieldID:         c.Writer.PromptCustomFieldID,
		PromptTemplateCustomFieldID: c.Writer.PromptTemplateCustomFieldID,
		SystemPrompt:                prompt,
		ModelKey:                    c.Writer.ModelKey,
	}
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// NewLogger returns a text logger at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := ParseLevel(c.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// GormLogLevel maps the log level onto gorm's; SQL is only traced at debug.
func (c Config) GormLogLevel() logger.LogLevel {
	level, _ := ParseLevel(c.LogLevel)
	switch {
	case level <= slog.LevelDebug:
		return logger.Info
	case level >= slog.LevelError:
		return logger.Error
	default:
		return logger.Warn
	}
}

// fileConfig is the on-disk layout written by WriteDefault.
type fileConfig struct {
	Listen       string            `yaml:"listen"`
	DatabasePath string            `yaml:"database_path,omitempty"`
	LogLevel     string            `yaml:"log_level"`
	CSRFSecret   string            `yaml:"csrf_secret,omitempty"`
	KeyringDir   string            `yaml:"keyring_dir,omitempty"`
	WriteTimeout string            `yaml:"write_timeout"`
	BaseURLs     map[string]string `yaml:"base_urls,omitempty"`
	Writer       Writer            `yaml:"writer"`
}

// WriteDefault writes the default configuration to path. An existing file is
// only replaced when overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if utils.FileExists(path) && !overwrite {
		return fmt.Errorf("config: %s already exists", path)
	}
	d := Default()
	out, err := yaml.Marshal(fileConfig{
		Listen:       d.Listen,
		DatabasePath: d.DatabasePath,
		LogLevel:     d.LogLevel,
		WriteTimeout: d.WriteTimeout.String(),
		Writer:       d.Writer,
	})
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := utils.EnsureParentDir(path); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, out, 0o600)
}
