package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Version string        `yaml:"version" default:"1"`
	API     APIConfig     `yaml:"api"`
	Editor  EditorConfig  `yaml:"editor"`
	Store   StoreConfig   `yaml:"store"`
	Theme   ThemeConfig   `yaml:"theme"`
	Content ContentConfig `yaml:"content"`
	Import  ImportConfig  `yaml:"import"`
	Backup  BackupConfig  `yaml:"backup"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url" default:"http://localhost:5000"`
	// Zero leaves the transport defaults in place.
	TimeoutSeconds int    `yaml:"timeout_seconds" default:"0"`
	UserAgent      string `yaml:"user_agent" default:"blogctl/1.0"`
}

type EditorConfig struct {
	AutosaveDelayMs int `yaml:"autosave_delay_ms" default:"5000"`
}

type StoreConfig struct {
	Path string `yaml:"path" default:"blogctl.db"`
}

type ThemeConfig struct {
	Default            string       `yaml:"default" default:"dark"`
	SyntaxHighlighting SyntaxConfig `yaml:"syntax_highlighting"`
}

type SyntaxConfig struct {
	DefaultDark  string `yaml:"default_dark" default:"gruvbox"`
	DefaultLight string `yaml:"default_light" default:"catppuccin-latte"`
}

type ContentConfig struct {
	ExcerptLength int `yaml:"excerpt_length" default:"150"`
}

type ImportConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" default:"2"`
	Burst             int     `yaml:"burst" default:"1"`
}

type BackupConfig struct {
	Enabled  bool   `yaml:"enabled" default:"false"`
	Bucket   string `yaml:"bucket" default:""`
	Endpoint string `yaml:"endpoint" default:""`
	Region   string `yaml:"region" default:"auto"`
	Prefix   string `yaml:"prefix" default:"blogctl"`
	// zstd, gzip or none.
	Compression string `yaml:"compression" default:"zstd"`
}

var AppConfig *Config

func (c *Config) AutosaveDelay() time.Duration {
	return time.Duration(c.Editor.AutosaveDelayMs) * time.Millisecond
}

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Validate reports the first setting that cannot be used as-is.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf(ErrMissingSettingFmt, "api.base_url")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf(ErrInvalidSettingFmt, "api.base_url", c.API.BaseURL)
	}
	if c.Editor.AutosaveDelayMs <= 0 {
		return fmt.Errorf(ErrInvalidSettingFmt, "editor.autosave_delay_ms", strconv.Itoa(c.Editor.AutosaveDelayMs))
	}
	if c.Store.Path == "" {
		return fmt.Errorf(ErrMissingSettingFmt, "store.path")
	}
	if c.Content.ExcerptLength <= 0 {
		return fmt.Errorf(ErrInvalidSettingFmt, "content.excerpt_length", strconv.Itoa(c.Content.ExcerptLength))
	}
	if c.Import.RequestsPerSecond <= 0 {
		return fmt.Errorf(ErrInvalidSettingFmt, "import.requests_per_second", strconv.FormatFloat(c.Import.RequestsPerSecond, 'f', -1, 64))
	}
	switch c.Backup.Compression {
	case "zstd", "gzip", "none":
	default:
		return fmt.Errorf(ErrInvalidSettingFmt, "backup.compression", c.Backup.Compression)
	}
	if c.Backup.Enabled && c.Backup.Bucket == "" {
		return fmt.Errorf(ErrMissingSettingFmt, "backup.bucket")
	}
	return nil
}

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	// Try to read and parse the config file
	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		applyEnv(config)
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(config)
	if err := config.Validate(); err != nil {
		return err
	}

	AppConfig = config
	return nil
}

// applyEnv lets the environment (or a .env file) win over the file.
func applyEnv(config *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		config.API.BaseURL = v
	}
	if v := os.Getenv(EnvStorePath); v != "" {
		config.Store.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.Logging.Level = v
	}
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
