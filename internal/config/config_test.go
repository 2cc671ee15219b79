package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test-config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tempFile.WriteString(content); err != nil {
		t.Fatalf(ErrWriteConfigContentFmt, err)
	}
	tempFile.Close()
	return tempFile.Name()
}

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)

	// This test mainly ensures the function doesn't panic
}

func TestApplyDefaults(t *testing.T) {
	t.Run("Config struct defaults", func(t *testing.T) {
		config := &Config{}
		applyDefaults(config)

		if config.API.BaseURL != "http://localhost:5000" {
			t.Errorf("Expected base URL 'http://localhost:5000', got %q", config.API.BaseURL)
		}
		if config.API.TimeoutSeconds != 0 {
			t.Errorf("Expected no client timeout by default, got %d", config.API.TimeoutSeconds)
		}
		if config.Editor.AutosaveDelayMs != 5000 {
			t.Errorf("Expected autosave delay 5000ms, got %d", config.Editor.AutosaveDelayMs)
		}
		if config.Store.Path != "blogctl.db" {
			t.Errorf("Expected store path 'blogctl.db', got %q", config.Store.Path)
		}
		if config.Theme.Default != "dark" {
			t.Errorf("Expected theme 'dark', got %q", config.Theme.Default)
		}
		if config.Theme.SyntaxHighlighting.DefaultDark != "gruvbox" {
			t.Errorf("Expected dark syntax theme 'gruvbox', got %q", config.Theme.SyntaxHighlighting.DefaultDark)
		}
		if config.Content.ExcerptLength != 150 {
			t.Errorf("Expected excerpt length 150, got %d", config.Content.ExcerptLength)
		}
		if config.Import.RequestsPerSecond != 2 {
			t.Errorf("Expected 2 requests per second, got %v", config.Import.RequestsPerSecond)
		}
		if config.Backup.Enabled {
			t.Error("Expected backup to be disabled by default")
		}
		if config.Backup.Region != "auto" {
			t.Errorf("Expected backup region 'auto', got %q", config.Backup.Region)
		}
		if config.Logging.Level != "info" {
			t.Errorf("Expected log level 'info', got %q", config.Logging.Level)
		}
	})

	t.Run("Non-struct values are ignored", func(t *testing.T) {
		stringVar := "test"
		applyDefaults(&stringVar)
		applyDefaults(42)
		applyDefaults(nil)
	})
}

func TestDurations(t *testing.T) {
	config := &Config{}
	applyDefaults(config)

	if config.AutosaveDelay() != 5*time.Second {
		t.Errorf("Expected autosave delay of 5s, got %v", config.AutosaveDelay())
	}
	if config.APITimeout() != 0 {
		t.Errorf("Expected zero API timeout, got %v", config.APITimeout())
	}
}

func TestLoadConfig(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	t.Run("Load non-existent config file", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		err := LoadConfig("non-existent-config.yaml")
		if err != nil {
			t.Errorf("Expected no error for non-existent config file, got %v", err)
		}
		if AppConfig == nil {
			t.Fatal("Expected AppConfig to be set with defaults")
		}
		if AppConfig.API.BaseURL != "http://localhost:5000" {
			t.Errorf("Expected default base URL, got %q", AppConfig.API.BaseURL)
		}
	})

	t.Run("Load valid config file", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		path := writeTempConfig(t, `
api:
  base_url: "https://blog.example.com"
  timeout_seconds: 10
editor:
  autosave_delay_ms: 1500
theme:
  default: "light"
`)

		if err := LoadConfig(path); err != nil {
			t.Fatalf("Expected no error loading valid config, got %v", err)
		}

		if AppConfig.API.BaseURL != "https://blog.example.com" {
			t.Errorf("Expected base URL 'https://blog.example.com', got %q", AppConfig.API.BaseURL)
		}
		if AppConfig.APITimeout() != 10*time.Second {
			t.Errorf("Expected 10s timeout, got %v", AppConfig.APITimeout())
		}
		if AppConfig.AutosaveDelay() != 1500*time.Millisecond {
			t.Errorf("Expected 1.5s autosave delay, got %v", AppConfig.AutosaveDelay())
		}
		if AppConfig.Theme.Default != "light" {
			t.Errorf("Expected theme 'light', got %q", AppConfig.Theme.Default)
		}

		// Unspecified fields keep their defaults
		if AppConfig.Store.Path != "blogctl.db" {
			t.Errorf("Expected default store path, got %q", AppConfig.Store.Path)
		}
	})

	t.Run("Load invalid YAML file", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		path := writeTempConfig(t, `
api:
  base_url: "x"
  invalid yaml syntax [
`)

		err := LoadConfig(path)
		if err == nil {
			t.Fatal("Expected error loading invalid config file")
		}
		if !strings.Contains(err.Error(), "failed to parse config file") {
			t.Errorf("Expected parse error, got %v", err)
		}
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		originalAppConfig := AppConfig
		defer func() { AppConfig = originalAppConfig }()

		t.Setenv(EnvAPIURL, "http://127.0.0.1:9999")
		t.Setenv(EnvStorePath, "/tmp/other.db")

		path := writeTempConfig(t, "api:\n  base_url: \"https://blog.example.com\"\n")
		if err := LoadConfig(path); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if AppConfig.API.BaseURL != "http://127.0.0.1:9999" {
			t.Errorf("Expected environment base URL, got %q", AppConfig.API.BaseURL)
		}
		if AppConfig.Store.Path != "/tmp/other.db" {
			t.Errorf("Expected environment store path, got %q", AppConfig.Store.Path)
		}
	})
}

func TestInvalidConfigValidation(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	SetLogger(logger)

	testCases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "base URL without scheme",
			content: "api:\n  base_url: \"localhost:5000\"\n",
			wantErr: "api.base_url",
		},
		{
			name:    "zero autosave delay",
			content: "editor:\n  autosave_delay_ms: 0\n",
			wantErr: "editor.autosave_delay_ms",
		},
		{
			name:    "empty store path",
			content: "store:\n  path: \"\"\n",
			wantErr: "store.path",
		},
		{
			name:    "backup enabled without bucket",
			content: "backup:\n  enabled: true\n",
			wantErr: "backup.bucket",
		},
		{
			name:    "unknown backup compression",
			content: "backup:\n  compression: lz4\n",
			wantErr: "backup.compression",
		},
		{
			name:    "negative import rate",
			content: "import:\n  requests_per_second: -1\n",
			wantErr: "import.requests_per_second",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			originalAppConfig := AppConfig
			defer func() { AppConfig = originalAppConfig }()

			err := LoadConfig(writeTempConfig(t, tc.content))
			if err == nil {
				t.Fatalf("Expected validation error for %s", tc.name)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestConfigDefaultsGoldenFile tests that our defaults match the golden file
func TestConfigDefaultsGoldenFile(t *testing.T) {
	goldenData, err := os.ReadFile("testdata/defaults.yaml")
	if err != nil {
		t.Fatalf("Failed to read golden defaults file: %v", err)
	}

	var goldenConfig Config
	if err := yaml.Unmarshal(goldenData, &goldenConfig); err != nil {
		t.Fatalf("Failed to parse golden config: %v", err)
	}

	testConfig := Config{}
	ApplyDefaults(&testConfig)

	if !reflect.DeepEqual(testConfig, goldenConfig) {
		t.Errorf("Defaults drifted from testdata/defaults.yaml:\ngot  %+v\nwant %+v", testConfig, goldenConfig)
	}
}

func TestPublicApplyDefaults(t *testing.T) {
	type TestStruct struct {
		Field string `default:"test-value"`
	}

	test := &TestStruct{}
	ApplyDefaults(test)

	if test.Field != "test-value" {
		t.Errorf("Expected field 'test-value', got %q", test.Field)
	}
}

func TestSliceDefaults(t *testing.T) {
	t.Run("Slice with whitespace handling", func(t *testing.T) {
		type TestStruct struct {
			Items []string `default:" item1 , item2 , item3 "`
		}

		test := &TestStruct{}
		applyDefaults(test)

		expected := []string{"item1", "item2", "item3"}
		if !reflect.DeepEqual(test.Items, expected) {
			t.Errorf("Expected trimmed items %v, got %v", expected, test.Items)
		}
	})

	t.Run("Non-empty slice should not be overwritten", func(t *testing.T) {
		type TestStruct struct {
			Items []string `default:"default1,default2"`
		}

		test := &TestStruct{Items: []string{"existing1", "existing2"}}
		applyDefaults(test)

		expected := []string{"existing1", "existing2"}
		if !reflect.DeepEqual(test.Items, expected) {
			t.Errorf("Expected existing items to be preserved %v, got %v", expected, test.Items)
		}
	})
}

func TestConstants(t *testing.T) {
	if KeyDraftID != "draftId" {
		t.Errorf("Expected draft pointer key 'draftId', got %q", KeyDraftID)
	}
	if KeyIsAuthenticated != "isAuthenticated" {
		t.Errorf("Expected auth flag key 'isAuthenticated', got %q", KeyIsAuthenticated)
	}
	if CTypeJSON != "application/json" {
		t.Errorf("Expected CTypeJSON 'application/json', got %q", CTypeJSON)
	}
}
