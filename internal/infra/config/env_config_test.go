package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/mkrupp/homecase-dashboard/internal/infra/config"
)

var errTooSmall = errors.New("too small")

type testConfig struct {
	EnvConfig

	StringValue   string        `env:"STRING_VALUE" default:"default"`
	IntValue      int           `env:"INT_VALUE" default:"42"`
	BoolValue     bool          `env:"BOOL_VALUE" default:"true"`
	DurationValue time.Duration `env:"DURATION_VALUE" default:"168h"`
	SizeValue     ByteSize      `env:"SIZE_VALUE" default:"5MB"`
	NoEnvTag      string
	Nested        testNestedConfig `envPrefix:"NESTED_"`
}

type testNestedConfig struct {
	NestedString string `env:"STRING" default:"nested-default"`
	Minimum      int    `env:"MINIMUM" default:"1"`
}

func (c testNestedConfig) Validate() error {
	if c.Minimum < 1 {
		return errTooSmall
	}

	return nil
}

type requiredConfig struct {
	EnvConfig

	Required string `env:"REQUIRED_VALUE"`
}

func defaultTestConfig() testConfig {
	return testConfig{
		StringValue:   "default",
		IntValue:      42,
		BoolValue:     true,
		DurationValue: 168 * time.Hour,
		SizeValue:     5_000_000,
		Nested: testNestedConfig{
			NestedString: "nested-default",
			Minimum:      1,
		},
	}
}

//nolint:paralleltest
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		envVars map[string]string
		want    func(cfg *testConfig)
		wantErr bool
	}{
		{
			name:    "uses default values when env vars not set",
			envVars: map[string]string{},
		},
		{
			name: "reads environment variables",
			envVars: map[string]string{
				"STRING_VALUE":   "env-value",
				"INT_VALUE":      "123",
				"BOOL_VALUE":     "false",
				"DURATION_VALUE": "90m",
				"NESTED_STRING":  "env-nested",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = "env-value"
				cfg.IntValue = 123
				cfg.BoolValue = false
				cfg.DurationValue = 90 * time.Minute
				cfg.Nested.NestedString = "env-nested"
			},
		},
		{
			name:   "handles prefix correctly",
			prefix: "APP",
			envVars: map[string]string{
				"APP_STRING_VALUE": "prefixed-value",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = "prefixed-value"
			},
		},
		{
			name:   "falls back to bare name under a namespace",
			prefix: "APP_SERVICE",
			envVars: map[string]string{
				"STRING_VALUE": "bare-value",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = "bare-value"
			},
		},
		{
			name:   "prefers more specific prefix",
			prefix: "APP_SERVICE",
			envVars: map[string]string{
				"STRING_VALUE":             "bare",
				"APP_STRING_VALUE":         "less-specific",
				"APP_SERVICE_STRING_VALUE": "more-specific",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = "more-specific"
			},
		},
		{
			name: "reads durations given in seconds",
			envVars: map[string]string{
				"DURATION_VALUE": "604800",
			},
			want: func(cfg *testConfig) {
				cfg.DurationValue = 7 * 24 * time.Hour
			},
		},
		{
			name: "reads human-friendly sizes",
			envVars: map[string]string{
				"SIZE_VALUE": "2 KiB",
			},
			want: func(cfg *testConfig) {
				cfg.SizeValue = 2048
			},
		},
		{
			name: "reads sizes given in bytes",
			envVars: map[string]string{
				"SIZE_VALUE": "1048576",
			},
			want: func(cfg *testConfig) {
				cfg.SizeValue = 1 << 20
			},
		},
		{
			name: "handles empty string values",
			envVars: map[string]string{
				"STRING_VALUE": "",
			},
			want: func(cfg *testConfig) {
				cfg.StringValue = ""
			},
		},
		{
			name: "handles zero int values",
			envVars: map[string]string{
				"INT_VALUE": "0",
			},
			want: func(cfg *testConfig) {
				cfg.IntValue = 0
			},
		},
		{
			name:    "fails on invalid int value",
			envVars: map[string]string{"INT_VALUE": "not-a-number"},
			wantErr: true,
		},
		{
			name:    "fails on invalid bool value",
			envVars: map[string]string{"BOOL_VALUE": "not-a-bool"},
			wantErr: true,
		},
		{
			name:    "fails on invalid duration value",
			envVars: map[string]string{"DURATION_VALUE": "a week"},
			wantErr: true,
		},
		{
			name:    "fails on invalid size value",
			envVars: map[string]string{"SIZE_VALUE": "lots"},
			wantErr: true,
		},
		{
			name:    "fails nested validation",
			envVars: map[string]string{"NESTED_MINIMUM": "0"},
			wantErr: true,
		},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := &testConfig{}
			err := Parse(ctx, cfg, tt.prefix)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				return
			}

			want := defaultTestConfig()
			if tt.want != nil {
				tt.want(&want)
			}

			if cfg.StringValue != want.StringValue {
				t.Errorf("StringValue = %v, want %v", cfg.StringValue, want.StringValue)
			}
			if cfg.IntValue != want.IntValue {
				t.Errorf("IntValue = %v, want %v", cfg.IntValue, want.IntValue)
			}
			if cfg.BoolValue != want.BoolValue {
				t.Errorf("BoolValue = %v, want %v", cfg.BoolValue, want.BoolValue)
			}
			if cfg.DurationValue != want.DurationValue {
				t.Errorf("DurationValue = %v, want %v", cfg.DurationValue, want.DurationValue)
			}
			if cfg.SizeValue != want.SizeValue {
				t.Errorf("SizeValue = %v, want %v", cfg.SizeValue, want.SizeValue)
			}
			if cfg.NoEnvTag != "" {
				t.Errorf("NoEnvTag = %v, want empty", cfg.NoEnvTag)
			}
			if cfg.Nested != want.Nested {
				t.Errorf("Nested = %+v, want %+v", cfg.Nested, want.Nested)
			}
			if cfg.Namespace() != tt.prefix {
				t.Errorf("Namespace() = %q, want %q", cfg.Namespace(), tt.prefix)
			}
		})
	}
}

//nolint:paralleltest
func TestParseRequired(t *testing.T) {
	err := Parse(context.Background(), &requiredConfig{}, "CFGTEST")
	if !errors.Is(err, ErrVarNotSet) {
		t.Fatalf("expected %v, got %v", ErrVarNotSet, err)
	}

	t.Setenv("CFGTEST_REQUIRED_VALUE", "set")

	cfg := &requiredConfig{}
	if err := Parse(context.Background(), cfg, "CFGTEST"); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Required != "set" {
		t.Errorf("Required = %q, want %q", cfg.Required, "set")
	}
}

func TestParseInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     any
		wantErr error
	}{
		{
			name:    "non-pointer config",
			cfg:     testConfig{},
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "non-struct pointer",
			cfg:     new(string),
			wantErr: ErrInvalidConfig,
		},
		{
			name: "missing EnvConfig embedding",
			cfg: &struct {
				Value string `env:"VALUE"`
			}{},
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Parse(context.Background(), tt.cfg, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

//nolint:paralleltest
func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	content := "DOTENV_TEST_FROM_FILE=file\nDOTENV_TEST_PRESET=file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Setenv("DOTENV_TEST_PRESET", "process")
	// Registers cleanup for a variable the file is about to set.
	t.Setenv("DOTENV_TEST_FROM_FILE", "")
	os.Unsetenv("DOTENV_TEST_FROM_FILE")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	if got := os.Getenv("DOTENV_TEST_FROM_FILE"); got != "file" {
		t.Errorf("DOTENV_TEST_FROM_FILE = %q, want %q", got, "file")
	}

	if got := os.Getenv("DOTENV_TEST_PRESET"); got != "process" {
		t.Errorf("DOTENV_TEST_PRESET = %q, want %q", got, "process")
	}
}

func TestByteSize_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size ByteSize
		want string
	}{
		{size: 0, want: "0 B"},
		{size: 512, want: "512 B"},
		{size: 5 << 20, want: "5.0 MiB"},
	}

	for _, tt := range tests {
		if got := tt.size.String(); got != tt.want {
			t.Errorf("ByteSize(%d).String() = %q, want %q", uint64(tt.size), got, tt.want)
		}
	}
}
