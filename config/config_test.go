package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/iconoclast/childprocess/process"
)

func TestConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := Config{Name: "childproc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if cfg.Logging.ServiceName != "childproc" {
			t.Errorf("expected logging service name to follow name, got %q", cfg.Logging.ServiceName)
		}
		if cfg.Process.StopTimeout != process.DefaultStopTimeout {
			t.Errorf("expected default stop timeout, got %v", cfg.Process.StopTimeout)
		}
		if cfg.Tracing.SampleRate != 1.0 {
			t.Errorf("expected sample rate 1.0, got %v", cfg.Tracing.SampleRate)
		}
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		cfg := Config{
			Name:        "childproc",
			Environment: "production",
			Process:     process.Config{KillTimeout: time.Second},
		}
		cfg.ApplyDefaults()
		if cfg.Environment != "production" {
			t.Errorf("environment overwritten: %q", cfg.Environment)
		}
		if cfg.Process.KillTimeout != time.Second {
			t.Errorf("kill timeout overwritten: %v", cfg.Process.KillTimeout)
		}
	})

	t.Run("telemetry disabled without endpoints", func(t *testing.T) {
		cfg := Config{Name: "childproc"}
		cfg.ApplyDefaults()
		if cfg.TracingEnabled() || cfg.MetricsEnabled() {
			t.Error("expected telemetry to be off by default")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Name: "childproc"}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing name", func(c *Config) { c.Name = "" }, "config.name: is required"},
		{"invalid environment", func(c *Config) { c.Environment = "invalid" }, "config.environment: must be one of"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "loud" }, "config.logging"},
		{"negative stop timeout", func(c *Config) { c.Process.StopTimeout = -time.Second }, "config.process"},
		{"sample rate above one", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "sample_rate"},
		{"metrics without interval", func(c *Config) {
			c.Metrics.Endpoint = "localhost:4318"
			c.Metrics.Interval = 0
		}, "config.metrics.interval: must be greater than 0"},
		{"poll interval below minimum", func(c *Config) { c.Process.PollInterval = time.Microsecond }, "poll_interval"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "childproc.yml")

	yamlContent := `
name: childproc
environment: staging
logging:
  level: warn
process:
  poll_interval: 50ms
  stop_timeout: 5s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg Config
	err := LoadConfig("childproc", &cfg, WithConfigFile(configPath), WithFileSystem(&mockFS{files: map[string]bool{configPath: true}}))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "childproc" {
		t.Errorf("expected name 'childproc', got %q", cfg.Name)
	}
	if cfg.Environment != "staging" {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level 'warn', got %q", cfg.Logging.Level)
	}
	if cfg.Process.PollInterval != 50*time.Millisecond || cfg.Process.StopTimeout != 5*time.Second {
		t.Errorf("unexpected process config %+v", cfg.Process)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "childproc.yml")
	if err := os.WriteFile(configPath, []byte("process:\n  stop_timeout: 5s\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHILDPROC_PROCESS_STOP_TIMEOUT", "7s")
	t.Setenv("CHILDPROC_LOGGING_LEVEL", "error")
	t.Setenv("OTHERAPP_LOGGING_LEVEL", "trace")

	var cfg Config
	err := LoadConfig("childproc", &cfg, WithConfigFile(configPath), WithFileSystem(&mockFS{files: map[string]bool{configPath: true}}))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Process.StopTimeout != 7*time.Second {
		t.Errorf("expected env to override stop timeout, got %v", cfg.Process.StopTimeout)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected level 'error', got %q", cfg.Logging.Level)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("CHILDPROC_TEST_ENVFILE_NAME=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("CHILDPROC_TEST_ENVFILE_NAME") })

	var cfg struct {
		Name string `mapstructure:"name"`
	}
	err := LoadConfig("childproc_test_envfile", &cfg, WithEnvFile(envPath), WithConfigFile(filepath.Join(dir, "none.yml")))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "from-dotenv" {
		t.Errorf("expected name from .env, got %q", cfg.Name)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg Config
	// With no config file found, LoadConfig should still succeed (just empty config)
	err := LoadConfig("nonexistent-program", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "childproc.yml")
	if err := os.WriteFile(configPath, []byte("process: [unterminated\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var cfg Config
	if err := LoadConfig("childproc", &cfg, WithConfigFile(configPath)); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestResolverWithMockFS(t *testing.T) {
	t.Run("working directory first", func(t *testing.T) {
		fs := &mockFS{files: map[string]bool{
			"./childproc.yml": true,
			".env":            true,
			filepath.Join("/mock/config", "childproc", "config.yml"): true,
		}}
		resolver := &Resolver{FileSystem: fs}
		files := resolver.ResolveFiles("childproc", LoaderConfig{})
		if files.ConfigFile != "./childproc.yml" {
			t.Errorf("expected ./childproc.yml, got %q", files.ConfigFile)
		}
		if files.EnvFile != ".env" {
			t.Errorf("expected .env, got %q", files.EnvFile)
		}
	})

	t.Run("user config directory", func(t *testing.T) {
		want := filepath.Join("/mock/config", "childproc", "config.yml")
		resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{want: true}}}
		files := resolver.ResolveFiles("childproc", LoaderConfig{})
		if files.ConfigFile != want {
			t.Errorf("expected %q, got %q", want, files.ConfigFile)
		}
	})

	t.Run("explicit paths win", func(t *testing.T) {
		resolver := &Resolver{FileSystem: &mockFS{files: map[string]bool{"./childproc.yml": true}}}
		files := resolver.ResolveFiles("childproc", LoaderConfig{ConfigFile: "/etc/x.yml", EnvFile: "/etc/x.env"})
		if files.ConfigFile != "/etc/x.yml" || files.EnvFile != "/etc/x.env" {
			t.Errorf("unexpected resolution %+v", files)
		}
	})
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool        { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error      { return nil }
func (m *mockFS) UserConfigDir() (string, error) { return "/mock/config", nil }

func TestEnvPrefix(t *testing.T) {
	tests := map[string]string{
		"childproc":    "CHILDPROC_",
		"my-runner":    "MY_RUNNER_",
		"svc.launcher": "SVC_LAUNCHER_",
	}
	for name, want := range tests {
		if got := EnvPrefix(name); got != want {
			t.Errorf("EnvPrefix(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"NAME", []string{"name"}},
		{"LOGGING_LEVEL", []string{"logging_level", "logging.level"}},
		{"PROCESS_STOP_TIMEOUT", []string{
			"process_stop_timeout",
			"process.stop.timeout",
			"process.stop_timeout",
			"process_stop.timeout",
		}},
	}
	for _, tc := range tests {
		if got := generateEnvKeyVariants(tc.key); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("generateEnvKeyVariants(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestWithOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("RUNNER_")(&lc)
	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
	if lc.EnvPrefix != "RUNNER_" {
		t.Errorf("expected env prefix, got %q", lc.EnvPrefix)
	}
}
