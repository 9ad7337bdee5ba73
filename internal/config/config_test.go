package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			MetricsPort:        9090,
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       0,
			IdleTimeout:        120 * time.Second,
			ShutDownTimeout:    5 * time.Second,
			RequestTimeout:     15 * time.Second,
			CORSAllowedOrigins: "*",
		},
		API: APIConfig{
			BaseURL: "http://localhost:5000/api",
		},
		Session: SessionConfig{
			FilePath:        "/tmp/session.json",
			PersistInterval: 5 * time.Second,
		},
		Cache: CacheConfig{
			PollTick:         time.Second,
			NotificationPoll: 5 * time.Second,
			SettleTimeout:    3 * time.Second,
		},
		Realtime: RealtimeConfig{
			Transport:         TransportSSE,
			StreamPath:        "/notifications/stream",
			ReconnectInterval: 3 * time.Second,
		},
		Gate: GateConfig{
			LoginPath: "/login",
			BackDelay: 3 * time.Second,
		},
		Misc: MiscConfig{
			LogLevel: "info",
			GinMode:  "release",
		},
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	if err := validConfig().validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"zero port", 0},
		{"negative port", -1},
		{"too high port", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port
			if err := cfg.validate(); err == nil {
				t.Errorf("expected error for port %d", tt.port)
			}
		})
	}
}

func TestConfig_Validate_MetricsPortClash(t *testing.T) {
	cfg := validConfig()
	cfg.Server.MetricsPort = cfg.Server.Port
	if err := cfg.validate(); err == nil {
		t.Error("expected error when metrics port equals server port")
	}

	cfg.Server.MetricsPort = 0
	if err := cfg.validate(); err != nil {
		t.Errorf("metrics port 0 disables the metrics server, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidTimeouts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"zero idle timeout", func(c *Config) { c.Server.IdleTimeout = 0 }},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutDownTimeout = 0 }},
		{"negative request timeout", func(c *Config) { c.Server.RequestTimeout = -time.Second }},
		{"negative api timeout", func(c *Config) { c.API.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_Validate_APIBaseURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative/only"} {
		cfg := validConfig()
		cfg.API.BaseURL = raw
		if err := cfg.validate(); err == nil {
			t.Errorf("expected error for base url %q", raw)
		}
	}
}

func TestConfig_Validate_EmptySessionPath(t *testing.T) {
	cfg := validConfig()
	cfg.Session.FilePath = ""
	if err := cfg.validate(); err == nil {
		t.Error("expected error for empty session file path")
	}
}

func TestConfig_Validate_CacheIntervals(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero poll tick", func(c *Config) { c.Cache.PollTick = 0 }},
		{"zero notification poll", func(c *Config) { c.Cache.NotificationPoll = 0 }},
		{"zero settle timeout", func(c *Config) { c.Cache.SettleTimeout = 0 }},
		{"negative stale time", func(c *Config) { c.Cache.StaleTime = -time.Second }},
		{"zero persist interval", func(c *Config) { c.Session.PersistInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_Validate_RealtimeTransport(t *testing.T) {
	cfg := validConfig()
	cfg.Realtime.Transport = "carrier-pigeon"
	if err := cfg.validate(); err == nil {
		t.Error("expected error for unknown transport")
	}

	cfg = validConfig()
	cfg.Realtime.Transport = TransportRedis
	if err := cfg.validate(); err == nil {
		t.Error("expected error for redis transport without address")
	}

	cfg.Realtime.RedisAddr = "localhost:6379"
	cfg.Realtime.RedisChannel = "new-notification"
	if err := cfg.validate(); err != nil {
		t.Errorf("expected valid redis config, got: %v", err)
	}

	cfg = validConfig()
	cfg.Realtime.Transport = TransportNone
	cfg.Realtime.StreamPath = ""
	if err := cfg.validate(); err != nil {
		t.Errorf("transport none needs no stream path, got: %v", err)
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "custom_value")

	if got := getEnvOrDefault("TEST_ENV_VAR", "default_value"); got != "custom_value" {
		t.Errorf("expected 'custom_value', got '%s'", got)
	}
	if got := getEnvOrDefault("NONEXISTENT_VAR", "default_value"); got != "default_value" {
		t.Errorf("expected 'default_value', got '%s'", got)
	}
}

func TestGetEnvOrViperPort(t *testing.T) {
	v := viper.New()
	v.Set("server.port", 7070)

	port, err := getEnvOrViperPort(v, "TEST_PORT_UNSET", "server.port")
	if err != nil || port != 7070 {
		t.Errorf("expected 7070 from viper, got %d (err %v)", port, err)
	}

	t.Setenv("TEST_PORT", "9091")
	port, err = getEnvOrViperPort(v, "TEST_PORT", "server.port")
	if err != nil || port != 9091 {
		t.Errorf("expected 9091 from env, got %d (err %v)", port, err)
	}

	t.Setenv("TEST_PORT_INVALID", "not_a_number")
	if _, err := getEnvOrViperPort(v, "TEST_PORT_INVALID", "server.port"); err == nil {
		t.Error("expected error for invalid port")
	}
}

func TestLoadConfig_WithValidDefaults(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("GO_SOLE_CONFIG_PATH", tempDir)
	t.Setenv("GO_SOLE_SESSION_FILE_PATH", filepath.Join(tempDir, "data", "session.json"))

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error loading config, got: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Cache.NotificationPoll != 5*time.Second {
		t.Errorf("expected 5s notification poll, got %v", cfg.Cache.NotificationPoll)
	}
	if cfg.Realtime.Transport != TransportSSE {
		t.Errorf("expected sse transport by default, got %s", cfg.Realtime.Transport)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("GO_SOLE_CONFIG_PATH", tempDir)
	t.Setenv("GO_SOLE_SESSION_FILE_PATH", filepath.Join(tempDir, "session.json"))
	t.Setenv("GO_SOLE_API_BASE_URL", "https://shop.example.com/api")
	t.Setenv("GO_SOLE_REALTIME_TRANSPORT", "NONE")
	t.Setenv("PORT", "9999")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error loading config, got: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "https://shop.example.com/api" {
		t.Errorf("unexpected base url %s", cfg.API.BaseURL)
	}
	if cfg.Realtime.Transport != TransportNone {
		t.Errorf("expected transport none, got %s", cfg.Realtime.Transport)
	}
}

func TestLoadConfig_WithInvalidPort(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("GO_SOLE_CONFIG_PATH", tempDir)
	t.Setenv("GO_SOLE_SESSION_FILE_PATH", filepath.Join(tempDir, "session.json"))
	t.Setenv("PORT", "not_a_port")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for invalid port, got nil")
	}
}

func TestLoadConfig_ReadsYAML(t *testing.T) {
	tempDir := t.TempDir()
	yaml := "api:\n  base_url: https://yaml.example.com\ncache:\n  settle_timeout: 750ms\n"
	if err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("GO_SOLE_CONFIG_PATH", tempDir)
	t.Setenv("GO_SOLE_SESSION_FILE_PATH", filepath.Join(tempDir, "session.json"))

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if cfg.API.BaseURL != "https://yaml.example.com" {
		t.Errorf("expected base url from yaml, got %s", cfg.API.BaseURL)
	}
	if cfg.Cache.SettleTimeout != 750*time.Millisecond {
		t.Errorf("expected settle timeout 750ms, got %v", cfg.Cache.SettleTimeout)
	}
}

func TestLoadConfig_CreatesSessionFile(t *testing.T) {
	tempDir := t.TempDir()
	sessionPath := filepath.Join(tempDir, "data", "session.json")
	t.Setenv("GO_SOLE_CONFIG_PATH", tempDir)
	t.Setenv("GO_SOLE_SESSION_FILE_PATH", sessionPath)

	if _, err := LoadConfig(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	content, err := os.ReadFile(sessionPath)
	if err != nil {
		t.Fatalf("expected session file to be created: %v", err)
	}
	if string(content) != "{}" {
		t.Errorf("expected '{}', got '%s'", string(content))
	}
}

func TestLoadConfig_KeepsExistingSessionFile(t *testing.T) {
	tempDir := t.TempDir()
	sessionPath := filepath.Join(tempDir, "session.json")
	existing := `{"token":"abc","role":"admin"}`
	if err := os.WriteFile(sessionPath, []byte(existing), 0o600); err != nil {
		t.Fatalf("failed to write session file: %v", err)
	}
	t.Setenv("GO_SOLE_CONFIG_PATH", tempDir)
	t.Setenv("GO_SOLE_SESSION_FILE_PATH", sessionPath)

	if _, err := LoadConfig(); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	content, _ := os.ReadFile(sessionPath)
	if string(content) != existing {
		t.Errorf("expected session file to be untouched, got '%s'", string(content))
	}
}
