package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bassista/go_sole/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Realtime transport kinds.
const (
	TransportNone  = "none"
	TransportSSE   = "sse"
	TransportRedis = "redis"
)

// Config is the full console configuration.
type Config struct {
	Server   ServerConfig
	API      APIConfig
	Session  SessionConfig
	Cache    CacheConfig
	Realtime RealtimeConfig
	Gate     GateConfig
	Misc     MiscConfig
}

// ServerConfig configures the console HTTP servers.
type ServerConfig struct {
	Port               int
	MetricsPort        int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutDownTimeout    time.Duration
	RequestTimeout     time.Duration
	CORSAllowedOrigins string
}

// APIConfig points the resource client at the shop REST API.
// Timeout 0 keeps the transport default (no client-side deadline).
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// SessionConfig controls where the persisted session lives.
type SessionConfig struct {
	FilePath        string
	PersistInterval time.Duration
}

// CacheConfig tunes the query cache.
type CacheConfig struct {
	PollTick         time.Duration
	NotificationPoll time.Duration
	SettleTimeout    time.Duration
	StaleTime        time.Duration
}

// RealtimeConfig selects the push channel used by the notifier.
type RealtimeConfig struct {
	Transport         string
	StreamPath        string
	ReconnectInterval time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisChannel      string
}

// GateConfig configures role-gated routes.
type GateConfig struct {
	LoginPath string
	BackDelay time.Duration
}

// MiscConfig holds logging and framework switches.
type MiscConfig struct {
	LogLevel   string
	LogFormat  string
	GinMode    string
	SampleData bool
}

// LoadConfig reads .env, the optional config.yaml and GO_SOLE_* environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithComponent("config").Warnf("cannot read .env file: %v", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getEnvOrDefault("GO_SOLE_CONFIG_PATH", "./config"))

	setDefaults(v)

	v.SetEnvPrefix("GO_SOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config file error: %w", err)
		}
		logger.WithComponent("config").Debugf("no config file found, using defaults and env vars")
	}

	port, err := getEnvOrViperPort(v, "PORT", "server.port")
	if err != nil {
		return nil, err
	}
	metricsPort, err := getEnvOrViperPort(v, "METRICS_PORT", "server.metrics_port")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               port,
			MetricsPort:        metricsPort,
			ReadTimeout:        v.GetDuration("server.read_timeout"),
			WriteTimeout:       v.GetDuration("server.write_timeout"),
			IdleTimeout:        v.GetDuration("server.idle_timeout"),
			ShutDownTimeout:    v.GetDuration("server.shutdown_timeout"),
			RequestTimeout:     v.GetDuration("server.request_timeout"),
			CORSAllowedOrigins: v.GetString("server.cors_allowed_origins"),
		},
		API: APIConfig{
			BaseURL:   v.GetString("api.base_url"),
			Timeout:   v.GetDuration("api.timeout"),
			UserAgent: v.GetString("api.user_agent"),
		},
		Session: SessionConfig{
			FilePath:        v.GetString("session.file_path"),
			PersistInterval: v.GetDuration("session.persist_interval"),
		},
		Cache: CacheConfig{
			PollTick:         v.GetDuration("cache.poll_tick"),
			NotificationPoll: v.GetDuration("cache.notification_poll"),
			SettleTimeout:    v.GetDuration("cache.settle_timeout"),
			StaleTime:        v.GetDuration("cache.stale_time"),
		},
		Realtime: RealtimeConfig{
			Transport:         strings.ToLower(v.GetString("realtime.transport")),
			StreamPath:        v.GetString("realtime.stream_path"),
			ReconnectInterval: v.GetDuration("realtime.reconnect_interval"),
			RedisAddr:         v.GetString("realtime.redis_addr"),
			RedisPassword:     v.GetString("realtime.redis_password"),
			RedisDB:           v.GetInt("realtime.redis_db"),
			RedisChannel:      v.GetString("realtime.redis_channel"),
		},
		Gate: GateConfig{
			LoginPath: v.GetString("gate.login_path"),
			BackDelay: v.GetDuration("gate.back_delay"),
		},
		Misc: MiscConfig{
			LogLevel:   v.GetString("misc.log_level"),
			LogFormat:  v.GetString("misc.log_format"),
			GinMode:    v.GetString("misc.gin_mode"),
			SampleData: v.GetBool("misc.sample_data"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := ensureSessionFile(cfg.Session.FilePath); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 15*time.Second)
	v.SetDefault("server.cors_allowed_origins", "*")

	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.timeout", 0)
	v.SetDefault("api.user_agent", "go-sole-console/1.0")

	v.SetDefault("session.file_path", "./config/data/session.json")
	v.SetDefault("session.persist_interval", 5*time.Second)

	v.SetDefault("cache.poll_tick", time.Second)
	v.SetDefault("cache.notification_poll", 5*time.Second)
	v.SetDefault("cache.settle_timeout", 3*time.Second)
	v.SetDefault("cache.stale_time", 0)

	v.SetDefault("realtime.transport", TransportSSE)
	v.SetDefault("realtime.stream_path", "/notifications/stream")
	v.SetDefault("realtime.reconnect_interval", 3*time.Second)
	v.SetDefault("realtime.redis_addr", "localhost:6379")
	v.SetDefault("realtime.redis_db", 0)
	v.SetDefault("realtime.redis_channel", "new-notification")

	v.SetDefault("gate.login_path", "/login")
	v.SetDefault("gate.back_delay", 3*time.Second)

	v.SetDefault("misc.log_level", "info")
	v.SetDefault("misc.log_format", "text")
	v.SetDefault("misc.gin_mode", "release")
	v.SetDefault("misc.sample_data", false)
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.Server.MetricsPort)
	}
	if c.Server.MetricsPort != 0 && c.Server.MetricsPort == c.Server.Port {
		return errors.New("metrics port must differ from server port")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.IdleTimeout <= 0 || c.Server.ShutDownTimeout <= 0 {
		return errors.New("server read, idle and shutdown timeouts must be positive")
	}
	if c.Server.WriteTimeout < 0 || c.Server.RequestTimeout < 0 {
		return errors.New("server write and request timeouts must not be negative")
	}

	if c.API.BaseURL == "" {
		return errors.New("api base url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base url: %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return errors.New("api timeout must not be negative")
	}

	if c.Session.FilePath == "" {
		return errors.New("session file path is required")
	}
	if c.Session.PersistInterval <= 0 {
		return errors.New("session persist interval must be positive")
	}

	if c.Cache.PollTick <= 0 {
		return errors.New("cache poll tick must be positive")
	}
	if c.Cache.NotificationPoll <= 0 {
		return errors.New("notification poll interval must be positive")
	}
	if c.Cache.SettleTimeout <= 0 {
		return errors.New("cache settle timeout must be positive")
	}
	if c.Cache.StaleTime < 0 {
		return errors.New("cache stale time must not be negative")
	}

	switch c.Realtime.Transport {
	case TransportNone:
	case TransportSSE:
		if c.Realtime.StreamPath == "" {
			return errors.New("realtime stream path is required for sse transport")
		}
	case TransportRedis:
		if c.Realtime.RedisAddr == "" || c.Realtime.RedisChannel == "" {
			return errors.New("realtime redis address and channel are required for redis transport")
		}
	default:
		return fmt.Errorf("unknown realtime transport: %q (supported: %s, %s, %s)",
			c.Realtime.Transport, TransportNone, TransportSSE, TransportRedis)
	}
	if c.Realtime.ReconnectInterval <= 0 {
		return errors.New("realtime reconnect interval must be positive")
	}

	if c.Gate.LoginPath == "" {
		return errors.New("gate login path is required")
	}
	if c.Gate.BackDelay < 0 {
		return errors.New("gate back delay must not be negative")
	}

	return nil
}

// ensureSessionFile creates an empty session document when none exists yet.
func ensureSessionFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat session file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	logger.WithComponent("config").Infof("created empty session file at %s", path)
	return nil
}

func getEnvOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvOrViperPort(v *viper.Viper, envKey, viperKey string) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", envKey, err)
		}
		return port, nil
	}
	return v.GetInt(viperKey), nil
}
