package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Session backends accepted by SessionBackend.
const (
	BackendCookie   = "cookie"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr          string        `yaml:"addr"`
	APIBaseURL    string        `yaml:"api_url"`
	APITimeout    time.Duration `yaml:"api_timeout"`
	LoginEndpoint string        `yaml:"login_endpoint"`

	SessionBackend string        `yaml:"session_backend"`
	SessionSecret  string        `yaml:"session_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	SecureCookies  bool          `yaml:"secure_cookies"`
	DatabaseURL    string        `yaml:"database_url"`
	RedisURL       string        `yaml:"redis_url"`

	StaticDir string `yaml:"static_dir"`
	TokenFile string `yaml:"token_file"`
	LogLevel  string `yaml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Addr:           ":8080",
		APIBaseURL:     "http://127.0.0.1:8000",
		APITimeout:     10 * time.Second,
		LoginEndpoint:  "/api/auth/token/login/",
		SessionBackend: BackendCookie,
		SessionTTL:     30 * 24 * time.Hour,
		StaticDir:      "./web/static",
		TokenFile:      filepath.Join(home, ".storefront", "token"),
		LogLevel:       "info",
	}
}

// Load reads `.env` (when present), the optional YAML file named by
// STOREFRONT_CONFIG, and then environment variables, in that order of
// increasing precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	setString(&c.Addr, "STOREFRONT_ADDR")
	setString(&c.APIBaseURL, "STOREFRONT_API_URL")
	setString(&c.LoginEndpoint, "STOREFRONT_LOGIN_ENDPOINT")
	setString(&c.SessionBackend, "STOREFRONT_SESSION_BACKEND")
	setString(&c.SessionSecret, "JWT_SECRET")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.StaticDir, "STOREFRONT_STATIC_DIR")
	setString(&c.TokenFile, "STOREFRONT_TOKEN_FILE")
	setString(&c.LogLevel, "STOREFRONT_LOG_LEVEL")

	if v := os.Getenv("STOREFRONT_SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("STOREFRONT_SECURE_COOKIES: invalid bool %q", v)
		}
		c.SecureCookies = b
	}
	if err := setDuration(&c.APITimeout, "STOREFRONT_API_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&c.SessionTTL, "STOREFRONT_SESSION_TTL")
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.SessionBackend {
	case BackendCookie, BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("session backend %q requires DATABASE_URL", c.SessionBackend)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("session backend %q requires REDIS_URL", c.SessionBackend)
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("api url is required")
	}
	if c.APITimeout < 0 {
		return fmt.Errorf("api timeout must be >= 0")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setDuration accepts Go durations ("15s") or a bare number of seconds.
func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return nil
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q", key, v)
	}
	*dst = time.Duration(secs) * time.Second
	return nil
}
