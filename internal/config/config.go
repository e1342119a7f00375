// README: Config loader: YAML file overlay (ARK_CONFIG_FILE), then env overrides, then defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	AuthSession  = "session"
	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

type Config struct {
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	AMQP struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`
	Auth struct {
		Mode       string        `yaml:"mode"`
		JWTSecret  string        `yaml:"jwt_secret"`
		SessionTTL time.Duration `yaml:"session_ttl"`
	} `yaml:"auth"`
	Firebase struct {
		ProjectID       string `yaml:"project_id"`
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firebase"`
	Maps struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"maps"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads ARK_CONFIG_FILE when set, applies env overrides and fills defaults.
// Optional backends (DB, AMQP) stay disabled when their address is empty.
func Load() (Config, error) {
	var cfg Config
	if path := os.Getenv("ARK_CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.HTTP.Addr = envOrDefault("ARK_HTTP_ADDR", orDefault(cfg.HTTP.Addr, ":8080"))
	cfg.DB.DSN = envOrDefault("ARK_DB_DSN", cfg.DB.DSN)
	cfg.Redis.Addr = envOrDefault("ARK_REDIS_ADDR", orDefault(cfg.Redis.Addr, "localhost:6379"))
	cfg.AMQP.URL = envOrDefault("ARK_AMQP_URL", cfg.AMQP.URL)
	cfg.AMQP.Exchange = envOrDefault("ARK_AMQP_EXCHANGE", orDefault(cfg.AMQP.Exchange, "ride_topic"))
	cfg.Auth.Mode = envOrDefault("ARK_AUTH_MODE", orDefault(cfg.Auth.Mode, AuthSession))
	cfg.Auth.JWTSecret = envOrDefault("ARK_JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.SessionTTL = envOrDefaultDuration("ARK_SESSION_TTL", cfg.Auth.SessionTTL, 24*time.Hour)
	cfg.Firebase.ProjectID = envOrDefault("ARK_FIREBASE_PROJECT_ID", cfg.Firebase.ProjectID)
	cfg.Firebase.CredentialsFile = envOrDefault("ARK_FIREBASE_CREDENTIALS", cfg.Firebase.CredentialsFile)
	cfg.Maps.APIKey = envOrDefault("ARK_MAPS_API_KEY", cfg.Maps.APIKey)
	cfg.Log.Level = envOrDefault("ARK_LOG_LEVEL", orDefault(cfg.Log.Level, "info"))
	cfg.Log.Format = envOrDefault("ARK_LOG_FORMAT", orDefault(cfg.Log.Format, "json"))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Auth.Mode {
	case AuthSession:
	case AuthJWT:
		if c.Auth.JWTSecret == "" {
			return errors.New("ARK_JWT_SECRET is required when ARK_AUTH_MODE=jwt")
		}
	case AuthFirebase:
		if c.Firebase.ProjectID == "" {
			return errors.New("ARK_FIREBASE_PROJECT_ID is required when ARK_AUTH_MODE=firebase")
		}
	default:
		return fmt.Errorf("unknown ARK_AUTH_MODE %q", c.Auth.Mode)
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("ARK_SESSION_TTL must be positive")
	}
	return nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envOrDefaultDuration accepts Go durations ("90m") or plain seconds.
func envOrDefaultDuration(key string, cur, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	if cur != 0 {
		return cur
	}
	return def
}
