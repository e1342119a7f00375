// README: Config loader tests (defaults, YAML overlay, env precedence, validation).
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"ARK_CONFIG_FILE", "ARK_HTTP_ADDR", "ARK_DB_DSN", "ARK_REDIS_ADDR", "ARK_AMQP_URL",
	"ARK_AMQP_EXCHANGE", "ARK_AUTH_MODE", "ARK_JWT_SECRET", "ARK_SESSION_TTL",
	"ARK_FIREBASE_PROJECT_ID", "ARK_FIREBASE_CREDENTIALS", "ARK_MAPS_API_KEY",
	"ARK_LOG_LEVEL", "ARK_LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, AuthSession, cfg.Auth.Mode)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "ride_topic", cfg.AMQP.Exchange)
	assert.Empty(t, cfg.DB.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "ride.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9000"
db:
  dsn: postgres://file/ride
auth:
  mode: jwt
  jwt_secret: from-file
  session_ttl: 2h
log:
  level: debug
`), 0o600))

	t.Setenv("ARK_CONFIG_FILE", path)
	t.Setenv("ARK_HTTP_ADDR", ":9100")
	t.Setenv("ARK_SESSION_TTL", "600")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, "postgres://file/ride", cfg.DB.DSN)
	assert.Equal(t, AuthJWT, cfg.Auth.Mode)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 10*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"jwt without secret":       {"ARK_AUTH_MODE": "jwt"},
		"firebase without project": {"ARK_AUTH_MODE": "firebase"},
		"unknown mode":             {"ARK_AUTH_MODE": "ldap"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARK_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
}
