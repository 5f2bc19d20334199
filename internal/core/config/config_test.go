package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	t.Run("Defaults with env secret", func(t *testing.T) {
		t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")

		cfg, err := Read(missing)
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.JWT.Secret)
		assert.Equal(t, 5000, cfg.App.HTTP.Port)
		assert.Equal(t, 7*24*60, cfg.JWT.AccessTokenTTLMin)
		assert.Equal(t, "memory", cfg.DB.Driver)
		assert.True(t, cfg.App.Limits.PerIP)
	})

	t.Run("Legacy PORT and prefixed overrides", func(t *testing.T) {
		t.Setenv("APP_JWT_SECRET", "from-app")
		t.Setenv("PORT", "8088")
		t.Setenv("APP_DB_DRIVER", "postgres")
		t.Setenv("DB_URI", "postgres://u:p@localhost/furniture")
		t.Setenv("APP_REDIS_ADDR", "localhost:6379")

		cfg, err := Read(missing)
		require.NoError(t, err)
		assert.Equal(t, "from-app", cfg.JWT.Secret)
		assert.Equal(t, 8088, cfg.App.HTTP.Port)
		assert.Equal(t, "postgres", cfg.DB.Driver)
		assert.Equal(t, "postgres://u:p@localhost/furniture", cfg.DB.DSN)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	})

	t.Run("Yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		yaml := "jwt:\n  secret: yaml-secret\n  issuer: shop\nlog:\n  level: debug\napp:\n  cors:\n    alloworigins: [\"http://localhost:5173\"]\n"
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

		cfg, err := Read(path)
		require.NoError(t, err)
		assert.Equal(t, "yaml-secret", cfg.JWT.Secret)
		assert.Equal(t, "shop", cfg.JWT.Issuer)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, []string{"http://localhost:5173"}, cfg.App.CORS.AllowOrigins)
	})

	t.Run("Missing secret", func(t *testing.T) {
		t.Setenv("ACCESS_TOKEN_SECRET", "")
		t.Setenv("APP_JWT_SECRET", "")
		_, err := Read(missing)
		assert.ErrorContains(t, err, "jwt.secret")
	})

	t.Run("Unknown driver", func(t *testing.T) {
		t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
		t.Setenv("APP_DB_DRIVER", "sqlite")
		_, err := Read(missing)
		assert.ErrorContains(t, err, "sqlite")
	})

	t.Run("DSN required outside memory", func(t *testing.T) {
		t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
		t.Setenv("APP_DB_DRIVER", "mongo")
		_, err := Read(missing)
		assert.ErrorContains(t, err, "db.dsn")
	})
}
