package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestFromFile(t *testing.T) {
	t.Run("full postgres config", func(t *testing.T) {
		path := writeConfig(t, `
listen_addr = ":9000"
log_level   = "debug"

database {
  driver   = "postgres"
  host     = "db.internal"
  port     = 5433
  user     = "catalog"
  password = "secret"
  dbname   = "catalog"
}

auth {
  mode      = "oidc"
  issuer    = "https://accounts.example.com"
  client_id = "catalog-web"
}
`)
		cfg, err := FromFile(path)
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.ListenAddr)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, AuthModeOIDC, cfg.Auth.Mode)
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeConfig(t, `
database {
  driver = "sqlite"
  path   = "catalog.db"
}

auth {
  local_secret = "devsecret"
}
`)
		cfg, err := FromFile(path)
		require.NoError(t, err)
		assert.Equal(t, ":8000", cfg.ListenAddr)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	})

	t.Run("missing database block", func(t *testing.T) {
		path := writeConfig(t, `
auth {
  local_secret = "devsecret"
}
`)
		_, err := FromFile(path)
		assert.Error(t, err)
	})

	t.Run("oidc mode requires issuer", func(t *testing.T) {
		path := writeConfig(t, `
database {
  driver = "sqlite"
  path   = "catalog.db"
}

auth {
  mode = "oidc"
}
`)
		_, err := FromFile(path)
		assert.Error(t, err)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		path := writeConfig(t, `
database {
  driver = "oracle"
}

auth {
  local_secret = "devsecret"
}
`)
		_, err := FromFile(path)
		assert.Error(t, err)
	})
}
