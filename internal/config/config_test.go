package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFrom_MergesDefaults(t *testing.T) {
	t.Setenv(EnvDSN, "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	path := writeConfig(t, `
[database]
driver = "sqlite"
dsn = "/var/lib/mvq/members.db"

[server]
read_timeout = "3s"
`)
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/var/lib/mvq/members.db", cfg.Database.DSN)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout.Duration)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "membershipMV", cfg.Query.View)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv(EnvDSN, "postgres://env/db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := LoadFrom(writeConfig(t, "[database]\ndsn = \"postgres://file/db\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.Database.DSN)
	assert.Equal(t, "json", cfg.Log.Format)

	lc := cfg.Logging()
	assert.Equal(t, slog.LevelDebug, lc.Level)
	assert.Equal(t, "json", lc.Format)

	sc := cfg.Store()
	assert.Equal(t, "postgres", sc.Driver)
	assert.Equal(t, "postgres://env/db", sc.DSN)
}

func TestLoadFrom_Errors(t *testing.T) {
	_, err := LoadFrom(writeConfig(t, "[database\n"))
	assert.Error(t, err)

	_, err = LoadFrom(writeConfig(t, "[database]\ndriverr = \"sqlite\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driverr")

	_, err = LoadFrom(writeConfig(t, "[server]\nread_timeout = \"soon\"\n"))
	assert.Error(t, err)
}

func TestLoadOptional_MissingFile(t *testing.T) {
	t.Setenv(EnvDSN, "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "oracle"
	cfg.Database.MaxConns = -1
	cfg.Query.View = "members; DROP TABLE x"
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"database.driver", "database.max_conns", "query.view", "log.level", "log.format"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/mvq/env.toml")
	assert.Equal(t, "/tmp/flag.toml", ResolvePath(" /tmp/flag.toml "))
	assert.Equal(t, "/etc/mvq/env.toml", ResolvePath(""))

	t.Setenv(EnvConfigPath, "")
	assert.Equal(t, DefaultPath(), ResolvePath(""))
}

func TestCreateDefault(t *testing.T) {
	t.Setenv(EnvDSN, "")
	path := filepath.Join(t.TempDir(), "mvq", "config.toml")

	require.NoError(t, CreateDefault(path, false))
	err := CreateDefault(path, false)
	assert.True(t, errors.Is(err, ErrExists))
	require.NoError(t, CreateDefault(path, true))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.True(t, strings.HasPrefix(cfg.Database.DSN, "postgres://"))
}
