// Package config handles mvq configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/realtyfeed/mvquery/internal/catalog"
	"github.com/realtyfeed/mvquery/internal/logging"
	"github.com/realtyfeed/mvquery/internal/query"
	"github.com/realtyfeed/mvquery/internal/store"
)

// Environment variables that override file settings.
const (
	EnvConfigPath = "MVQ_CONFIG"
	EnvDSN        = "MVQ_DATABASE_DSN"
)

// Config represents the mvq configuration file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Query    QueryConfig    `toml:"query"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig selects the execution adapter.
type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `toml:"driver"`

	// DSN is a pgx connection string or a SQLite file path.
	DSN string `toml:"dsn"`

	// MaxConns caps the PostgreSQL pool. Zero keeps the pgxpool default.
	MaxConns int32 `toml:"max_conns"`
}

// ServerConfig configures `mvq serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// QueryConfig configures statement generation.
type QueryConfig struct {
	// View is the relation filters are compiled against.
	View string `toml:"view"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration is a time.Duration written as a Go duration string ("15s").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: store.DriverPostgres},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
		},
		Query: QueryConfig{View: catalog.MembershipView},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load loads the configuration from the default location.
// Returns the default config if the file doesn't exist.
func Load() (*Config, error) {
	return LoadOptional(DefaultPath())
}

// LoadOptional loads path, falling back to defaults when it does not exist.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		cfg.applyEnv()
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from a specific path. Keys missing from
// the file keep their defaults; environment overrides are applied last.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		c.Database.DSN = dsn
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.Log.Format = strings.ToLower(format)
	}
}

// Validate checks the values a command depends on.
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Database.Driver) {
	case store.DriverPostgres, "postgresql", "pgx", store.DriverSQLite, "sqlite3":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}
	if c.Database.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("database.max_conns: must not be negative"))
	}
	if !query.ValidViewName(c.Query.View) {
		errs = append(errs, fmt.Errorf("query.view: %q is not a valid relation name", c.Query.View))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format: must be text or json, got %q", c.Log.Format))
	}
	if c.Server.ReadTimeout.Duration < 0 || c.Server.WriteTimeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("server: timeouts must not be negative"))
	}
	return errors.Join(errs...)
}

// Store returns the adapter settings.
func (c *Config) Store() store.Config {
	return store.Config{
		Driver:   c.Database.Driver,
		DSN:      c.Database.DSN,
		MaxConns: c.Database.MaxConns,
	}
}

// Logging returns the logger settings. An invalid level falls back to info.
func (c *Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		cfg.Level = level
	}
	if c.Log.Format != "" {
		cfg.Format = c.Log.Format
	}
	return cfg
}

// ResolvePath picks the config file: the --config flag, then $MVQ_CONFIG,
// then DefaultPath.
func ResolvePath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultPath()
}

// DefaultPath returns the default config file path.
// Checks ~/.config/mvq/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "mvq", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "mvq", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

const defaultConfigTemplate = `# mvq configuration

[database]
# "postgres" or "sqlite"
driver = "postgres"
# pgx connection string, or a SQLite file path.
# MVQ_DATABASE_DSN overrides this value.
dsn = "postgres://localhost:5432/membership?sslmode=disable"
# max_conns = 8

[server]
addr = ":8080"
read_timeout = "10s"
write_timeout = "30s"

[query]
view = "membershipMV"

[log]
# debug, info, warn, error (LOG_LEVEL overrides)
level = "info"
# text or json (LOG_FORMAT overrides)
format = "text"
`

// ErrExists is returned by CreateDefault when the file exists and force is
// not set.
var ErrExists = errors.New("config file already exists")

// CreateDefault writes a commented default config to path.
func CreateDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	return writeFile(path, []byte(defaultConfigTemplate))
}
