package dbhandler

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"net"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

// Supported driver names
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"
)

// Config holds the connection settings of a Handler. Zero values mean
// "not set" when configurations are merged with ResolveConfig.
type Config struct {
	// Driver is the database/sql driver: "mysql", "pgx" or "sqlite3"
	Driver string `yaml:"driver"`

	// Server is the database host, optionally with a port ("host:port")
	Server string `yaml:"server"`

	User     string `yaml:"user"`
	Pass     string `yaml:"pass"`
	Database string `yaml:"database"`

	// Params are driver-specific DSN parameters
	Params map[string]string `yaml:"params"`

	MaxOpenConns         int           `yaml:"max_open_conns"`
	ConnectRetries       int           `yaml:"connect_retries"`
	ConnectRetryInterval time.Duration `yaml:"connect_retry_interval"`

	// Tracing wraps the driver with OpenTelemetry instrumentation
	Tracing bool `yaml:"tracing"`

	// Session holds session variables set right after connecting
	Session map[string]string `yaml:"session"`
}

// DefaultConfig returns the built-in defaults: a MySQL server on
// localhost, held through a single connection.
func DefaultConfig() Config {
	return Config{
		Driver:               DriverMySQL,
		Server:               "localhost",
		MaxOpenConns:         1,
		ConnectRetryInterval: 2 * time.Second,
	}
}

// LoadConfigFile reads a YAML (or JSON) configuration file. The settings
// may be at the top level of the file or under a "db" key. A missing file
// is not an error and results in an empty Config.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed reading config file: %w", err)
	}

	var file struct {
		Config `yaml:",inline"`
		DB     *Config `yaml:"db"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("failed parsing config file %s: %w", path, err)
	}

	if file.DB != nil {
		return *file.DB, nil
	}
	return file.Config, nil
}

// ResolveConfig merges configurations: for every setting, the explicit
// value takes precedence over the file value, which takes precedence over
// the default. Zero values never override. Maps are merged key by key.
func ResolveConfig(defaults, file, explicit Config) Config {
	resolved := defaults
	for _, c := range []Config{file, explicit} {
		resolved.Driver = pick(resolved.Driver, c.Driver)
		resolved.Server = pick(resolved.Server, c.Server)
		resolved.User = pick(resolved.User, c.User)
		resolved.Pass = pick(resolved.Pass, c.Pass)
		resolved.Database = pick(resolved.Database, c.Database)
		resolved.MaxOpenConns = pick(resolved.MaxOpenConns, c.MaxOpenConns)
		resolved.ConnectRetries = pick(resolved.ConnectRetries, c.ConnectRetries)
		resolved.ConnectRetryInterval = pick(resolved.ConnectRetryInterval, c.ConnectRetryInterval)
		resolved.Tracing = resolved.Tracing || c.Tracing
		resolved.Params = mergeMaps(resolved.Params, c.Params)
		resolved.Session = mergeMaps(resolved.Session, c.Session)
	}
	return resolved
}

func pick[T comparable](current, override T) T {
	var zero T
	if override != zero {
		return override
	}
	return current
}

func mergeMaps(base, override map[string]string) map[string]string {
	if len(override) == 0 {
		return maps.Clone(base)
	}
	merged := make(map[string]string, len(base)+len(override))
	maps.Copy(merged, base)
	maps.Copy(merged, override)
	return merged
}

// HostPort splits Server into host and port. Without an explicit port,
// the default port of the driver is returned.
func (c Config) HostPort() (host string, port int, err error) {
	switch c.Driver {
	case DriverPostgres:
		port = 5432
	default:
		port = 3306
	}

	if !strings.Contains(c.Server, ":") {
		return c.Server, port, nil
	}

	host, portStr, err := net.SplitHostPort(c.Server)
	if err != nil {
		return "", 0, fmt.Errorf("invalid server %q: %w", c.Server, err)
	}
	port, err = strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in server %q: %w", c.Server, err)
	}
	return host, port, nil
}

// DSN builds the data source name for the configured driver. For SQLite,
// Database is the path of the database file (or ":memory:").
func (c Config) DSN() (string, error) {
	switch c.Driver {
	case DriverMySQL:
		host, port, err := c.HostPort()
		if err != nil {
			return "", err
		}
		cfg := mysql.NewConfig()
		cfg.User = c.User
		cfg.Passwd = c.Pass
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
		cfg.DBName = c.Database
		if len(c.Params) > 0 {
			cfg.Params = maps.Clone(c.Params)
		}
		return cfg.FormatDSN(), nil
	case DriverPostgres:
		host, port, err := c.HostPort()
		if err != nil {
			return "", err
		}
		pairs := []string{
			"host=" + pgQuote(host),
			"port=" + strconv.Itoa(port),
		}
		if c.User != "" {
			pairs = append(pairs, "user="+pgQuote(c.User))
		}
		if c.Pass != "" {
			pairs = append(pairs, "password="+pgQuote(c.Pass))
		}
		if c.Database != "" {
			pairs = append(pairs, "dbname="+pgQuote(c.Database))
		}
		for _, key := range slices.Sorted(maps.Keys(c.Params)) {
			pairs = append(pairs, key+"="+pgQuote(c.Params[key]))
		}
		return strings.Join(pairs, " "), nil
	case DriverSQLite:
		if len(c.Params) == 0 {
			return c.Database, nil
		}
		query := url.Values{}
		for key, value := range c.Params {
			query.Set(key, value)
		}
		return "file:" + c.Database + "?" + query.Encode(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
}

// pgQuote quotes a value of a keyword/value connection string.
func pgQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, ` '\`) {
		return s
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
