package dbhandler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("top level settings", func(t *testing.T) {
		cfg, err := LoadConfigFile(writeConfig(t, `
driver: pgx
server: db.internal:6432
user: app
pass: secret
database: app
params:
  sslmode: disable
connect_retries: 3
connect_retry_interval: 500ms
session:
  application_name: worker
`))
		require.NoError(t, err)
		assert.Equal(t, Config{
			Driver:               "pgx",
			Server:               "db.internal:6432",
			User:                 "app",
			Pass:                 "secret",
			Database:             "app",
			Params:               map[string]string{"sslmode": "disable"},
			ConnectRetries:       3,
			ConnectRetryInterval: 500 * time.Millisecond,
			Session:              map[string]string{"application_name": "worker"},
		}, cfg)
	})

	t.Run("settings under db", func(t *testing.T) {
		cfg, err := LoadConfigFile(writeConfig(t, `
db:
  server: localhost
  user: root
  database: shop
`))
		require.NoError(t, err)
		assert.Equal(t, Config{Server: "localhost", User: "root", Database: "shop"}, cfg)
	})

	t.Run("json file", func(t *testing.T) {
		cfg, err := LoadConfigFile(writeConfig(t, `{"server": "127.0.0.1:3307", "pass": "x"}`))
		require.NoError(t, err)
		assert.Equal(t, Config{Server: "127.0.0.1:3307", Pass: "x"}, cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Config{}, cfg)
	})

	t.Run("invalid file", func(t *testing.T) {
		_, err := LoadConfigFile(writeConfig(t, "server: [unterminated"))
		assert.Error(t, err)
	})
}

func TestResolveConfig(t *testing.T) {
	file := Config{
		Server:   "file-host",
		User:     "file-user",
		Pass:     "file-pass",
		Database: "file-db",
		Params:   map[string]string{"charset": "utf8mb4", "parseTime": "true"},
	}
	explicit := Config{
		User:   "explicit-user",
		Params: map[string]string{"parseTime": "false"},
	}

	resolved := ResolveConfig(DefaultConfig(), file, explicit)
	assert.Equal(t, Config{
		Driver:               DriverMySQL,
		Server:               "file-host",
		User:                 "explicit-user",
		Pass:                 "file-pass",
		Database:             "file-db",
		Params:               map[string]string{"charset": "utf8mb4", "parseTime": "false"},
		MaxOpenConns:         1,
		ConnectRetryInterval: 2 * time.Second,
	}, resolved)

	// inputs are not modified
	assert.Equal(t, "true", file.Params["parseTime"])
	assert.Equal(t, DefaultConfig(), ResolveConfig(DefaultConfig(), Config{}, Config{}))

	defaults := DefaultConfig()
	defaults.Session = map[string]string{"time_zone": "+00:00"}
	resolved = ResolveConfig(defaults, file, Config{})
	resolved.Params["charset"] = "latin1"
	resolved.Session["time_zone"] = "+02:00"
	assert.Equal(t, "utf8mb4", file.Params["charset"])
	assert.Equal(t, "+00:00", defaults.Session["time_zone"])
}

func TestHostPort(t *testing.T) {
	host, port, err := Config{Server: "localhost"}.HostPort()
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)
	assert.Equal(t, 3306, port)

	host, port, err = Config{Driver: DriverPostgres, Server: "db"}.HostPort()
	require.NoError(t, err)
	assert.Equal(t, "db", host)
	assert.Equal(t, 5432, port)

	host, port, err = Config{Server: "10.0.0.1:3307"}.HostPort()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", host)
	assert.Equal(t, 3307, port)

	_, _, err = Config{Server: "host:port"}.HostPort()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	dsn, err := Config{
		Driver:   DriverMySQL,
		Server:   "db:3307",
		User:     "app",
		Pass:     "secret",
		Database: "shop",
	}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "app:secret@tcp(db:3307)/shop", dsn)

	dsn, err = Config{
		Driver:   DriverPostgres,
		Server:   "db",
		User:     "app",
		Pass:     "it's secret",
		Database: "shop",
		Params:   map[string]string{"sslmode": "disable"},
	}.DSN()
	require.NoError(t, err)
	assert.Equal(t, `host=db port=5432 user=app password='it\'s secret' dbname=shop sslmode=disable`, dsn)

	dsn, err = Config{Driver: DriverSQLite, Database: ":memory:"}.DSN()
	require.NoError(t, err)
	assert.Equal(t, ":memory:", dsn)

	dsn, err = Config{Driver: DriverSQLite, Database: "app.db", Params: map[string]string{"_foreign_keys": "1"}}.DSN()
	require.NoError(t, err)
	assert.Equal(t, "file:app.db?_foreign_keys=1", dsn)

	_, err = Config{Driver: "oracle"}.DSN()
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}
