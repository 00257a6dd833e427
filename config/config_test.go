package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, time.Hour, cfg.Redis.RocketTTL)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, `
storage:
  driver: postgres
http:
  address: ":8181"
database:
  host: db
  port: 6543
redis:
  enabled: true
  rocket_ttl: 10m
kafka:
  brokers: ["kafka:9092"]
  flight_events_topic: events
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, ":8181", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, 10*time.Minute, cfg.Redis.RocketTTL)
	assert.True(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "events", cfg.Kafka.FlightEventsTopic)
	assert.Equal(t, "flight-notifications", cfg.Kafka.NotificationsTopic)
	assert.Equal(t, "host=db port=6543 user=postgres password= dbname=astrobookings sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_ADDRESS", ":7000")
	t.Setenv("DB_PORT", "15432")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Address)
	assert.Equal(t, 15432, cfg.Database.Port)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GRPC_ADDRESS=:9999\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("GRPC_ADDRESS") })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.GRPC.Address)
}

func TestLoadConfig_InvalidDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeConfig(t, "storage:\n  driver: sqlite\n")

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "storage.driver")
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_PORT", "abc")

	_, err := LoadConfig("")
	assert.ErrorContains(t, err, "DB_PORT")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}
