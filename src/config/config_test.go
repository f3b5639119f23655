package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
name: "astock-collector"
host: "127.0.0.1"
port: 8880
log_level: "INFO"
storage:
  db_type: "sqlite"
  db_path: "stock.db"
provider:
  list_url: "https://example.com/clist"
  realtime_url: "https://example.com/realtime"
  kline_url: "https://example.com/kline"
`

func TestNewConfigAppliesDefaults(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Network.RequestTimeout)
	assert.Equal(t, 100, cfg.Provider.PageSize)
	assert.Equal(t, 8, cfg.Market.UTCOffsetHours)
	assert.Equal(t, "000001", cfg.Market.SampleCode)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewConfigInvalidPort(t *testing.T) {
	bad := `
name: "astock-collector"
host: "127.0.0.1"
port: 80
storage:
  db_type: "sqlite"
  db_path: "stock.db"
provider:
  list_url: "u"
  realtime_url: "u"
  kline_url: "u"
`
	_, err := NewConfig(writeConfig(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestNewConfigPostgresNeedsConnectionString(t *testing.T) {
	bad := `
name: "astock-collector"
host: "127.0.0.1"
port: 8880
storage:
  db_type: "postgres"
provider:
  list_url: "u"
  realtime_url: "u"
  kline_url: "u"
`
	_, err := NewConfig(writeConfig(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection string")
}

func TestNewConfigMissingProviderURLs(t *testing.T) {
	bad := `
name: "astock-collector"
host: "127.0.0.1"
port: 8880
storage:
  db_type: "sqlite"
  db_path: "stock.db"
`
	_, err := NewConfig(writeConfig(t, bad))
	assert.Error(t, err)
}
