package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromViper(newViper(""))
	require.NoError(t, err)
	assert.Equal(t, "ca", cfg.Country)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "static", cfg.CatalogStore)
	assert.Equal(t, 25.0, cfg.Geo.DefaultMaxKm)
	assert.Equal(t, 5, cfg.Geo.DefaultMaxResult)
	assert.Equal(t, 3, cfg.Geo.PostalPrefixLen)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("COUNTRY", "SE")
	t.Setenv("REDIS_URL", "redis:6379")
	t.Setenv("CATALOG_STORE", "disk")
	t.Setenv("DEFAULT_MAXRESULTS", "8")

	cfg, err := FromViper(newViper(""))
	require.NoError(t, err)
	assert.Equal(t, "se", cfg.Country)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "disk", cfg.CatalogStore)
	assert.Equal(t, 8, cfg.Geo.DefaultMaxResult)
	assert.Equal(t, 0, cfg.Geo.PostalPrefixLen)
}

func TestConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("listen: \":9000\"\ndefault:\n  maxdistance: 10\n"), 0o644))

	cfg, err := FromViper(newViper(file))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, 10.0, cfg.Geo.DefaultMaxKm)
}

func TestValidate(t *testing.T) {
	t.Setenv("CATALOG_STORE", "postgres")
	_, err := FromViper(newViper(""))
	assert.Error(t, err)

	t.Setenv("CATALOG_STORE", "ftp")
	_, err = FromViper(newViper(""))
	assert.Error(t, err)
}
