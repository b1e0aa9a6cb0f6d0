package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "crm.db", cfg.Store.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, float64(0), cfg.Migration.RowsPerSec)
	assert.Equal(t, 30, cfg.Progress.PingSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CRMMIGRATE_SERVER_PORT", "9090")
	t.Setenv("CRMMIGRATE_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		store   StoreConfig
		wantErr bool
	}{
		{"sqlite with path", StoreConfig{Driver: "sqlite", Path: "crm.db"}, false},
		{"sqlite without path", StoreConfig{Driver: "sqlite"}, true},
		{"postgres with url", StoreConfig{Driver: "postgres", DatabaseURL: "postgres://localhost/crm"}, false},
		{"postgres without url", StoreConfig{Driver: "postgres"}, true},
		{"unknown driver", StoreConfig{Driver: "oracle"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{Store: tc.store}
			if tc.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
