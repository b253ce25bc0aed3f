package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwise/internal/api"
	"spendwise/internal/api/memory"
	"spendwise/internal/api/rest"
	"spendwise/internal/config"
)

var (
	_ api.Gateway = (*rest.Client)(nil)
	_ api.Gateway = (*memory.Client)(nil)
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{APIBackend: "sheets"})
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{APIBackend: "rest", APIBaseURL: "http://api.local/api", MemoryDataPath: "/tmp/x.json"})
	require.NoError(t, err)
	assert.Equal(t, Config{Type: RESTBackend, BaseURL: "http://api.local/api", SnapshotPath: "/tmp/x.json"}, cfg)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"rest with url", Config{Type: RESTBackend, BaseURL: "http://x"}, false},
		{"rest without url", Config{Type: RESTBackend}, true},
		{"memory without snapshot", Config{Type: MemoryBackend}, false},
		{"unknown type", Config{Type: "sqlite"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
	assert.Equal(t, []string{"rest", "memory"}, GetBackendTypeStrings())
}

func TestCreateBackend(t *testing.T) {
	f := NewFactory(nil)

	res, err := f.CreateBackend(Config{Type: RESTBackend, BaseURL: "http://api.local/api"}, api.StaticToken(""))
	require.NoError(t, err)
	c, ok := res.Gateway.(*rest.Client)
	require.True(t, ok)
	assert.Equal(t, "http://api.local/api", c.BaseURL())
	assert.Nil(t, res.Cleanup)

	path := filepath.Join(t.TempDir(), "data.json")
	res, err = f.CreateBackend(Config{Type: MemoryBackend, SnapshotPath: path}, api.StaticToken(""))
	require.NoError(t, err)
	_, ok = res.Gateway.(*memory.Client)
	require.True(t, ok)

	_, err = res.Gateway.ListSplits(context.Background())
	assert.ErrorIs(t, err, api.ErrAuth)

	_, err = f.CreateBackend(Config{Type: "carrier-pigeon"}, api.StaticToken(""))
	assert.Error(t, err)
}
