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
	path := filepath.Join(t.TempDir(), "client.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[server]
address = "/dns4/im.example.com/tcp/9000"

[session]
token = "tok"
aes_key = "0123456789abcdef"

[client]
device = "desktop"
sign_in_timeout = "15s"
write_idle = "45s"
encrypt_sign_in = true

[storage]
path = "/tmp/z.db"
inbox_ttl = "48h"

[api]
enabled = true
port = 9999
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/dns4/im.example.com/tcp/9000", cfg.Server.Address)
	assert.Equal(t, "tok", cfg.Session.Token)
	assert.Equal(t, "desktop", cfg.Client.Device)
	assert.Equal(t, Duration(15*time.Second), cfg.Client.SignInTimeout)
	assert.Equal(t, Duration(60*time.Second), cfg.Client.SignOutTimeout, "default kept")
	assert.Equal(t, Duration(48*time.Hour), cfg.Storage.InboxTTL)
	assert.True(t, cfg.API.Enabled)

	net := cfg.NetworkConfig()
	assert.Equal(t, 15*time.Second, net.SignInTimeout)
	assert.True(t, net.EncryptSignIn)
	assert.Equal(t, 45*time.Second, cfg.TCPConfig().WriteIdle)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `[client]
sign_in_timeout = "soon"`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing address", func(c *Config) { c.Server.Address = "" }, true},
		{"bad address", func(c *Config) { c.Server.Address = "nope" }, true},
		{"zero timeout", func(c *Config) { c.Client.SignInTimeout = 0 }, true},
		{"zero tick", func(c *Config) { c.Client.TickInterval = 0 }, true},
		{"bad api port", func(c *Config) { c.API.Enabled = true; c.API.Port = 70000 }, true},
		{"api port ignored when disabled", func(c *Config) { c.API.Port = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Server.Address = "127.0.0.1:9000"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
