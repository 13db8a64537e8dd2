// Package config loads the client's TOML configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ZentaChain/zentalk-session/pkg/network"
	"github.com/ZentaChain/zentalk-session/pkg/session"
	"github.com/ZentaChain/zentalk-session/pkg/transport"
)

// Duration is a time.Duration written as "30s" in TOML
type Duration time.Duration

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats d as a Go duration string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the whole TOML file
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Session SessionConfig `toml:"session"`
	Client  ClientConfig  `toml:"client"`
	Storage StorageConfig `toml:"storage"`
	API     APIConfig     `toml:"api"`
}

// ServerConfig is the [server] table
type ServerConfig struct {
	Address string `toml:"address"`
}

// SessionConfig is the [session] table. Values here take precedence over the
// stored session.
type SessionConfig struct {
	Token  string `toml:"token"`
	AESKey string `toml:"aes_key"`
}

// ClientConfig is the [client] table: packet timeouts, heartbeat and dialing
type ClientConfig struct {
	Device         string   `toml:"device"`
	SignInTimeout  Duration `toml:"sign_in_timeout"`
	SignOutTimeout Duration `toml:"sign_out_timeout"`
	WriteIdle      Duration `toml:"write_idle"`
	TickInterval   Duration `toml:"tick_interval"`
	DialTimeout    Duration `toml:"dial_timeout"`
	EncryptSignIn  bool     `toml:"encrypt_sign_in"`
}

// StorageConfig is the [storage] table. Password protects the stored session.
type StorageConfig struct {
	Path     string   `toml:"path"`
	Password string   `toml:"password"`
	InboxTTL Duration `toml:"inbox_ttl"`
}

// APIConfig is the [api] table for the local HTTP control server
type APIConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// Default returns a configuration that only lacks server and session values
func Default() Config {
	return Config{
		Client: ClientConfig{
			Device:         "cli",
			SignInTimeout:  Duration(60 * time.Second),
			SignOutTimeout: Duration(60 * time.Second),
			WriteIdle:      Duration(30 * time.Second),
			TickInterval:   Duration(time.Second),
			DialTimeout:    Duration(10 * time.Second),
		},
		Storage: StorageConfig{
			Path:     "zentalk-session.db",
			InboxTTL: Duration(7 * 24 * time.Hour),
		},
		API: APIConfig{
			Enabled: false,
			Port:    8090,
		},
	}
}

// Load reads path over Default. The result is not validated, so flags can
// still fill in missing values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values needed to start a client
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Address) == "" {
		return fmt.Errorf("server address is required")
	}
	if _, _, err := session.ParseAddress(c.Server.Address); err != nil {
		return fmt.Errorf("server address: %w", err)
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage path is required")
	}
	if c.Client.SignInTimeout <= 0 || c.Client.SignOutTimeout <= 0 {
		return fmt.Errorf("packet timeouts must be positive")
	}
	if c.Client.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive")
	}
	if c.API.Enabled && (c.API.Port <= 0 || c.API.Port > 65535) {
		return fmt.Errorf("api port %d out of range", c.API.Port)
	}
	return nil
}

// NetworkConfig returns the client runtime settings
func (c Config) NetworkConfig() *network.Config {
	return &network.Config{
		Device:         c.Client.Device,
		SignInTimeout:  time.Duration(c.Client.SignInTimeout),
		SignOutTimeout: time.Duration(c.Client.SignOutTimeout),
		EncryptSignIn:  c.Client.EncryptSignIn,
	}
}

// TCPConfig returns the transport settings
func (c Config) TCPConfig() *transport.TCPConfig {
	tcp := transport.DefaultTCPConfig()
	tcp.DialTimeout = time.Duration(c.Client.DialTimeout)
	tcp.WriteIdle = time.Duration(c.Client.WriteIdle)
	return tcp
}
