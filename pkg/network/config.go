package network

import (
	"time"

	"github.com/ZentaChain/zentalk-session/pkg/packet"
)

// Config holds client runtime settings
type Config struct {
	Device         string        // Reported in the sign-in request
	SignInTimeout  time.Duration // Wait for the sign-in result
	SignOutTimeout time.Duration // Wait for the sign-out result
	EncryptSignIn  bool          // Encrypt the sign-in body with the session key
}

// DefaultConfig returns default client settings
func DefaultConfig() *Config {
	return &Config{
		Device:         "cli",
		SignInTimeout:  packet.DefaultTimeout,
		SignOutTimeout: packet.DefaultTimeout,
		EncryptSignIn:  false,
	}
}
