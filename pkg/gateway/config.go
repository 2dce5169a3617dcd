package gateway

import (
	"fmt"
	"time"

	"github.com/bcast-labs/bcastgw/internal/domain"
)

// Config holds the configuration for a Gateway instance.
// TCPHost is required; everything else has a usable default.
type Config struct {
	// UDPPort is the port to listen on for broadcasts.
	UDPPort int

	// TCPHost is the sink host to connect to. Required.
	TCPHost string

	// TCPPort is the sink port to connect to.
	TCPPort int

	// BindAddress is the local address the UDP socket binds to.
	BindAddress string

	// ReconnectDelay is the wait between sink connection attempts.
	ReconnectDelay time.Duration

	// LivenessTimeout is the read deadline of the sink liveness
	// watcher. A tuning parameter, not a protocol guarantee.
	LivenessTimeout time.Duration

	// EnableFirewall installs iptables accept rules for UDPPort on
	// start and removes them on stop. Requires root.
	EnableFirewall bool

	// FirewallInterface scopes the firewall rules to one interface.
	// "any" or empty means all interfaces.
	FirewallInterface string

	// MetricsAddr, if set, serves Prometheus metrics on this address.
	MetricsAddr string

	// DropLogInterval is the minimum time between drop summary log
	// lines.
	DropLogInterval time.Duration

	// ConfigPath is the configuration file this Config was loaded
	// from, if any. Exposed to plugins; the gateway itself never
	// reads it.
	ConfigPath string
}

// SetDefaults fills zero-valued fields with defaults.
func (c *Config) SetDefaults() {
	if c.UDPPort == 0 {
		c.UDPPort = 50222
	}
	if c.TCPPort == 0 {
		c.TCPPort = 50222
	}
	if c.BindAddress == "" {
		c.BindAddress = "0.0.0.0"
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 5 * time.Second
	}
	if c.LivenessTimeout == 0 {
		c.LivenessTimeout = time.Second
	}
	if c.FirewallInterface == "" {
		c.FirewallInterface = "any"
	}
	if c.DropLogInterval == 0 {
		c.DropLogInterval = 30 * time.Second
	}
}

// Validate checks the configuration. Errors wrap
// domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.TCPHost == "" {
		return fmt.Errorf("%w: TCPHost is required", domain.ErrInvalidConfig)
	}
	if c.UDPPort < 1 || c.UDPPort > 65535 {
		return fmt.Errorf("%w: UDPPort %d out of range", domain.ErrInvalidConfig, c.UDPPort)
	}
	if c.TCPPort < 1 || c.TCPPort > 65535 {
		return fmt.Errorf("%w: TCPPort %d out of range", domain.ErrInvalidConfig, c.TCPPort)
	}
	if c.ReconnectDelay < 0 {
		return fmt.Errorf("%w: ReconnectDelay must not be negative", domain.ErrInvalidConfig)
	}
	if c.LivenessTimeout < 0 {
		return fmt.Errorf("%w: LivenessTimeout must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}
