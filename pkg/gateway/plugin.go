package gateway

import (
	"context"

	"github.com/bcast-labs/bcastgw/pkg/log"
)

// Plugin extends the gateway with optional functionality. Plugins are
// initialized in registration order when the gateway starts and shut
// down in reverse order when it stops.
type Plugin interface {
	// Name returns the plugin identifier for logging.
	Name() string

	// Initialize starts the plugin. The context is canceled when the
	// gateway stops.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown stops the plugin and releases its resources.
	Shutdown(ctx context.Context) error
}

// PluginConfig is the gateway configuration exposed to plugins.
type PluginConfig struct {
	// ConfigPath is the configuration file path the gateway was
	// started with, if any.
	ConfigPath string

	UDPPort int
	TCPHost string
	TCPPort int

	Logger log.Logger
}
