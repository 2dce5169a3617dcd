package gateway

import (
	adapterlog "github.com/bcast-labs/bcastgw/internal/adapters/log"
	"github.com/bcast-labs/bcastgw/internal/adapters/tcp"
	"github.com/bcast-labs/bcastgw/internal/firewall"
	"github.com/bcast-labs/bcastgw/internal/ports"
)

type options struct {
	logger       ports.Logger
	eventHandler EventHandler
	plugins      []Plugin
	runner       firewall.CommandRunner
	dial         tcp.DialFunc
}

func defaultOptions() options {
	return options{
		logger: &adapterlog.NoopLogger{},
		runner: &firewall.ExecRunner{},
	}
}

// Option configures a Gateway.
type Option func(*options)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger ports.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler registers a handler for lifecycle, connection and
// drop events.
func WithEventHandler(h EventHandler) Option {
	return func(o *options) {
		o.eventHandler = h
	}
}

// WithPlugin registers a plugin. Plugins are initialized in
// registration order after the gateway starts and shut down in
// reverse order when it stops.
func WithPlugin(p Plugin) Option {
	return func(o *options) {
		if p != nil {
			o.plugins = append(o.plugins, p)
		}
	}
}

// WithCommandRunner overrides how firewall commands are executed.
// Intended for tests.
func WithCommandRunner(r firewall.CommandRunner) Option {
	return func(o *options) {
		if r != nil {
			o.runner = r
		}
	}
}

// WithDialer overrides how sink connections are dialed. Intended for
// tests.
func WithDialer(d tcp.DialFunc) Option {
	return func(o *options) {
		o.dial = d
	}
}
