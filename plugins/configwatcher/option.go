package configwatcher

import "github.com/bcast-labs/bcastgw/pkg/gateway"

// WithConfigWatcher returns a gateway Option that enables config file
// watching.
//
// Usage:
//
//	g, err := gateway.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) gateway.Option {
	return gateway.WithPlugin(New(cfg))
}

// WithDefaultConfigWatcher returns a gateway Option that enables
// config watching with default settings.
func WithDefaultConfigWatcher() gateway.Option {
	return WithConfigWatcher(DefaultConfig())
}
