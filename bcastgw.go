// Package bcastgw forwards UDP broadcast datagrams to a TCP collector
// as length-prefixed frames.
//
// Example usage:
//
//	cfg := bcastgw.DefaultConfig()
//	cfg.TCPHost = "collector.internal"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := bcastgw.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// For finer control (plugins, event handlers, custom loggers) use the
// pkg/gateway package directly.
package bcastgw

import (
	"context"
	"errors"
	"time"

	"github.com/bcast-labs/bcastgw/internal/cliconfig"
	"github.com/bcast-labs/bcastgw/pkg/gateway"
	"github.com/bcast-labs/bcastgw/pkg/log"
	"github.com/rs/zerolog"
)

// Config holds the configuration for the gateway.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// DefaultConfig returns a Config with sensible default values.
// At minimum, you must set TCPHost before calling Run.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Logger returns the package-level zerolog logger.
func Logger() zerolog.Logger {
	return cliconfig.Logger()
}

// Run starts the gateway with the given configuration. It blocks
// until the context is cancelled or the gateway crashes.
func Run(ctx context.Context, cfg Config) error {
	g, err := gateway.New(gateway.Config{
		UDPPort:           cfg.UDPPort,
		TCPHost:           cfg.TCPHost,
		TCPPort:           cfg.TCPPort,
		BindAddress:       cfg.BindAddress,
		ReconnectDelay:    cfg.ReconnectDelay,
		LivenessTimeout:   cfg.LivenessTimeout,
		EnableFirewall:    cfg.EnableFirewall,
		FirewallInterface: cfg.FirewallInterface,
		MetricsAddr:       cfg.MetricsAddr,
		DropLogInterval:   cfg.DropLogInterval,
	}, gateway.WithLogger(log.NewZerologAdapterWithLogger(Logger())))
	if err != nil {
		return err
	}

	if err := g.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return g.Stop(context.Background())
		case <-ticker.C:
			if g.Status() == gateway.StateCrashed {
				return errors.New("gateway crashed")
			}
		}
	}
}
