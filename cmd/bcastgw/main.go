package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bcast-labs/bcastgw/internal/cliconfig"
	"github.com/bcast-labs/bcastgw/pkg/gateway"
	pkglog "github.com/bcast-labs/bcastgw/pkg/log"
	"github.com/bcast-labs/bcastgw/plugins/configwatcher"
)

const helpDescription = `
Forward UDP broadcast datagrams to a TCP collector.

bcastgw binds a UDP port, keeps one outbound TCP connection to the
collector, and forwards every datagram as a length-prefixed frame.
Datagrams that arrive while the collector is unreachable are dropped,
never buffered, so the collector only ever sees fresh data.

Configure via file ($HOME/.bcastgw/config.toml), environment
variables (UDP_PORT, TCP_HOST, ...), or flags; flags win.
`

var exampleUsage = strings.TrimSpace(`
  bcastgw --tcp-host collector.internal
  bcastgw --udp-port 50222 --tcp-host 10.0.0.5 --tcp-port 9000 --enable-firewall
  bcastgw --config /etc/bcastgw/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "bcastgw",
		Short:   "Forward UDP broadcast datagrams to a TCP collector",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Determine config path
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else if cfgPath != "" {
				return fmt.Errorf("config file not found: %s", cfgPath)
			}

			// Environment overrides file config but is overridden by
			// flags (checked via changed map).
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log.Info().Interface("config", cfg).Msg("configuration")

			libCfg := gateway.Config{
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
			}
			if cliconfig.FileExists(cfgFile) {
				libCfg.ConfigPath = cfgFile
			}

			g, err := gateway.New(libCfg,
				gateway.WithLogger(pkglog.NewZerologAdapterWithLogger(log)),
				configwatcher.WithDefaultConfigWatcher(),
			)
			if err != nil {
				return fmt.Errorf("create gateway: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := g.Start(ctx); err != nil {
				return fmt.Errorf("start gateway: %w", err)
			}

			// Detect a crash of the running gateway (e.g. the UDP
			// socket failing) without waiting for a signal.
			doneCh := make(chan struct{})
			go func() {
				ticker := time.NewTicker(100 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						status := g.Status()
						if status == gateway.StateStopped || status == gateway.StateCrashed {
							close(doneCh)
							return
						}
					}
				}
			}()

			select {
			case sig := <-sigCh:
				log.Info().Str("signal", sig.String()).Msg("received signal, stopping...")
			case <-doneCh:
				if g.Status() == gateway.StateCrashed {
					log.Error().Msg("gateway crashed")
					return fmt.Errorf("gateway crashed")
				}
				return nil
			}

			if err := g.Stop(context.Background()); err != nil {
				return fmt.Errorf("stop gateway: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.bcastgw/config.toml)")
	root.Flags().IntVar(&cfg.UDPPort, "udp-port", cfg.UDPPort, "UDP port to listen on for broadcasts")
	root.Flags().StringVar(&cfg.TCPHost, "tcp-host", cfg.TCPHost, "collector host to forward frames to")
	root.Flags().IntVar(&cfg.TCPPort, "tcp-port", cfg.TCPPort, "collector port to forward frames to")
	root.Flags().StringVar(&cfg.BindAddress, "bind-address", cfg.BindAddress, "local address to bind the UDP socket to")

	root.Flags().DurationVar(&cfg.ReconnectDelay, "reconnect-delay", cfg.ReconnectDelay, "wait between collector connection attempts")
	root.Flags().DurationVar(&cfg.LivenessTimeout, "liveness-timeout", cfg.LivenessTimeout, "read deadline of the connection liveness watcher")

	root.Flags().BoolVar(&cfg.EnableFirewall, "enable-firewall", cfg.EnableFirewall, "install iptables accept rules for the UDP port (requires root)")
	root.Flags().StringVar(&cfg.FirewallInterface, "firewall-interface", cfg.FirewallInterface, "interface to scope firewall rules to (\"any\" for all)")

	root.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address to serve Prometheus metrics on (empty disables)")
	root.Flags().DurationVar(&cfg.DropLogInterval, "drop-log-interval", cfg.DropLogInterval, "minimum time between drop summary log lines")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("bcastgw")
		os.Exit(1)
	}
}
