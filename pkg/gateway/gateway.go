package gateway

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/bcast-labs/bcastgw/internal/adapters/tcp"
	"github.com/bcast-labs/bcastgw/internal/adapters/udp"
	"github.com/bcast-labs/bcastgw/internal/app"
	"github.com/bcast-labs/bcastgw/internal/domain"
	"github.com/bcast-labs/bcastgw/internal/firewall"
	"github.com/bcast-labs/bcastgw/internal/metrics"
	"github.com/bcast-labs/bcastgw/internal/ports"
)

// Gateway forwards UDP broadcast datagrams to a single TCP sink.
// Create one with New, then drive it with Start and Stop. A Gateway
// is restartable: after Stop (or a crash) it can be started again.
type Gateway struct {
	cfg  Config
	opts options

	logger    ports.Logger
	lifecycle *app.Lifecycle
	metrics   *metrics.Registry
	firewall  ports.Firewall

	mu         sync.Mutex
	source     *udp.Source
	manager    *tcp.Manager
	metricsSrv *http.Server
}

// New creates a gateway from the given configuration. The
// configuration is defaulted and validated; validation errors wrap
// domain.ErrInvalidConfig.
func New(cfg Config, opts ...Option) (*Gateway, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	g := &Gateway{
		cfg:       cfg,
		opts:      o,
		logger:    o.logger,
		lifecycle: app.NewLifecycle(o.logger, emitter),
		metrics:   metrics.NewRegistry(),
	}
	g.firewall = firewall.NewManager(firewall.Config{
		Enabled:   cfg.EnableFirewall,
		UDPPort:   cfg.UDPPort,
		Interface: cfg.FirewallInterface,
	}, o.runner, o.logger)
	return g, nil
}

// Start brings the gateway up: firewall rules, UDP bind, plugins, and
// the forwarding workers. It returns once the gateway is running; the
// workers keep running until Stop is called or the datagram source
// fails. ctx bounds startup only.
func (g *Gateway) Start(ctx context.Context) error {
	if !g.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := g.lifecycle.TransitionTo(app.StateStarting, "start requested"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	g.lifecycle.SetCancel(cancel)

	if err := g.firewall.Install(); err != nil {
		g.crash(cancel, "firewall install failed")
		return err
	}

	source, err := udp.Bind(ctx, g.cfg.BindAddress, g.cfg.UDPPort, g.logger)
	if err != nil {
		g.teardownFirewall()
		g.crash(cancel, "udp bind failed")
		return err
	}

	if err := g.initPlugins(runCtx); err != nil {
		source.Close()
		g.teardownFirewall()
		g.crash(cancel, "plugin initialization failed")
		return err
	}

	manager := tcp.NewManager(tcp.Config{
		Host:            g.cfg.TCPHost,
		Port:            g.cfg.TCPPort,
		ReconnectDelay:  g.cfg.ReconnectDelay,
		LivenessTimeout: g.cfg.LivenessTimeout,
		Dial:            g.opts.dial,
		OnStateChange:   g.onConnStateChange,
	}, g.logger, g.metrics)

	g.mu.Lock()
	g.source = source
	g.manager = manager
	g.mu.Unlock()

	g.startMetricsServer(runCtx)

	g.lifecycle.AddWorker()
	go func() {
		defer g.lifecycle.WorkerDone()
		manager.Run(runCtx)
	}()

	// The UDP socket has no read deadline; closing it is what
	// unblocks the forwarder on shutdown.
	go func() {
		<-runCtx.Done()
		source.Close()
	}()

	forwarder := app.NewForwarder(
		app.ForwarderConfig{DropLogInterval: g.cfg.DropLogInterval},
		source,
		manager,
		g.logger,
		g.metrics,
		&eventEmitterWrapper{handler: g.opts.eventHandler},
	)
	g.lifecycle.AddWorker()
	go func() {
		defer g.lifecycle.WorkerDone()
		if err := forwarder.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			g.logger.Error("datagram source failed", ports.Err(err))
			g.shutdownPlugins(context.Background())
			g.stopMetricsServer()
			g.teardownFirewall()
			g.crash(cancel, "datagram source failed")
		}
	}()

	if err := g.lifecycle.TransitionTo(app.StateRunning, "startup complete"); err != nil {
		// Stop() interrupted startup; the workers are winding down.
		return err
	}

	g.logger.Info("gateway started",
		ports.String("listen", source.LocalAddr()),
		ports.String("sink", g.cfg.TCPHost),
		ports.Int("sink_port", g.cfg.TCPPort),
	)
	return nil
}

// Stop shuts the gateway down: it cancels the workers, waits for them
// with a timeout, shuts plugins down in reverse order, and removes
// firewall rules. ctx bounds plugin shutdown.
func (g *Gateway) Stop(ctx context.Context) error {
	if !g.lifecycle.CanStop() {
		return domain.ErrNotRunning
	}
	if err := g.lifecycle.TransitionTo(app.StateStopping, "stop requested"); err != nil {
		return err
	}

	g.lifecycle.Cancel()
	waitErr := g.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	g.shutdownPlugins(ctx)
	g.stopMetricsServer()
	g.teardownFirewall()

	g.mu.Lock()
	g.source = nil
	g.manager = nil
	g.mu.Unlock()

	if waitErr != nil {
		g.lifecycle.TransitionTo(app.StateCrashed, "shutdown timed out")
		return waitErr
	}
	if err := g.lifecycle.TransitionTo(app.StateStopped, "shutdown complete"); err != nil {
		return err
	}
	g.logger.Info("gateway stopped")
	return nil
}

// Status returns the current lifecycle state.
func (g *Gateway) Status() State {
	return convertState(g.lifecycle.State())
}

// ConnState returns the state of the outbound sink connection.
// ConnDisconnected when the gateway is not running.
func (g *Gateway) ConnState() ConnState {
	g.mu.Lock()
	manager := g.manager
	g.mu.Unlock()
	if manager == nil {
		return ConnDisconnected
	}
	return convertConnState(manager.State())
}

// Metrics returns the gateway's metrics registry, for callers that
// want to expose it themselves instead of via MetricsAddr.
func (g *Gateway) Metrics() *metrics.Registry {
	return g.metrics
}

func (g *Gateway) crash(cancel context.CancelFunc, reason string) {
	cancel()
	g.lifecycle.TransitionTo(app.StateCrashed, reason)
}

// teardownFirewall removes the firewall rules. The firewall manager
// is idempotent, so the crash path and Stop can both call this.
func (g *Gateway) teardownFirewall() {
	if err := g.firewall.Teardown(); err != nil {
		g.logger.Warn("firewall teardown failed", ports.Err(err))
	}
}

func (g *Gateway) onConnStateChange(previous, current tcp.State) {
	if g.opts.eventHandler == nil {
		return
	}
	g.opts.eventHandler.OnConnStateChange(ConnStateChangeEvent{
		Previous: convertConnState(previous),
		Current:  convertConnState(current),
	})
}

func (g *Gateway) pluginConfig() PluginConfig {
	return PluginConfig{
		ConfigPath: g.cfg.ConfigPath,
		UDPPort:    g.cfg.UDPPort,
		TCPHost:    g.cfg.TCPHost,
		TCPPort:    g.cfg.TCPPort,
		Logger:     g.logger,
	}
}

func (g *Gateway) initPlugins(ctx context.Context) error {
	cfg := g.pluginConfig()
	for i, p := range g.opts.plugins {
		if err := p.Initialize(ctx, cfg); err != nil {
			g.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err),
			)
			// Unwind the plugins that did come up.
			for j := i - 1; j >= 0; j-- {
				if serr := g.opts.plugins[j].Shutdown(ctx); serr != nil {
					g.logger.Warn("plugin shutdown failed",
						ports.String("plugin", g.opts.plugins[j].Name()),
						ports.Err(serr),
					)
				}
			}
			return err
		}
		g.logger.Debug("plugin initialized", ports.String("plugin", p.Name()))
	}
	return nil
}

func (g *Gateway) shutdownPlugins(ctx context.Context) {
	for i := len(g.opts.plugins) - 1; i >= 0; i-- {
		p := g.opts.plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			g.logger.Warn("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err),
			)
		}
	}
}

func (g *Gateway) startMetricsServer(ctx context.Context) {
	if g.cfg.MetricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", g.metrics.Handler())
	srv := &http.Server{Addr: g.cfg.MetricsAddr, Handler: mux}

	g.mu.Lock()
	g.metricsSrv = srv
	g.mu.Unlock()

	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	go func() {
		g.logger.Info("metrics server listening", ports.String("addr", g.cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Warn("metrics server failed", ports.Err(err))
		}
	}()
}

func (g *Gateway) stopMetricsServer() {
	g.mu.Lock()
	srv := g.metricsSrv
	g.metricsSrv = nil
	g.mu.Unlock()
	if srv != nil {
		srv.Close()
	}
}
