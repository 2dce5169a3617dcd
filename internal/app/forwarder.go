package app

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/bcast-labs/bcastgw/internal/metrics"
	"github.com/bcast-labs/bcastgw/internal/ports"
	"github.com/bcast-labs/bcastgw/pkg/frame"
)

// ForwarderConfig contains configuration for the forwarding loop.
type ForwarderConfig struct {
	// DropLogInterval is the minimum time between drop summary log
	// lines. Individual drops log at debug only.
	DropLogInterval time.Duration
}

// DropEventEmitter is called when a drop summary is produced.
type DropEventEmitter interface {
	OnDropSummary(dropped uint64, window time.Duration)
}

// Forwarder is the orchestration loop: it pulls datagrams from the
// source, encodes them, and hands them to the sink. It never blocks
// waiting for a connection; when the sink reports no connection the
// datagram is dropped, not buffered. Datagrams are forwarded in the
// order received.
type Forwarder struct {
	cfg     ForwarderConfig
	source  ports.DatagramSource
	sink    ports.FrameSink
	logger  ports.Logger
	metrics *metrics.Registry
	emitter DropEventEmitter
}

// NewForwarder creates a forwarder with the given dependencies.
// emitter may be nil.
func NewForwarder(
	cfg ForwarderConfig,
	source ports.DatagramSource,
	sink ports.FrameSink,
	logger ports.Logger,
	reg *metrics.Registry,
	emitter DropEventEmitter,
) *Forwarder {
	if cfg.DropLogInterval <= 0 {
		cfg.DropLogInterval = 30 * time.Second
	}
	return &Forwarder{
		cfg:     cfg,
		source:  source,
		sink:    sink,
		logger:  logger,
		metrics: reg,
		emitter: emitter,
	}
}

// Run executes the forwarding loop until ctx is canceled or the
// source fails. A source failure after startup is unrecoverable and is
// returned to the caller.
func (f *Forwarder) Run(ctx context.Context) error {
	var mu sync.Mutex
	var dropped uint64
	windowStart := time.Now()

	flush := func() {
		mu.Lock()
		count := dropped
		start := windowStart
		dropped = 0
		windowStart = time.Now()
		mu.Unlock()
		f.flushDropSummary(count, start)
	}

	// Summaries fire on a timer, not on datagram arrival, so drops
	// accumulated during a quiet period still surface within one
	// interval.
	ticker := time.NewTicker(f.cfg.DropLogInterval)
	defer ticker.Stop()
	flusherStop := make(chan struct{})
	flusherDone := make(chan struct{})
	go func() {
		defer close(flusherDone)
		for {
			select {
			case <-flusherStop:
				return
			case <-ticker.C:
				flush()
			}
		}
	}()
	defer func() {
		close(flusherStop)
		<-flusherDone
	}()

	for {
		d, err := f.source.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, net.ErrClosed) {
				flush()
				return ctx.Err()
			}
			return err
		}

		f.metrics.DatagramsReceived.Inc()

		if f.sink.Send(frame.Encode(d.Payload)) {
			f.metrics.FramesForwarded.Inc()
			f.metrics.BytesForwarded.Add(float64(len(d.Payload)))
		} else {
			f.metrics.DatagramsDropped.Inc()
			mu.Lock()
			dropped++
			mu.Unlock()
			f.logger.Debug("datagram dropped, no sink connection",
				ports.String("sender", d.Sender.String()),
				ports.Int("bytes", len(d.Payload)),
			)
		}
	}
}

func (f *Forwarder) flushDropSummary(dropped uint64, windowStart time.Time) {
	if dropped == 0 {
		return
	}
	window := time.Since(windowStart).Round(time.Second)
	f.logger.Warn("datagrams dropped while disconnected",
		ports.Uint64("count", dropped),
		ports.Duration("window", window),
	)
	if f.emitter != nil {
		f.emitter.OnDropSummary(dropped, window)
	}
}
