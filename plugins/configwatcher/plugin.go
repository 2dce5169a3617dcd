// Package configwatcher provides config file monitoring for the
// gateway. The gateway reads its configuration once at startup; this
// plugin watches the file for edits and notifies when a restart is
// needed to apply them.
package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bcast-labs/bcastgw/pkg/gateway"
	"github.com/bcast-labs/bcastgw/pkg/log"
)

// Plugin watches the gateway's configuration file. On each change it
// logs a notice and, if set, invokes the OnChange callback.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration
	onChange      func(path string)

	configPath string
	logger     log.Logger
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	debounce   *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before
	// notifying, so editors that write in several steps produce one
	// notification. Default: 100 milliseconds.
	DebounceDelay time.Duration

	// OnChange, if set, is called with the config file path after
	// each debounced change.
	OnChange func(path string)
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		onChange:      cfg.OnChange,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts the watcher loop.
func (p *Plugin) Initialize(ctx context.Context, cfg gateway.PluginConfig) error {
	p.mu.Lock()
	p.configPath = cfg.ConfigPath
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.configPath == "" {
		p.logger.Warn("config watcher disabled: no config file in use")
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher initialized",
		log.String("path", p.configPath),
	)

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// watchLoop watches the config file's directory. Watching the
// directory rather than the file survives the rename-and-replace
// pattern editors and config management tools use.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("config watcher: failed to create watcher", log.Err(err))
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(p.configPath)
	if err := watcher.Add(dir); err != nil {
		p.logger.Error("config watcher: failed to watch directory",
			log.String("dir", dir),
			log.Err(err),
		)
		return
	}

	base := filepath.Base(p.configPath)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceNotify()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceNotify() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, p.notify)
}

func (p *Plugin) notify() {
	p.mu.Lock()
	path := p.configPath
	onChange := p.onChange
	logger := p.logger
	p.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		logger.Warn("config watcher: config file no longer readable",
			log.String("path", path),
			log.Err(err),
		)
		return
	}

	logger.Info("configuration file changed, restart to apply",
		log.String("path", path),
	)
	if onChange != nil {
		onChange(path)
	}
}

// Ensure Plugin implements gateway.Plugin.
var _ gateway.Plugin = (*Plugin)(nil)
