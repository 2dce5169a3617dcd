// Package firewall manages the iptables accept rule that lets UDP
// broadcasts reach the gateway's port. Rules are installed once before
// the UDP socket binds and removed exactly once on shutdown.
package firewall

import (
	"os"
	"strconv"
	"sync"

	"github.com/bcast-labs/bcastgw/internal/ports"
)

// CommandRunner executes external commands. It exists so tests can
// verify rule handling without touching iptables.
type CommandRunner interface {
	// Run executes a command and returns an error including the
	// command output on failure.
	Run(name string, args ...string) error
}

// Config holds firewall settings.
type Config struct {
	// Enabled gates all rule management. When false, Install and
	// Teardown do nothing.
	Enabled bool

	// UDPPort is the port the accept rule opens.
	UDPPort int

	// Interface scopes the rule to one interface. "any" or empty
	// means all interfaces.
	Interface string
}

// Manager installs and removes the gateway's iptables rules.
type Manager struct {
	cfg     Config
	runner  CommandRunner
	logger  ports.Logger
	geteuid func() int

	mu        sync.Mutex
	installed bool
	torndown  bool
}

// NewManager creates a firewall manager using runner for privileged
// commands.
func NewManager(cfg Config, runner CommandRunner, logger ports.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		runner:  runner,
		logger:  logger,
		geteuid: os.Geteuid,
	}
}

// Install adds an accept rule for the UDP port to the INPUT and
// FORWARD chains. Without root privileges the rules are skipped with a
// warning; the gateway still runs, relying on the host's existing
// firewall configuration. A failure to add one rule is logged and does
// not prevent the others.
func (m *Manager) Install() error {
	if !m.cfg.Enabled {
		return nil
	}
	if m.geteuid() != 0 {
		m.logger.Warn("not running as root, cannot configure iptables")
		return nil
	}

	// Re-arm the teardown latch so a restarted gateway pairs every
	// install with its own teardown.
	m.mu.Lock()
	m.installed = true
	m.torndown = false
	m.mu.Unlock()

	for _, rule := range m.rules("-I") {
		if err := m.runner.Run("iptables", rule...); err != nil {
			m.logger.Error("failed to add firewall rule",
				ports.Any("rule", rule),
				ports.Err(err),
			)
			continue
		}
		m.logger.Info("added firewall rule", ports.Any("rule", rule))
	}
	return nil
}

// Teardown removes the rules added by Install. It is safe to call on
// every shutdown path; only the first call after a successful Install
// does anything. Removal failures are expected when a rule was never
// added and log at debug.
func (m *Manager) Teardown() error {
	m.mu.Lock()
	run := m.cfg.Enabled && m.installed && !m.torndown
	m.torndown = true
	m.mu.Unlock()
	if !run {
		return nil
	}
	if m.geteuid() != 0 {
		m.logger.Warn("not running as root, cannot clean up iptables")
		return nil
	}

	for _, rule := range m.rules("-D") {
		if err := m.runner.Run("iptables", rule...); err != nil {
			m.logger.Debug("could not remove firewall rule",
				ports.Any("rule", rule),
				ports.Err(err),
			)
			continue
		}
		m.logger.Info("removed firewall rule", ports.Any("rule", rule))
	}
	return nil
}

// rules builds the iptables argument lists for the INPUT and FORWARD
// chains, with action "-I" (insert) or "-D" (delete).
func (m *Manager) rules(action string) [][]string {
	port := strconv.Itoa(m.cfg.UDPPort)

	var iface []string
	if m.cfg.Interface != "" && m.cfg.Interface != "any" {
		iface = []string{"-i", m.cfg.Interface}
	}

	var out [][]string
	for _, chain := range []string{"INPUT", "FORWARD"} {
		rule := []string{action, chain}
		rule = append(rule, iface...)
		rule = append(rule, "-p", "udp", "--dport", port, "-j", "ACCEPT")
		out = append(out, rule)
	}
	return out
}

// Ensure Manager implements the firewall port.
var _ ports.Firewall = (*Manager)(nil)
