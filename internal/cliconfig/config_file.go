package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make
// TOML friendly.
type FileConfig struct {
	UDPPort           int    `toml:"udp_port"`
	TCPHost           string `toml:"tcp_host"`
	TCPPort           int    `toml:"tcp_port"`
	BindAddress       string `toml:"bind_address"`
	ReconnectDelay    string `toml:"reconnect_delay"`
	LivenessTimeout   string `toml:"liveness_timeout"`
	EnableFirewall    *bool  `toml:"enable_firewall"`
	FirewallInterface string `toml:"firewall_interface"`
	MetricsAddr       string `toml:"metrics_addr"`
	DropLogInterval   string `toml:"drop_log_interval"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path,
// ~/.bcastgw/config.toml, if the user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".bcastgw", "config.toml")
	}
	return ""
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// ApplyFileConfig applies configuration from a file to the Config
// struct. It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt("udp-port", fc.UDPPort, &cfg.UDPPort)
	s.setString("tcp-host", fc.TCPHost, &cfg.TCPHost)
	s.setInt("tcp-port", fc.TCPPort, &cfg.TCPPort)
	s.setString("bind-address", fc.BindAddress, &cfg.BindAddress)
	s.setString("firewall-interface", fc.FirewallInterface, &cfg.FirewallInterface)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	if err := s.setDuration("reconnect-delay", fc.ReconnectDelay, &cfg.ReconnectDelay); err != nil {
		return err
	}
	if err := s.setDuration("liveness-timeout", fc.LivenessTimeout, &cfg.LivenessTimeout); err != nil {
		return err
	}
	if err := s.setDuration("drop-log-interval", fc.DropLogInterval, &cfg.DropLogInterval); err != nil {
		return err
	}

	s.setBool("enable-firewall", fc.EnableFirewall, &cfg.EnableFirewall)

	return nil
}
