package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables.
// The names match the container interface of the gateway (UDP_PORT,
// TCP_HOST, ...) rather than a binary-specific prefix. It respects
// flags that have been explicitly set (changed map). Returns an error
// if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("tcp-host", os.Getenv("TCP_HOST"), &cfg.TCPHost)
	s.setString("bind-address", os.Getenv("BIND_ADDRESS"), &cfg.BindAddress)
	s.setString("firewall-interface", os.Getenv("FIREWALL_INTERFACE"), &cfg.FirewallInterface)
	s.setString("metrics-addr", os.Getenv("METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setIntFromString("udp-port", os.Getenv("UDP_PORT"), &cfg.UDPPort); err != nil {
		return err
	}
	if err := s.setIntFromString("tcp-port", os.Getenv("TCP_PORT"), &cfg.TCPPort); err != nil {
		return err
	}

	if err := s.setDuration("reconnect-delay", os.Getenv("RECONNECT_DELAY"), &cfg.ReconnectDelay); err != nil {
		return err
	}
	if err := s.setDuration("liveness-timeout", os.Getenv("LIVENESS_TIMEOUT"), &cfg.LivenessTimeout); err != nil {
		return err
	}
	if err := s.setDuration("drop-log-interval", os.Getenv("DROP_LOG_INTERVAL"), &cfg.DropLogInterval); err != nil {
		return err
	}

	s.setBoolFromString("enable-firewall", os.Getenv("ENABLE_FIREWALL"), &cfg.EnableFirewall)

	return nil
}
