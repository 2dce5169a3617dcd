// Package cliconfig loads gateway configuration for the bcastgw
// binary. Precedence, lowest to highest: built-in defaults, config
// file, environment variables, command-line flags.
package cliconfig

import (
	"fmt"
	"strconv"
	"time"
)

// Config holds CLI configuration for bcastgw.
type Config struct {
	UDPPort     int
	TCPHost     string
	TCPPort     int
	BindAddress string

	ReconnectDelay  time.Duration
	LivenessTimeout time.Duration

	EnableFirewall    bool
	FirewallInterface string

	MetricsAddr     string
	DropLogInterval time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		UDPPort:           50222,
		TCPPort:           50222,
		BindAddress:       "0.0.0.0",
		ReconnectDelay:    5 * time.Second,
		LivenessTimeout:   time.Second,
		FirewallInterface: "any",
		DropLogInterval:   30 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.TCPHost == "" {
		return fmt.Errorf("tcp-host is required")
	}
	if c.UDPPort < 1 || c.UDPPort > 65535 {
		return fmt.Errorf("udp-port %d out of range", c.UDPPort)
	}
	if c.TCPPort < 1 || c.TCPPort > 65535 {
		return fmt.Errorf("tcp-port %d out of range", c.TCPPort)
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}
	if c.LivenessTimeout <= 0 {
		return fmt.Errorf("liveness timeout must be positive")
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't
// been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag
// not changed. A bare number is read as seconds, matching the
// RECONNECT_DELAY convention; anything else must be a Go duration.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		if secs <= 0 {
			return fmt.Errorf("parse %s: must be positive", flag)
		}
		*dst = time.Duration(secs * float64(time.Second))
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to a positive int and sets the
// destination. Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return fmt.Errorf("parse %s: must be positive", flag)
	}
	*dst = i
	return nil
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
