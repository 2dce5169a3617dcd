package cliconfig

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UDPPort != 50222 {
		t.Errorf("UDPPort = %d, want 50222", cfg.UDPPort)
	}
	if cfg.TCPPort != 50222 {
		t.Errorf("TCPPort = %d, want 50222", cfg.TCPPort)
	}
	if cfg.BindAddress != "0.0.0.0" {
		t.Errorf("BindAddress = %v, want 0.0.0.0", cfg.BindAddress)
	}
	if cfg.ReconnectDelay != 5*time.Second {
		t.Errorf("ReconnectDelay = %v, want 5s", cfg.ReconnectDelay)
	}
	if cfg.LivenessTimeout != time.Second {
		t.Errorf("LivenessTimeout = %v, want 1s", cfg.LivenessTimeout)
	}
	if cfg.EnableFirewall {
		t.Error("EnableFirewall = true, want false")
	}
	if cfg.FirewallInterface != "any" {
		t.Errorf("FirewallInterface = %v, want any", cfg.FirewallInterface)
	}
	if cfg.TCPHost != "" {
		t.Errorf("TCPHost = %v, want empty (required)", cfg.TCPHost)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid",
			mutate:  func(c *Config) { c.TCPHost = "collector.internal" },
			wantErr: false,
		},
		{
			name:    "missing tcp host",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name: "udp port out of range",
			mutate: func(c *Config) {
				c.TCPHost = "collector.internal"
				c.UDPPort = 0
			},
			wantErr: true,
		},
		{
			name: "tcp port out of range",
			mutate: func(c *Config) {
				c.TCPHost = "collector.internal"
				c.TCPPort = 70000
			},
			wantErr: true,
		},
		{
			name: "negative reconnect delay",
			mutate: func(c *Config) {
				c.TCPHost = "collector.internal"
				c.ReconnectDelay = -time.Second
			},
			wantErr: true,
		},
		{
			name: "zero liveness timeout",
			mutate: func(c *Config) {
				c.TCPHost = "collector.internal"
				c.LivenessTimeout = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetDuration(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds as integer", "5", 5 * time.Second, false},
		{"seconds as float", "2.5", 2500 * time.Millisecond, false},
		{"go duration", "750ms", 750 * time.Millisecond, false},
		{"garbage", "soon", 0, true},
		{"negative seconds", "-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newConfigSetter(nil)
			var d time.Duration
			err := s.setDuration("reconnect-delay", tt.value, &d)

			if (err != nil) != tt.wantErr {
				t.Fatalf("setDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && d != tt.want {
				t.Errorf("setDuration(%q) = %v, want %v", tt.value, d, tt.want)
			}
		})
	}
}

func TestSetterRespectsChangedFlags(t *testing.T) {
	s := newConfigSetter(map[string]bool{"tcp-host": true, "udp-port": true})

	host := "from-flag"
	s.setString("tcp-host", "from-file", &host)
	if host != "from-flag" {
		t.Errorf("setString overrode changed flag, host = %v", host)
	}

	port := 9999
	s.setInt("udp-port", 50222, &port)
	if port != 9999 {
		t.Errorf("setInt overrode changed flag, port = %d", port)
	}
}
