package ports

// Firewall manages the inbound accept rule for the gateway's UDP port.
// Install runs once before the UDP socket binds; Teardown runs exactly
// once on every shutdown path.
type Firewall interface {
	// Install adds the accept rule via a privileged external command.
	// A failure to add individual rules is logged, not returned; only
	// misuse (double install) is an error.
	Install() error

	// Teardown removes the rule. Safe to call when Install was never
	// called or did nothing.
	Teardown() error
}
