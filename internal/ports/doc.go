// Package ports defines the interfaces (ports) that connect the
// application layer to infrastructure adapters.
//
// In Hexagonal Architecture, ports are the boundaries between the
// application core and the outside world. They define what the
// application needs from external systems without specifying how those
// needs are fulfilled.
//
// # Port Interfaces
//
//   - [DatagramSource]: Produces UDP datagrams from a bound socket
//   - [FrameSink]: Hands encoded frames to the outbound connection
//   - [Firewall]: Installs and removes the inbound accept rule
//   - [Logger]: Structured logging abstraction
//
// The application layer (internal/app) depends only on these
// interfaces. Infrastructure adapters (internal/adapters,
// internal/firewall) implement them with concrete implementations
// (UDP socket, TCP connection manager, iptables, zerolog).
package ports
