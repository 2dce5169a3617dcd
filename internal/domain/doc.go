// Package domain contains the core types and errors of the gateway.
//
// The domain layer has no dependencies on infrastructure. It defines
// what flows through the gateway (Datagram) and the error conditions
// the public API reports.
package domain
