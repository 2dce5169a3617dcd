//go:build !linux
// +build !linux

package udp

import "syscall"

// controlSocket is a no-op on platforms without SO_REUSEPORT semantics
// the gateway relies on. The bind still succeeds; port sharing with a
// co-located consumer is a Linux deployment feature.
func controlSocket(network, address string, c syscall.RawConn) error {
	return nil
}
