//go:build !linux && !darwin

package lactoserv

import "syscall"

// controlReuseAddr is a no-op on platforms without SO_REUSEPORT support;
// the stash registry is still the primary mechanism for reload-time
// socket reuse there.
func controlReuseAddr(network, address string, c syscall.RawConn) error {
	return nil
}
