//go:build linux || darwin

package lactoserv

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlReuseAddr is a net.ListenConfig.Control callback that sets
// SO_REUSEADDR (and SO_REUSEPORT where available) on the socket before
// bind, letting a successor endpoint bind the same interface while a
// predecessor's socket is still closing.
func controlReuseAddr(network, address string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if sockErr != nil {
			return
		}
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
