package lactoserv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// InterfaceAddress identifies a listening interface: either an
// address+port pair (with "*" meaning all interfaces, dual-stack) or an
// inherited file descriptor.
type InterfaceAddress struct {
	Address string
	Port    int
	FD      int
	hasFD   bool
}

// ParseInterfaceAddress parses one of three textual forms: "*:port" (all
// interfaces, dual-stack), "host:port", and "{fd:N}". An empty host
// (":port") is taken as "*"; a bare "*" without a port is rejected.
func ParseInterfaceAddress(s string) (InterfaceAddress, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "{fd:") && strings.HasSuffix(s, "}") {
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "{fd:"), "}")
		fd, err := strconv.Atoi(inner)
		if err != nil {
			return InterfaceAddress{}, fmt.Errorf("lactoserv: invalid fd interface %q: %w", s, err)
		}
		return InterfaceAddress{FD: fd, hasFD: true}, nil
	}

	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return InterfaceAddress{}, fmt.Errorf("lactoserv: invalid interface address %q", s)
	}

	host := s[:idx]
	portStr := s[idx+1:]

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return InterfaceAddress{}, fmt.Errorf("lactoserv: invalid interface port in %q", s)
	}

	if host == "" {
		host = "*"
	}

	return InterfaceAddress{Address: host, Port: port}, nil
}

// IsFD reports whether this is an inherited-descriptor interface.
func (a InterfaceAddress) IsFD() bool { return a.hasFD }

// Key returns a stable, hashed identity for the interface, used as the
// stash-registry key. Two interfaces compare equal under the stash
// registry's rules iff their keys are equal; an {fd:N} interface is
// equal only to itself, which the "fd:" prefix guarantees can never
// collide with an address+port encoding.
func (a InterfaceAddress) Key() uint64 {
	var s string
	if a.hasFD {
		s = fmt.Sprintf("fd:%d", a.FD)
	} else {
		s = fmt.Sprintf("addr:%s:%d", a.Address, a.Port)
	}
	return xxhash.Sum64String(s)
}

// String renders the interface back to its canonical textual form.
func (a InterfaceAddress) String() string {
	if a.hasFD {
		return fmt.Sprintf("{fd:%d}", a.FD)
	}
	return fmt.Sprintf("%s:%d", a.Address, a.Port)
}

// Equal reports whether a and other denote the same interface for stash
// purposes. Fd-form interfaces are equal only to themselves, never to
// an address+port form, even if they happen to resolve to the same
// OS-level socket.
func (a InterfaceAddress) Equal(other InterfaceAddress) bool {
	return a.Key() == other.Key()
}
