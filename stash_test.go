package lactoserv

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestListener(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return l
}

func TestStashAdopt(t *testing.T) {
	r := NewStashRegistry()
	iface, err := ParseInterfaceAddress("*:8080")
	require.NoError(t, err)

	l := newTestListener(t)
	r.Stash(iface, l, time.Second)
	assert.Equal(t, 1, r.Len())

	adopted, ok := r.Adopt(iface)
	assert.True(t, ok)
	assert.Same(t, l, adopted)
	assert.Equal(t, 0, r.Len())

	l.Close()
}

func TestStashExpiry(t *testing.T) {
	r := NewStashRegistry()
	iface, err := ParseInterfaceAddress("*:8081")
	require.NoError(t, err)

	l := newTestListener(t)
	r.Stash(iface, l, 20*time.Millisecond)

	time.Sleep(100 * time.Millisecond)

	_, ok := r.Adopt(iface)
	assert.False(t, ok, "expired stash entry should not be adoptable")
}

func TestStashRestashReplaces(t *testing.T) {
	r := NewStashRegistry()
	iface, err := ParseInterfaceAddress("*:8082")
	require.NoError(t, err)

	l1 := newTestListener(t)
	l2 := newTestListener(t)

	r.Stash(iface, l1, time.Second)
	r.Stash(iface, l2, time.Second)
	assert.Equal(t, 1, r.Len())

	adopted, ok := r.Adopt(iface)
	assert.True(t, ok)
	assert.Same(t, l2, adopted)

	l2.Close()
}

func TestStashFDSelfEqualityOnly(t *testing.T) {
	fdIface, err := ParseInterfaceAddress("{fd:5}")
	require.NoError(t, err)
	addrIface, err := ParseInterfaceAddress("*:5")
	require.NoError(t, err)

	assert.False(t, fdIface.Equal(addrIface))
}
