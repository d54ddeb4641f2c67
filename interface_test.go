package lactoserv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterfaceAddress(t *testing.T) {
	a, err := ParseInterfaceAddress("*:8080")
	require.NoError(t, err)
	assert.Equal(t, "*", a.Address)
	assert.Equal(t, 8080, a.Port)
	assert.False(t, a.IsFD())

	a, err = ParseInterfaceAddress("127.0.0.1:9090")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", a.Address)
	assert.Equal(t, 9090, a.Port)

	a, err = ParseInterfaceAddress("{fd:7}")
	require.NoError(t, err)
	assert.True(t, a.IsFD())
	assert.Equal(t, 7, a.FD)

	_, err = ParseInterfaceAddress("not-an-interface")
	assert.Error(t, err)
}

func TestInterfaceAddressEquality(t *testing.T) {
	a1, _ := ParseInterfaceAddress("*:8080")
	a2, _ := ParseInterfaceAddress("*:8080")
	assert.True(t, a1.Equal(a2))

	a3, _ := ParseInterfaceAddress("*:8081")
	assert.False(t, a1.Equal(a3))

	fd1, _ := ParseInterfaceAddress("{fd:3}")
	fd2, _ := ParseInterfaceAddress("{fd:3}")
	assert.True(t, fd1.Equal(fd2))
	assert.False(t, fd1.Equal(a1))
}
