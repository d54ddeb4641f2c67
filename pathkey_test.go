package lactoserv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHostname(t *testing.T) {
	k, err := ParseHostname("a.b.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, k.Path())
	assert.False(t, k.Wildcard())

	k, err = ParseHostname("*.example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"com", "example"}, k.Path())
	assert.True(t, k.Wildcard())

	k, err = ParseHostname("*")
	require.NoError(t, err)
	assert.Empty(t, k.Path())
	assert.True(t, k.Wildcard())

	_, err = ParseHostname("")
	assert.ErrorIs(t, err, ErrInvalidHostname)

	_, err = ParseHostname("a..b")
	assert.ErrorIs(t, err, ErrInvalidHostname)
}

func TestParseURLPath(t *testing.T) {
	assert.Equal(t, []string{}, ParseURLPath("/").Path())
	assert.Equal(t, []string{"x", "y"}, ParseURLPath("/x/y").Path())
	assert.Equal(t, []string{"x", "y", ""}, ParseURLPath("/x/y/").Path())
}

func TestPathKeyRoundTrip(t *testing.T) {
	for _, p := range []string{"/", "/x", "/x/y", "/x/y/z"} {
		k := ParseURLPath(p)
		assert.Equal(t, p, k.String(false))
	}

	for _, h := range []string{"example.com", "a.b.c.example.com"} {
		k, err := ParseHostname(h)
		require.NoError(t, err)
		assert.Equal(t, h, k.String(true))
		assert.False(t, k.Wildcard())
	}

	k, err := ParseHostname("*.example.com")
	require.NoError(t, err)
	assert.Equal(t, "*.example.com", k.String(true))
	assert.True(t, k.Wildcard())
}

func TestPathKeyMatches(t *testing.T) {
	wild, err := ParseHostname("*.example.com")
	require.NoError(t, err)

	sub, err := ParseHostname("a.example.com")
	require.NoError(t, err)
	assert.True(t, wild.Matches(sub))

	other, err := ParseHostname("other.net")
	require.NoError(t, err)
	assert.False(t, wild.Matches(other))

	// Per the match rule, a wildcard key matches
	// any key whose non-wildcard prefix equals its own path -- including
	// the bare domain itself, since every path is a prefix of itself.
	exact, err := ParseHostname("example.com")
	require.NoError(t, err)
	assert.True(t, wild.Matches(exact))
}
