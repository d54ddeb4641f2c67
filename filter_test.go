package lactoserv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubApp struct {
	name   string
	result HandlerResult
	err    error
}

func (s *stubApp) Name() string { return s.name }

func (s *stubApp) Handle(ctx context.Context, req *Request, info DispatchInfo) (HandlerResult, error) {
	return s.result, s.err
}

func TestFilterMutuallyExclusiveRedirects(t *testing.T) {
	_, err := NewFilter(&stubApp{name: "a"}, FilterConfig{RedirectDirectories: true, RedirectFiles: true})
	assert.Error(t, err)
}

func TestFilterAcceptMethods(t *testing.T) {
	f, err := NewFilter(&stubApp{name: "a", result: HandlerResult{Status: &StatusResponse{Status: 200}}}, FilterConfig{
		AcceptMethods: []string{"GET"},
	})
	require.NoError(t, err)

	req := &Request{Method: "POST"}
	result, err := f.Handle(context.Background(), req, NewDispatchInfo(PathKey{}))
	require.NoError(t, err)
	assert.False(t, result.Handled())

	req.Method = "GET"
	result, err = f.Handle(context.Background(), req, NewDispatchInfo(PathKey{}))
	require.NoError(t, err)
	assert.True(t, result.Handled())
}

func TestFilterRedirectDirectories(t *testing.T) {
	f, err := NewFilter(&stubApp{name: "a"}, FilterConfig{RedirectDirectories: true})
	require.NoError(t, err)

	req := &Request{Method: "GET", URLPath: "/foo/"}
	info := NewDispatchInfo(ParseURLPath("/foo/"))
	result, err := f.Handle(context.Background(), req, info)
	require.NoError(t, err)
	require.NotNil(t, result.Full)
	assert.Equal(t, 308, result.Full.Status)
	assert.Equal(t, "/foo", result.Full.Header.Get("Location"))
}

func TestFilterRedirectDirectoriesNoLoopAtRoot(t *testing.T) {
	f, err := NewFilter(&stubApp{name: "a", result: HandlerResult{Status: &StatusResponse{Status: 200}}}, FilterConfig{
		RedirectDirectories: true,
	})
	require.NoError(t, err)

	req := &Request{Method: "GET", URLPath: "/"}
	info := NewDispatchInfo(ParseURLPath("/"))
	result, err := f.Handle(context.Background(), req, info)
	require.NoError(t, err)
	assert.Nil(t, result.Full)
	assert.NotNil(t, result.Status)
}

func TestFilterMaxPathDepth(t *testing.T) {
	f, err := NewFilter(&stubApp{name: "a", result: HandlerResult{Status: &StatusResponse{Status: 200}}}, FilterConfig{
		MaxPathDepth: 1,
	})
	require.NoError(t, err)

	req := &Request{Method: "GET"}
	info := NewDispatchInfo(ParseURLPath("/a/b"))
	result, err := f.Handle(context.Background(), req, info)
	require.NoError(t, err)
	assert.False(t, result.Handled())
}
