package web

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WebCore/internal/shared/transport/transporttest"
	"WebCore/modules/kit/errx"
)

func newPair(method, uri string) (Request, Response, *transporttest.Sink) {
	sink := transporttest.NewSink()
	raw := transporttest.NewRequest(method, uri, nil)
	return NewRequest(context.Background(), raw), NewResponse(sink), sink
}

// record 返回一个记录调用顺序的 handler。
func record(trace *[]string, name string, code Code) HandlerFunc {
	return func(ctx context.Context, req Request, res Response) (Code, error) {
		*trace = append(*trace, name)
		return code, nil
	}
}

func TestNewRoute_ConfigErrors(t *testing.T) {
	ok := record(new([]string), "h", Exit)

	_, err := NewRoute(MethodGet, "", ok)
	assert.True(t, errors.Is(err, ErrEmptyPattern))

	_, err = NewRoute(MethodGet, "/a")
	assert.True(t, errors.Is(err, ErrNoHandlers))

	_, err = NewRoute(MethodGet, "/a", ok, nil)
	assert.True(t, errors.Is(err, ErrNilHandler))

	_, err = NewRoute(MethodGet, "/a/*/b", ok)
	assert.True(t, errors.Is(err, ErrWildcardNotLast))
	assert.False(t, errors.Is(err, ErrEmptyPattern))
}

func TestRoute_MatchInstallsParamsOnlyOnHit(t *testing.T) {
	route, err := NewRoute(MethodGet, "/users/:id", record(new([]string), "h", Exit))
	require.NoError(t, err)

	req, _, _ := newPair(MethodPost, "/users/7")
	assert.False(t, route.Match(req))
	assert.Empty(t, req.Params())

	req, _, _ = newPair(MethodGet, "/users/7?x=1")
	require.True(t, route.Match(req))
	assert.Equal(t, "7", req.Param("id"))
}

func TestRoute_RunAllContinueIsExit(t *testing.T) {
	var trace []string
	route, err := NewRoute(MethodGet, "/", record(&trace, "a", Continue), record(&trace, "b", Continue))
	require.NoError(t, err)

	req, res, _ := newPair(MethodGet, "/")
	code, err := route.Run(context.Background(), req, res)
	require.NoError(t, err)
	assert.Equal(t, Exit, code)
	assert.Equal(t, []string{"a", "b"}, trace)
}

func TestRoute_RunStopsAtExitAndError(t *testing.T) {
	for _, stop := range []Code{Exit, Error} {
		var trace []string
		route, err := NewRoute(MethodGet, "/", record(&trace, "a", stop), record(&trace, "b", Continue))
		require.NoError(t, err)

		req, res, _ := newPair(MethodGet, "/")
		code, err := route.Run(context.Background(), req, res)
		require.NoError(t, err)
		assert.Equal(t, stop, code)
		assert.Equal(t, []string{"a"}, trace)
	}
}

func TestRoute_RunInvalidCode(t *testing.T) {
	bad := func(ctx context.Context, req Request, res Response) (Code, error) { return Code(7), nil }
	route, err := NewRoute(MethodGet, "/", bad)
	require.NoError(t, err)

	req, res, _ := newPair(MethodGet, "/")
	code, err := route.Run(context.Background(), req, res)
	assert.Equal(t, Error, code)
	require.True(t, errors.Is(err, ErrInvalidCode))

	e, ok := errx.As(err)
	require.True(t, ok)
	assert.NotEmpty(t, e.Stack())
	assert.Equal(t, 7, e.Data()["code"])
}

func TestRouter_FirstMiddlewareExitBlocksEverything(t *testing.T) {
	var trace []string
	r := NewRouter()
	require.NoError(t, r.Use(record(&trace, "mw1", Exit), record(&trace, "mw2", Continue)))
	require.NoError(t, r.GET("/", record(&trace, "route", Exit)))

	req, res, _ := newPair(MethodGet, "/")
	handled, err := r.Serve(context.Background(), req, res)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"mw1"}, trace)
}

func TestRouter_MiddlewareErrorCodeIsHandled(t *testing.T) {
	var trace []string
	r := NewRouter()
	require.NoError(t, r.Use(record(&trace, "mw", Error)))

	req, res, _ := newPair(MethodGet, "/nothing")
	handled, err := r.Serve(context.Background(), req, res)
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestRouter_FirstMatchingRouteWins(t *testing.T) {
	var trace []string
	r := NewRouter()
	require.NoError(t, r.Use(record(&trace, "mw", Continue)))
	require.NoError(t, r.GET("/a/:x", record(&trace, "param", Exit)))
	require.NoError(t, r.GET("/a/b", record(&trace, "literal", Exit)))

	req, res, _ := newPair(MethodGet, "/a/b")
	handled, err := r.Serve(context.Background(), req, res)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, []string{"mw", "param"}, trace)
	assert.Equal(t, "b", req.Param("x"))
}

func TestRouter_MatchedRouteErrorCodeStillHandled(t *testing.T) {
	r := NewRouter()
	require.NoError(t, r.GET("/", record(new([]string), "h", Error)))

	req, res, _ := newPair(MethodGet, "/")
	handled, err := r.Serve(context.Background(), req, res)
	require.NoError(t, err)
	assert.True(t, handled)
}

func TestRouter_NoMatch(t *testing.T) {
	r := NewRouter()
	require.NoError(t, r.GET("/a", record(new([]string), "h", Exit)))

	req, res, _ := newPair(MethodGet, "/b")
	handled, err := r.Serve(context.Background(), req, res)
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestRouter_HandlerErrorPropagates(t *testing.T) {
	notFound := NewError(http.StatusNotFound, "Item not found")
	r := NewRouter()
	require.NoError(t, r.GET("/items/:id", func(ctx context.Context, req Request, res Response) (Code, error) {
		return Error, notFound
	}))

	req, res, sink := newPair(MethodGet, "/items/9")
	handled, err := r.Serve(context.Background(), req, res)
	assert.True(t, handled)
	require.True(t, errors.Is(err, errx.ErrNotFound))

	status, ok := errx.StatusOf(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 0, sink.Sends())
}

func TestRouter_FrozenRejectsRegistration(t *testing.T) {
	r := NewRouter()
	require.NoError(t, r.GET("/", record(new([]string), "h", Exit)))
	r.Freeze()
	r.Freeze()
	assert.True(t, r.Frozen())

	assert.True(t, errors.Is(r.GET("/x", record(new([]string), "h", Exit)), ErrRouterFrozen))
	assert.True(t, errors.Is(r.Use(record(new([]string), "mw", Continue)), ErrRouterFrozen))
	assert.Len(t, r.Routes(), 1)
}

func TestRouter_RegisterRouteRejectsInvalidRoute(t *testing.T) {
	r := NewRouter()

	assert.True(t, errors.Is(r.RegisterRoute(&Route{}), ErrEmptyPattern))
	assert.True(t, errors.Is(r.RegisterRoute(&Route{method: MethodGet, pattern: "/"}), ErrNoHandlers))
	assert.True(t, errors.Is(r.RegisterRoute(nil), ErrNoHandlers))
	assert.Empty(t, r.Routes())

	req, res, sink := newPair(MethodGet, "/")
	handled, err := r.Serve(context.Background(), req, res)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Equal(t, 0, sink.Sends())
}
