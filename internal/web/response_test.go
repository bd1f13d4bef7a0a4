package web

import (
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WebCore/internal/shared/transport/transporttest"
)

func TestResponse_DefaultStatusIsOK(t *testing.T) {
	sink := transporttest.NewSink()
	res := NewResponse(sink)

	require.NoError(t, res.Send())

	code, msg := sink.Status()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", msg)
	assert.Equal(t, []string{"close"}, sink.HeaderValues("Connection"))
	assert.Equal(t, []string{"0"}, sink.HeaderValues("Content-Length"))
}

func TestResponse_SendTextSetsHeaders(t *testing.T) {
	sink := transporttest.NewSink()
	res := NewResponse(sink)

	require.NoError(t, res.SendText(http.StatusCreated, "hello"))

	code, _ := sink.Status()
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "hello", sink.Body())
	assert.Equal(t, []string{"text/plain; charset=utf-8"}, sink.HeaderValues("Content-Type"))
	assert.Equal(t, []string{"5"}, sink.HeaderValues("Content-Length"))
	assert.True(t, res.Sent())
	assert.False(t, res.Ended())
}

func TestResponse_ExplicitHeadersAreKept(t *testing.T) {
	sink := transporttest.NewSink()
	res := NewResponse(sink)
	res.AddHeader("Connection", "keep-alive")
	res.AddHeader("Content-Length", "3")
	res.SetBody([]byte("abc"))

	require.NoError(t, res.Send())

	assert.Equal(t, []string{"keep-alive"}, sink.HeaderValues("Connection"))
	assert.Equal(t, []string{"3"}, sink.HeaderValues("Content-Length"))
}

func TestResponse_SendJSON(t *testing.T) {
	sink := transporttest.NewSink()
	res := NewResponse(sink)

	require.NoError(t, res.SendJSON(http.StatusOK, map[string]int{"id": 1}))

	assert.JSONEq(t, `{"id":1}`, sink.Body())
	assert.Equal(t, []string{"application/json; charset=utf-8"}, sink.HeaderValues("Content-Type"))
}

func TestResponse_SendJSONMarshalError(t *testing.T) {
	sink := transporttest.NewSink()
	res := NewResponse(sink)

	err := res.SendJSON(http.StatusOK, make(chan int))
	require.Error(t, err)
	assert.False(t, res.Sent())
	assert.Equal(t, 0, sink.Sends())
}

func TestResponse_MutationsAfterSendAreIgnored(t *testing.T) {
	sink := transporttest.NewSink()
	res := NewResponse(sink)
	require.NoError(t, res.SendText(http.StatusOK, "first"))

	res.SetStatus(http.StatusTeapot, "")
	res.SetBody([]byte("second"))
	res.AddHeader("X-Late", "1")
	require.NoError(t, res.SendText(http.StatusInternalServerError, "third"))

	code, _ := sink.Status()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "first", sink.Body())
	assert.Empty(t, sink.HeaderValues("X-Late"))
	assert.Equal(t, 1, sink.Sends())
}

func TestResponse_AddCookie(t *testing.T) {
	sink := transporttest.NewSink()
	res := NewResponse(sink)
	res.AddCookie(&http.Cookie{Name: "sid", Value: "abc", Path: "/"})
	res.AddCookie(nil)
	res.AddTrailer("X-Checksum", "ff")
	require.NoError(t, res.Send())

	assert.Equal(t, []string{"sid=abc; Path=/"}, sink.HeaderValues("Set-Cookie"))
	assert.Equal(t, []string{"ff"}, sink.TrailerValues("X-Checksum"))
}

func TestResponse_ConcurrentFinalizeHappensOnce(t *testing.T) {
	sink := transporttest.NewSink()
	res := NewResponse(sink)

	const n = 64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if i%2 == 0 {
				_ = res.Send()
			} else {
				_ = res.End()
			}
			_ = res.Send()
			_ = res.End()
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, sink.Sends())
	assert.Equal(t, 1, sink.Ends())
}

func TestResponse_SendFailureEnds(t *testing.T) {
	sink := transporttest.NewSink()
	sink.FailSend = true
	res := NewResponse(sink)

	err := res.Send()
	require.True(t, errors.Is(err, transporttest.ErrSendFailed))
	assert.True(t, res.Ended())
	assert.Equal(t, 1, sink.Ends())

	require.NoError(t, res.Send())
	require.NoError(t, res.End())
	assert.Equal(t, 1, sink.Sends())
	assert.Equal(t, 1, sink.Ends())
}

func TestResponse_SendAfterEndDoesNotWrite(t *testing.T) {
	sink := transporttest.NewSink()
	res := NewResponse(sink)

	require.NoError(t, res.End())
	require.NoError(t, res.SendText(http.StatusOK, "late"))
	res.AddHeader("X-Late", "1")

	assert.Equal(t, 0, sink.Sends())
	assert.Equal(t, 1, sink.Ends())
	assert.True(t, res.Sent())
	assert.True(t, res.Ended())
	assert.Empty(t, sink.HeaderValues("X-Late"))
}

func TestResponse_ConcurrentEndAndSendNeverWritesAfterEnd(t *testing.T) {
	for i := 0; i < 50; i++ {
		sink := transporttest.NewSink()
		res := NewResponse(sink)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); _ = res.End() }()
		go func() { defer wg.Done(); _ = res.Send() }()
		wg.Wait()

		assert.LessOrEqual(t, sink.Sends(), 1)
		assert.Equal(t, 1, sink.Ends())
	}
}
