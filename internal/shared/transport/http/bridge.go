package http

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"

	"github.com/gin-gonic/gin"

	"WebCore/internal/shared/transport"
)

// rawRequest 是 *http.Request 的只读视图，body 已完整读出。
type rawRequest struct {
	r    *nethttp.Request
	body []byte
}

var _ transport.RawRequest = (*rawRequest)(nil)

func (q *rawRequest) Method() string { return q.r.Method }

func (q *rawRequest) URI() string {
	if q.r.RequestURI != "" {
		return q.r.RequestURI
	}
	return q.r.URL.RequestURI()
}

func (q *rawRequest) Version() string              { return q.r.Proto }
func (q *rawRequest) Header(name string) []string  { return q.r.Header.Values(name) }
func (q *rawRequest) Headers() map[string][]string { return q.r.Header }
func (q *rawRequest) Body() []byte                 { return q.body }
func (q *rawRequest) Context() context.Context     { return q.r.Context() }

// Bridge 把 gin 未命中的请求整体交给 entry。
//
// 请求体先完整读入（超过 maxBody 直接 413），然后阻塞等待 entry 侧 End；
// 请求 context 先结束时放弃等待，并让 sink 失效。
func Bridge(entry transport.Entry, maxBody int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := readBody(c, maxBody)
		if err != nil {
			var tooLarge *nethttp.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatus(nethttp.StatusRequestEntityTooLarge)
				return
			}
			c.AbortWithStatus(nethttp.StatusBadRequest)
			return
		}

		s := newSink(c.Writer, c.Request.Method == nethttp.MethodHead)
		entry.Handle(&rawRequest{r: c.Request, body: body}, s)

		select {
		case <-s.done:
		case <-c.Request.Context().Done():
		}
		s.detach()
		c.Abort()
	}
}

func readBody(c *gin.Context, maxBody int64) ([]byte, error) {
	if c.Request.Body == nil || c.Request.Body == nethttp.NoBody {
		return nil, nil
	}
	r := io.Reader(c.Request.Body)
	if maxBody > 0 {
		r = nethttp.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
	}
	return io.ReadAll(r)
}
