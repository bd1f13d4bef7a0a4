package http

import (
	"errors"
	nethttp "net/http"
	"net/textproto"
	"sync"

	"WebCore/internal/shared/transport"
)

// ErrSinkDetached 表示 handler 已返回（请求超时/客户端断开），连接不再可写。
var ErrSinkDetached = errors.New("http sink detached")

// sink 把 transport.ResponseSink 落到 net/http 的 ResponseWriter 上。
//
// net/http 不支持自定义状态短语，message 只记录不输出。
type sink struct {
	w    nethttp.ResponseWriter
	head bool

	mu       sync.Mutex
	status   int
	message  string
	header   nethttp.Header
	trailers nethttp.Header
	body     []byte
	detached bool

	endOnce sync.Once
	done    chan struct{}
}

var _ transport.ResponseSink = (*sink)(nil)

func newSink(w nethttp.ResponseWriter, head bool) *sink {
	return &sink{
		w:        w,
		head:     head,
		status:   nethttp.StatusOK,
		header:   make(nethttp.Header),
		trailers: make(nethttp.Header),
		done:     make(chan struct{}),
	}
}

func (s *sink) SetStatus(code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status, s.message = code, message
}

func (s *sink) AddHeader(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.header.Add(key, value)
}

func (s *sink) AddTrailer(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trailers.Add(key, value)
}

func (s *sink) HasHeader(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.header[textproto.CanonicalMIMEHeaderKey(key)]) > 0
}

func (s *sink) SetBody(body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
}

func (s *sink) BodyLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.body)
}

func (s *sink) Send() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detached {
		return ErrSinkDetached
	}

	h := s.w.Header()
	for k, vs := range s.header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	s.w.WriteHeader(s.status)
	// gin 的 writer 延迟写头；空 body 时立即落盘，避免 NoRoute 的默认 404 文案被追加。
	if hw, ok := s.w.(interface{ WriteHeaderNow() }); ok {
		hw.WriteHeaderNow()
	}
	if len(s.body) > 0 && s.bodyAllowed() {
		if _, err := s.w.Write(s.body); err != nil {
			return err
		}
	}
	for k, vs := range s.trailers {
		for _, v := range vs {
			h.Add(nethttp.TrailerPrefix+k, v)
		}
	}
	return nil
}

// HEAD、1xx、204、304 不允许写响应体。
func (s *sink) bodyAllowed() bool {
	if s.head {
		return false
	}
	switch {
	case s.status >= 100 && s.status < 200, s.status == nethttp.StatusNoContent, s.status == nethttp.StatusNotModified:
		return false
	}
	return true
}

func (s *sink) End() error {
	s.endOnce.Do(func() { close(s.done) })
	return nil
}

// detach 在 handler 返回前调用，之后的 Send 直接失败。
func (s *sink) detach() {
	s.mu.Lock()
	s.detached = true
	s.mu.Unlock()
}
