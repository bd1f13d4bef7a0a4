// Package transporttest 提供内存版的 RawRequest/ResponseSink，供 web 各层测试复用。
package transporttest

import (
	"context"
	"errors"
	"net/textproto"
	"sync"
	"sync/atomic"

	"WebCore/internal/shared/transport"
)

// Request 是内存版 RawRequest。
type Request struct {
	MethodValue  string
	URIValue     string
	VersionValue string
	HeaderValues map[string][]string
	BodyValue    []byte
	Ctx          context.Context
}

var _ transport.RawRequest = (*Request)(nil)

// NewRequest 构造一个 HTTP/1.1 请求；headers 为 key, value 交替列表。
func NewRequest(method, uri string, body []byte, headers ...string) *Request {
	h := make(map[string][]string, len(headers)/2)
	for i := 0; i+1 < len(headers); i += 2 {
		k := textproto.CanonicalMIMEHeaderKey(headers[i])
		h[k] = append(h[k], headers[i+1])
	}
	return &Request{
		MethodValue:  method,
		URIValue:     uri,
		VersionValue: "HTTP/1.1",
		HeaderValues: h,
		BodyValue:    body,
	}
}

func (r *Request) Method() string  { return r.MethodValue }
func (r *Request) URI() string     { return r.URIValue }
func (r *Request) Version() string { return r.VersionValue }
func (r *Request) Body() []byte    { return r.BodyValue }

func (r *Request) Header(name string) []string {
	return r.HeaderValues[textproto.CanonicalMIMEHeaderKey(name)]
}

func (r *Request) Headers() map[string][]string {
	return r.HeaderValues
}

func (r *Request) Context() context.Context {
	if r.Ctx == nil {
		return context.Background()
	}
	return r.Ctx
}

// ErrSendFailed 用于模拟连接写失败。
var ErrSendFailed = errors.New("transporttest: send failed")

// Sink 记录所有写入，并统计 Send/End 的真实调用次数。
type Sink struct {
	mu       sync.Mutex
	status   int
	message  string
	headers  map[string][]string
	trailers map[string][]string
	body     []byte

	// FailSend 为 true 时 Send 返回 ErrSendFailed。
	FailSend bool

	sends atomic.Int32
	ends  atomic.Int32
	done  chan struct{}
	once  sync.Once
}

var _ transport.ResponseSink = (*Sink)(nil)

func NewSink() *Sink {
	return &Sink{
		headers:  make(map[string][]string),
		trailers: make(map[string][]string),
		done:     make(chan struct{}),
	}
}

func (s *Sink) SetStatus(code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status, s.message = code, message
}

func (s *Sink) AddHeader(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := textproto.CanonicalMIMEHeaderKey(key)
	s.headers[k] = append(s.headers[k], value)
}

func (s *Sink) AddTrailer(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := textproto.CanonicalMIMEHeaderKey(key)
	s.trailers[k] = append(s.trailers[k], value)
}

func (s *Sink) HasHeader(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.headers[textproto.CanonicalMIMEHeaderKey(key)]) > 0
}

func (s *Sink) SetBody(body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = append([]byte(nil), body...)
}

func (s *Sink) BodyLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.body)
}

func (s *Sink) Send() error {
	s.sends.Add(1)
	if s.FailSend {
		return ErrSendFailed
	}
	return nil
}

func (s *Sink) End() error {
	s.ends.Add(1)
	s.once.Do(func() { close(s.done) })
	return nil
}

// Done 在第一次 End 后关闭。
func (s *Sink) Done() <-chan struct{} { return s.done }

func (s *Sink) Sends() int { return int(s.sends.Load()) }
func (s *Sink) Ends() int  { return int(s.ends.Load()) }

func (s *Sink) Status() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.message
}

func (s *Sink) Body() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.body)
}

// HeaderValues 返回某个头的全部取值。
func (s *Sink) HeaderValues(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.headers[textproto.CanonicalMIMEHeaderKey(key)]...)
}

func (s *Sink) TrailerValues(key string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.trailers[textproto.CanonicalMIMEHeaderKey(key)]...)
}
