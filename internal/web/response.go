package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"WebCore/internal/shared/transport"
)

// Response 是 handler 可写的响应。
//
// Send/End 幂等且并发安全：无论被调用多少次、来自多少 goroutine，
// 底层 sink 的 Send/End 都只执行一次。Send 之后的修改静默忽略。
type Response interface {
	SetStatus(code int, message string)
	Status() int
	AddHeader(key, value string)
	AddTrailer(key, value string)
	AddCookie(c *http.Cookie)
	SetContentType(ct string)
	SetBody(body []byte)

	SendText(status int, body string) error
	SendHTML(status int, body string) error
	SendJSON(status int, v any) error

	Send() error
	End() error
	Sent() bool
	Ended() bool
}

type response struct {
	sink transport.ResponseSink

	// mu 保护 sink 的写入与 status。加锁顺序 sendMu -> endMu，mu 只在单个锁内短暂持有。
	mu      sync.Mutex
	status  int
	message string

	sendMu sync.Mutex
	endMu  sync.Mutex
	sent   atomic.Bool
	ended  atomic.Bool
}

// NewResponse 包装传输层 sink，默认状态 200。
func NewResponse(sink transport.ResponseSink) Response {
	return &response{
		sink:    sink,
		status:  http.StatusOK,
		message: http.StatusText(http.StatusOK),
	}
}

// SetStatus message 为空时取标准短语。
func (r *response) SetStatus(code int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent.Load() {
		return
	}
	if message == "" {
		message = http.StatusText(code)
	}
	r.status, r.message = code, message
}

func (r *response) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *response) AddHeader(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent.Load() {
		return
	}
	r.sink.AddHeader(key, value)
}

func (r *response) AddTrailer(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent.Load() {
		return
	}
	r.sink.AddTrailer(key, value)
}

func (r *response) AddCookie(c *http.Cookie) {
	if c == nil {
		return
	}
	v := c.String()
	if v == "" {
		return
	}
	r.AddHeader("Set-Cookie", v)
}

func (r *response) SetContentType(ct string) {
	r.AddHeader("Content-Type", ct)
}

func (r *response) SetBody(body []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sent.Load() {
		return
	}
	r.sink.SetBody(body)
}

func (r *response) SendText(status int, body string) error {
	return r.sendWith(status, "text/plain; charset=utf-8", []byte(body))
}

func (r *response) SendHTML(status int, body string) error {
	return r.sendWith(status, "text/html; charset=utf-8", []byte(body))
}

func (r *response) SendJSON(status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.sendWith(status, "application/json; charset=utf-8", b)
}

func (r *response) sendWith(status int, ct string, body []byte) error {
	r.mu.Lock()
	if !r.sent.Load() {
		r.status, r.message = status, http.StatusText(status)
		r.sink.AddHeader("Content-Type", ct)
		r.sink.SetBody(body)
	}
	r.mu.Unlock()
	return r.Send()
}

// Send 只会真正写出一次；写失败时立即 End 释放连接。
func (r *response) Send() error {
	r.sendMu.Lock()
	if r.sent.Load() {
		r.sendMu.Unlock()
		return nil
	}
	// 已 End 的连接不再写出；置 sent 让之后的修改保持无效。
	if r.ended.Load() {
		r.mu.Lock()
		r.sent.Store(true)
		r.mu.Unlock()
		r.sendMu.Unlock()
		return nil
	}

	r.mu.Lock()
	r.sink.SetStatus(r.status, r.message)
	if !r.sink.HasHeader("Connection") {
		r.sink.AddHeader("Connection", "close")
	}
	if !r.sink.HasHeader("Content-Length") {
		r.sink.AddHeader("Content-Length", strconv.Itoa(r.sink.BodyLen()))
	}
	r.sent.Store(true)
	r.mu.Unlock()

	err := r.sink.Send()
	r.sendMu.Unlock()

	if err != nil {
		_ = r.End()
	}
	return err
}

// End 先拿 sendMu，等待进行中的 Send 写完再释放连接。
func (r *response) End() error {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	r.endMu.Lock()
	defer r.endMu.Unlock()
	if r.ended.Load() {
		return nil
	}
	r.ended.Store(true)
	return r.sink.End()
}

func (r *response) Sent() bool  { return r.sent.Load() }
func (r *response) Ended() bool { return r.ended.Load() }
