package transport

import "context"

// RawRequest 是传输层解析完成的一条 HTTP 请求。web 层只通过这个接口读取请求，
// 与具体的 socket/解析实现解耦。
type RawRequest interface {
	Method() string
	// URI 为请求行中的原始 target（path + query）。
	URI() string
	Version() string
	// Header 按名称（大小写不敏感）返回全部取值。
	Header(name string) []string
	Headers() map[string][]string
	Body() []byte
	// Context 随连接生命周期取消，web 层只做透传。
	Context() context.Context
}

// ResponseSink 是传输层提供的可写响应。
//
// 约束：
// - Send 把状态行/头/体真正写到连接上，只应被调用一次
// - End 释放连接资源，只应被调用一次
// web 层的 Response 负责保证上述“一次”语义，sink 本身不需要并发安全。
type ResponseSink interface {
	SetStatus(code int, message string)
	AddHeader(key, value string)
	AddTrailer(key, value string)
	HasHeader(key string) bool
	SetBody(body []byte)
	BodyLen() int
	Send() error
	End() error
}

// Entry 是暴露给传输层的唯一入口：每条完整解析的请求调用一次，调用方只会被阻塞到“提交到线程池”为止。
type Entry interface {
	Handle(req RawRequest, sink ResponseSink)
}

// EntryFunc 让普通函数满足 Entry。
type EntryFunc func(req RawRequest, sink ResponseSink)

func (f EntryFunc) Handle(req RawRequest, sink ResponseSink) {
	f(req, sink)
}
