package tracex

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// HeaderRequestID 是透传请求 ID 的约定头；上游带了就沿用，没有则新生成。
const HeaderRequestID = "X-Request-Id"

type traceIDKey struct{}
type spanIDKey struct{}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func TraceIDFrom(ctx context.Context) (string, bool) {
	v := ctx.Value(traceIDKey{})
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey{}, spanID)
}

func SpanIDFrom(ctx context.Context) (string, bool) {
	v := ctx.Value(spanIDKey{})
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// NewTraceID 生成 16 字节随机 trace_id（hex）。
func NewTraceID() string {
	return randomHex(16)
}

// NewSpanID 生成 8 字节随机 span_id（hex）。
func NewSpanID() string {
	return randomHex(8)
}

// FromHeader 从上游请求头取 trace_id：只接受可打印且不超过 64 字节的值，避免日志注入。
func FromHeader(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	v := strings.TrimSpace(values[0])
	if v == "" || len(v) > 64 {
		return "", false
	}
	for _, c := range v {
		if c < 0x21 || c > 0x7e {
			return "", false
		}
	}
	return v, true
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}
