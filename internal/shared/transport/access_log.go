package transport

import (
	"context"
	"sync"
	"time"

	"WebCore/modules/kit/logx"
	"WebCore/modules/kit/tracex"

	"go.uber.org/zap"
)

// AccessLog 是请求级日志上下文，一条请求一份，在响应终结时输出一次。
type AccessLog struct {
	mu          sync.Mutex
	status      int
	errorReason string
	route       string
	startTime   time.Time
	action      string
	written     bool
}

type accessLogKey struct{}

// NewContextWithParent 创建带 AccessLog 的新 context（保留父 context 的取消信号）。
// traceID 为空时新生成一个。
func NewContextWithParent(parent context.Context, action, traceID string) context.Context {
	ctx := parent
	if ctx == nil {
		ctx = context.Background()
	}
	if action == "" {
		action = "unknown"
	}
	if traceID == "" {
		traceID = tracex.NewTraceID()
	}
	if traceID != "" {
		ctx = tracex.WithTraceID(ctx, traceID)
	}
	ctx = tracex.WithSpanID(ctx, tracex.NewSpanID())

	al := &AccessLog{
		// 先置 500，避免漏设时出现“成功假象”。
		status:    500,
		startTime: time.Now(),
		action:    action,
	}
	return context.WithValue(ctx, accessLogKey{}, al)
}

// FromContext 从 context 读取 AccessLog。
func FromContext(ctx context.Context) *AccessLog {
	if ctx == nil {
		return nil
	}
	al, _ := ctx.Value(accessLogKey{}).(*AccessLog)
	return al
}

// SetStatus 记录最终响应状态码。
func SetStatus(ctx context.Context, status int) {
	if al := FromContext(ctx); al != nil {
		al.mu.Lock()
		al.status = status
		al.mu.Unlock()
	}
}

// SetRoute 记录命中的路由表达式（未命中时为空）。
func SetRoute(ctx context.Context, route string) {
	if al := FromContext(ctx); al != nil {
		al.mu.Lock()
		al.route = route
		al.mu.Unlock()
	}
}

// SetErrorReason 设置 access 日志错误原因（失败场景）。
func SetErrorReason(ctx context.Context, reason string) {
	if reason == "" {
		return
	}
	if al := FromContext(ctx); al != nil {
		al.mu.Lock()
		al.errorReason = reason
		al.mu.Unlock()
	}
}

// WriteAccessLog 输出访问日志；同一个 context 只会输出一次。
func WriteAccessLog(ctx context.Context, log logx.Logger) {
	al := FromContext(ctx)
	if al == nil || log == nil {
		return
	}
	al.mu.Lock()
	if al.written {
		al.mu.Unlock()
		return
	}
	al.written = true
	status, reason, route := al.status, al.errorReason, al.route
	al.mu.Unlock()

	fields := []zap.Field{
		zap.Duration("latency", time.Since(al.startTime)),
	}
	if route != "" {
		fields = append(fields, zap.String("route", route))
	}
	if status < 400 {
		fields = append(fields, zap.String("result", "success"))
	} else {
		fields = append(fields, zap.String("result", "failure"))
		if reason != "" {
			fields = append(fields, zap.String("error_reason", reason))
		}
	}
	logx.ReportAccessWithLoggerContext(ctx, log, al.action, status, fields...)
}
