package middleware

import (
	"github.com/gin-gonic/gin"

	"WebCore/internal/shared/transport"
	"WebCore/modules/kit/logx"
	"WebCore/modules/kit/tracex"
)

// AccessLog 为 gin 直接处理的路由写访问日志；桥接给 Dispatcher 的请求由 Dispatcher 自己记录。
func AccessLog(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		action := c.Request.Method + " " + route

		traceID, _ := tracex.FromHeader(c.Request.Header.Values(tracex.HeaderRequestID))
		ctx := transport.NewContextWithParent(c.Request.Context(), action, traceID)
		c.Request = c.Request.WithContext(ctx)
		if tid, ok := tracex.TraceIDFrom(ctx); ok {
			c.Header(tracex.HeaderRequestID, tid)
		}

		c.Next()

		transport.SetRoute(ctx, c.FullPath())
		transport.SetStatus(ctx, c.Writer.Status())
		if len(c.Errors) > 0 {
			transport.SetErrorReason(ctx, c.Errors.String())
		}
		transport.WriteAccessLog(ctx, log)
	}
}
