package web

import (
	"context"

	"WebCore/internal/shared/transport"
	"WebCore/internal/web/pathmatch"
)

// Route 是一条 (method, pattern) -> handler 链。构造后只读，可被并发匹配。
type Route struct {
	method   string
	pattern  string
	handlers []HandlerFunc
}

// NewRoute 校验并构造路由；handler 链按传入顺序执行。
func NewRoute(method, pattern string, handlers ...HandlerFunc) (*Route, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern.WithData("method", method)
	}
	if len(handlers) == 0 {
		return nil, ErrNoHandlers.WithData("method", method).WithData("pattern", pattern)
	}
	for i, h := range handlers {
		if h == nil {
			return nil, ErrNilHandler.WithData("pattern", pattern).WithData("index", i)
		}
	}
	if idx := pathmatch.Validate(pattern); idx >= 0 {
		return nil, ErrWildcardNotLast.WithData("pattern", pattern).WithData("segment", idx)
	}
	hs := make([]HandlerFunc, len(handlers))
	copy(hs, handlers)
	return &Route{method: method, pattern: pattern, handlers: hs}, nil
}

func (r *Route) Method() string  { return r.method }
func (r *Route) Pattern() string { return r.pattern }

// Match 方法与路径都命中时才把参数写入 req，未命中不改动 req。
func (r *Route) Match(req Request) bool {
	if req.Method() != r.method {
		return false
	}
	binds, ok := pathmatch.Match(r.pattern, req.Path())
	if !ok {
		return false
	}
	req.setParams(Params(binds))
	transport.SetRoute(req.Context(), r.pattern)
	return true
}

// Run 执行 handler 链。链路全部 Continue 视为处理完成，返回 Exit。
func (r *Route) Run(ctx context.Context, req Request, res Response) (Code, error) {
	code, err := runChain(ctx, r.handlers, req, res)
	if err != nil {
		return Error, err
	}
	if code == Continue {
		return Exit, nil
	}
	return code, nil
}
