package web

import (
	"context"
	"sync"
	"sync/atomic"
)

// Router 持有有序的中间件链与有序的路由表。
//
// 注册只能发生在 Dispatcher 启动之前；Freeze 之后的注册返回 ErrRouterFrozen。
// 冻结后 Serve 只读，可被 worker 并发调用。
type Router struct {
	mu          sync.Mutex
	frozen      atomic.Bool
	middlewares []HandlerFunc
	routes      []*Route
}

func NewRouter() *Router {
	return &Router{}
}

// Use 追加中间件，注册顺序即执行顺序。
func (r *Router) Use(mw ...HandlerFunc) error {
	for i, h := range mw {
		if h == nil {
			return ErrNilHandler.WithData("middleware_index", i)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return ErrRouterFrozen
	}
	r.middlewares = append(r.middlewares, mw...)
	return nil
}

// RegisterRoute 追加已构造好的路由。绕过 NewRoute 构造的空路由同样被拒绝。
func (r *Router) RegisterRoute(route *Route) error {
	if route == nil {
		return ErrNoHandlers.WithData("route", "nil")
	}
	if route.pattern == "" {
		return ErrEmptyPattern.WithData("method", route.method)
	}
	if len(route.handlers) == 0 {
		return ErrNoHandlers.WithData("method", route.method).WithData("pattern", route.pattern)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return ErrRouterFrozen.WithData("pattern", route.Pattern())
	}
	r.routes = append(r.routes, route)
	return nil
}

// Handle 构造并注册一条路由。
func (r *Router) Handle(method, pattern string, handlers ...HandlerFunc) error {
	route, err := NewRoute(method, pattern, handlers...)
	if err != nil {
		return err
	}
	return r.RegisterRoute(route)
}

func (r *Router) GET(pattern string, handlers ...HandlerFunc) error {
	return r.Handle(MethodGet, pattern, handlers...)
}

func (r *Router) POST(pattern string, handlers ...HandlerFunc) error {
	return r.Handle(MethodPost, pattern, handlers...)
}

func (r *Router) PUT(pattern string, handlers ...HandlerFunc) error {
	return r.Handle(MethodPut, pattern, handlers...)
}

func (r *Router) DELETE(pattern string, handlers ...HandlerFunc) error {
	return r.Handle(MethodDelete, pattern, handlers...)
}

func (r *Router) PATCH(pattern string, handlers ...HandlerFunc) error {
	return r.Handle(MethodPatch, pattern, handlers...)
}

func (r *Router) HEAD(pattern string, handlers ...HandlerFunc) error {
	return r.Handle(MethodHead, pattern, handlers...)
}

func (r *Router) OPTIONS(pattern string, handlers ...HandlerFunc) error {
	return r.Handle(MethodOptions, pattern, handlers...)
}

// Freeze 禁止后续注册，可重复调用。
func (r *Router) Freeze() {
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

func (r *Router) Frozen() bool { return r.frozen.Load() }

// Routes 返回路由表快照。
func (r *Router) Routes() []*Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Serve 先跑中间件链，再按注册顺序找第一条命中的路由执行。
//
// 返回 handled：
//   - 中间件返回 Exit/Error：true
//   - 命中路由：true（无论路由链结果）
//   - 没有路由命中：false，调用方可继续尝试下一个 Router
//
// handler 返回的 error 原样上抛，HTTP 状态由 Dispatcher 决定。
func (r *Router) Serve(ctx context.Context, req Request, res Response) (bool, error) {
	middlewares, routes := r.snapshot()

	code, err := runChain(ctx, middlewares, req, res)
	if err != nil {
		return true, err
	}
	if code != Continue {
		return true, nil
	}

	for _, route := range routes {
		if !route.Match(req) {
			continue
		}
		if _, err := route.Run(ctx, req, res); err != nil {
			return true, err
		}
		return true, nil
	}
	return false, nil
}

func (r *Router) snapshot() ([]HandlerFunc, []*Route) {
	// 冻结后切片不再变化，免锁读取。
	if r.frozen.Load() {
		return r.middlewares, r.routes
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.middlewares, r.routes
}
