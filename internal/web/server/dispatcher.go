// Package server 是 web 层面向传输层的门面：把原始请求包装成 web.Request/web.Response，
// 提交到 worker pool，在 worker 内依次尝试静态资源、各 Router、not-found handler，
// 并保证每个响应恰好 Send 一次、End 一次。
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"WebCore/internal/shared/transport"
	"WebCore/internal/shared/workerpool"
	"WebCore/internal/web"
	"WebCore/internal/web/static"
	"WebCore/modules/kit/errx"
	"WebCore/modules/kit/logx"
	"WebCore/modules/kit/tracex"
)

const (
	msgNotFound         = "404 Not Found"
	msgMethodNotAllowed = "405 Method Not Allowed"
	msgUnavailable      = "503 Service Unavailable"
)

// ErrorHandler 在请求失败且响应尚未发出时被调用，可自定义错误响应体。
// status 为 Dispatcher 翻译出的状态码；handler 未 Send 时按默认文案应答。
type ErrorHandler func(ctx context.Context, req web.Request, res web.Response, status int, err error)

type Options struct {
	// Pool 为空时按 CPU 数创建，reject 策略。
	Pool *workerpool.Pool
	// Static 为空时使用真实文件系统、不缓存。
	Static  *static.Server
	Metrics *Metrics
	Logger  logx.Logger
}

var _ transport.Entry = (*Dispatcher)(nil)

type Dispatcher struct {
	pool    *workerpool.Pool
	static  *static.Server
	metrics *Metrics
	logger  logx.Logger

	mu       sync.Mutex
	started  atomic.Bool
	routers  []*web.Router
	notFound web.HandlerFunc
	onError  ErrorHandler
}

func New(opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = logx.Nop()
	}
	if opts.Pool == nil {
		n := runtime.NumCPU()
		opts.Pool = workerpool.New(workerpool.Options{
			Workers:   n,
			QueueSize: n * 64,
			Logger:    opts.Logger,
		})
	}
	if opts.Static == nil {
		opts.Static = static.NewServer(nil, nil, opts.Logger)
	}
	return &Dispatcher{
		pool:     opts.Pool,
		static:   opts.Static,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		notFound: defaultNotFound,
	}
}

func defaultNotFound(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
	_ = res.SendText(http.StatusNotFound, msgNotFound)
	return web.Exit, nil
}

// RegisterRouter 追加 Router；请求按注册顺序依次尝试。
func (d *Dispatcher) RegisterRouter(r *web.Router) error {
	if r == nil {
		return web.ErrNilHandler.WithData("router", "nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started.Load() {
		return web.ErrRouterFrozen
	}
	d.routers = append(d.routers, r)
	return nil
}

// RegisterStatic 追加静态资源根目录。
func (d *Dispatcher) RegisterStatic(dir string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started.Load() {
		return web.ErrRouterFrozen.WithData("static", dir)
	}
	d.static.AddRoot(dir)
	return nil
}

func (d *Dispatcher) SetNotFoundHandler(h web.HandlerFunc) error {
	if h == nil {
		return web.ErrNilHandler.WithData("handler", "not_found")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started.Load() {
		return web.ErrRouterFrozen
	}
	d.notFound = h
	return nil
}

func (d *Dispatcher) SetErrorHandler(h ErrorHandler) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started.Load() {
		return web.ErrRouterFrozen
	}
	d.onError = h
	return nil
}

// Start 冻结全部配置，之后的注册返回 ErrRouterFrozen。可重复调用。
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started.Load() {
		return
	}
	for _, r := range d.routers {
		r.Freeze()
	}
	d.started.Store(true)
	d.logger.Info("dispatcher started",
		zap.Int("routers", len(d.routers)),
		zap.Strings("static_roots", d.static.Roots()),
	)
}

// Stop 等待已入队请求处理完毕。
func (d *Dispatcher) Stop() {
	d.pool.Stop()
}

// Handle 是传输层入口：调用方最多阻塞到请求入队为止。
func (d *Dispatcher) Handle(raw transport.RawRequest, sink transport.ResponseSink) {
	if !d.started.Load() {
		d.Start()
	}
	begin := time.Now()

	traceID, _ := tracex.FromHeader(raw.Header(tracex.HeaderRequestID))
	ctx := transport.NewContextWithParent(raw.Context(), raw.Method()+" "+pathOnly(raw.URI()), traceID)
	req := web.NewRequest(ctx, raw)
	res := web.NewResponse(sink)
	if tid, ok := tracex.TraceIDFrom(ctx); ok {
		res.AddHeader(tracex.HeaderRequestID, tid)
	}
	d.metrics.begin()

	if !web.KnownMethod(req.Method()) {
		transport.SetErrorReason(ctx, "unknown method "+req.Method())
		d.rejectNow(ctx, req, res, http.StatusMethodNotAllowed, msgMethodNotAllowed, "method_not_allowed", begin)
		return
	}

	err := d.pool.Submit(ctx, func(ctx context.Context) {
		d.process(ctx, req, res, begin)
	})
	if err != nil {
		reason := "queue_full"
		if errors.Is(err, workerpool.ErrPoolClosed) {
			reason = "pool_closed"
		}
		transport.SetErrorReason(ctx, err.Error())
		d.rejectNow(ctx, req, res, http.StatusServiceUnavailable, msgUnavailable, reason, begin)
	}
}

func pathOnly(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		return uri[:i]
	}
	return uri
}

// rejectNow 在调用方线程内直接应答，不进入 worker。
func (d *Dispatcher) rejectNow(ctx context.Context, req web.Request, res web.Response, status int, msg, reason string, begin time.Time) {
	d.metrics.rejected(reason)
	_ = res.SendText(status, msg)
	d.finalize(ctx, req, res, kindRejected, begin)
}

// process 在 worker 内执行；任何结果（含 panic）都以 finalize 收尾。
func (d *Dispatcher) process(ctx context.Context, req web.Request, res web.Response, begin time.Time) {
	kind := kindDynamic
	var err error

	var pc panics.Catcher
	pc.Try(func() {
		kind, err = d.serve(ctx, req, res)
	})
	if r := pc.Recovered(); r != nil {
		logx.ReportPanicWithLoggerContext(ctx, d.logger, actionOf(req), r.Value, r.Stack)
		err = errx.ErrInternal.WithCause(r.AsError())
		transport.SetErrorReason(ctx, fmt.Sprintf("panic: %v", r.Value))
		d.fail(ctx, req, res, err, false)
	} else if err != nil {
		d.fail(ctx, req, res, err, true)
	}

	d.finalize(ctx, req, res, kind, begin)

	if err != nil && errors.Is(err, web.ErrInvalidCode) {
		d.logger.WithContext(ctx).DPanic("handler returned invalid control code",
			zap.String("action", actionOf(req)),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) serve(ctx context.Context, req web.Request, res web.Response) (string, error) {
	if static.IsStatic(req.Path()) {
		return kindStatic, d.serveStatic(req, res)
	}
	for _, r := range d.routers {
		handled, err := r.Serve(ctx, req, res)
		if err != nil {
			return kindDynamic, err
		}
		if handled {
			return kindDynamic, nil
		}
	}
	code, err := d.notFound(ctx, req, res)
	if err == nil && !code.Valid() {
		err = web.ErrInvalidCode.WithData("code", int(code)).WithData("handler", "not_found").WithStack()
	}
	return kindNotFound, err
}

func (d *Dispatcher) serveStatic(req web.Request, res web.Response) error {
	f, err := d.static.Open(req.Path())
	if err != nil {
		return err
	}
	res.SetStatus(http.StatusOK, "")
	res.SetContentType(f.ContentType)
	if !f.ModTime.IsZero() {
		res.AddHeader("Last-Modified", f.ModTime.UTC().Format(http.TimeFormat))
	}
	if req.Method() == web.MethodHead {
		// HEAD 不带 body，长度按文件实际大小。
		res.AddHeader("Content-Length", strconv.Itoa(len(f.Body)))
	} else {
		res.SetBody(f.Body)
	}
	return nil
}

// fail 把 error 翻译为响应。带 HTTP 状态码的 *errx.Error 按其状态与文案应答，
// 其余一律 500。5xx 不对外暴露内部文案。
func (d *Dispatcher) fail(ctx context.Context, req web.Request, res web.Response, err error, report bool) {
	status, msg := translate(err)
	transport.SetErrorReason(ctx, err.Error())

	if report {
		action := actionOf(req)
		if status < http.StatusInternalServerError {
			code := ""
			if e, ok := errx.As(err); ok {
				code = e.CodeText()
			}
			logx.ReportBizWithLoggerContext(ctx, d.logger, logx.NewBizLog(action, code, msg, status))
		} else {
			logx.ReportSysErrorWithLoggerContext(ctx, d.logger, logx.NewSysLog(action, err))
		}
	}

	if res.Sent() {
		return
	}
	if d.onError != nil {
		var pc panics.Catcher
		pc.Try(func() { d.onError(ctx, req, res, status, err) })
		if r := pc.Recovered(); r != nil {
			logx.ReportPanicWithLoggerContext(ctx, d.logger, "error_handler", r.Value, r.Stack)
		}
		if res.Sent() {
			return
		}
	}
	_ = res.SendText(status, msg)
}

func translate(err error) (int, string) {
	e, ok := errx.As(err)
	if !ok || e.Status() == 0 {
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
	status := e.Status()
	if status >= http.StatusInternalServerError {
		return status, http.StatusText(status)
	}
	return status, e.Msg()
}

// finalize 保证 Send/End 各一次，并输出访问日志与指标。
func (d *Dispatcher) finalize(ctx context.Context, req web.Request, res web.Response, kind string, begin time.Time) {
	if err := res.Send(); err != nil {
		d.logger.WithContext(ctx).Warn("response send failed",
			zap.String("action", actionOf(req)),
			zap.Error(err),
		)
	}
	if err := res.End(); err != nil {
		d.logger.WithContext(ctx).Warn("response end failed",
			zap.String("action", actionOf(req)),
			zap.Error(err),
		)
	}

	status := res.Status()
	transport.SetStatus(ctx, status)
	transport.WriteAccessLog(ctx, d.logger)
	d.metrics.done(req.Method(), kind, status, time.Since(begin))
}

func actionOf(req web.Request) string {
	return req.Method() + " " + req.Path()
}
