package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"WebCore/internal/shared/transport"
	"WebCore/internal/shared/transport/http/middleware"
	"WebCore/modules/kit/logx"
)

type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodyBytes int64
	// Gatherer 为空时不暴露 /metrics。
	Gatherer prometheus.Gatherer
	Logger   logx.Logger
}

type Server struct {
	engine *gin.Engine
	srv    *nethttp.Server
}

// NewHttpServer 组装 gin 引擎：/healthz、/metrics 由 gin 直接处理，其余请求全部桥接给 entry。
func NewHttpServer(opts Options, entry transport.Entry) *Server {
	if opts.Logger == nil {
		opts.Logger = logx.Nop()
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	ops := engine.Group("", middleware.AccessLog(opts.Logger))
	ops.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Gatherer != nil {
		ops.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	engine.NoRoute(Bridge(entry, opts.MaxBodyBytes))

	return &Server{
		engine: engine,
		srv: &nethttp.Server{
			Addr:              opts.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
		},
	}
}

// Start 启动 HTTP 服务（阻塞）。关闭时返回 http.ErrServerClosed。
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) Handler() nethttp.Handler {
	return s.engine
}
