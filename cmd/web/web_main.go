package main

import (
	"context"
	"errors"
	"flag"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"WebCore/internal/item/interfaces"
	"WebCore/internal/shared/config"
	"WebCore/internal/shared/logs"
	"WebCore/internal/shared/security"
	transporthttp "WebCore/internal/shared/transport/http"
	"WebCore/internal/shared/workerpool"
	"WebCore/internal/web/server"
	"WebCore/internal/web/static"
	"WebCore/modules/kit/logx"
)

func main() {
	cfgPath := flag.String("config", "", "config file path (default: search configs/conf.yml upward)")
	flag.Parse()

	loader, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	conf := loader.Config()
	if _, err := logs.Init("web", conf.Log); err != nil {
		panic(err)
	}
	defer func() { _ = logs.Sync() }()
	logs.Info("conf", zap.String("path", loader.Path()), zap.Any("conf", redacted(*conf)))

	// 热更新只作用于日志级别，路由表启动后不可变。
	loader.OnChange(func(c *config.Config) {
		logs.SetLevel(c.Log.Level)
		logs.Info("log level reloaded", zap.String("level", c.Log.Level))
	})
	loader.Watch(func(err error) {
		logs.Warn("config reload rejected, keep previous", zap.Error(err))
	})

	log := logx.NewZapLogger(logs.Logger())

	workers, queue := conf.Worker.Workers()
	pool := workerpool.New(workerpool.Options{
		Workers:       workers,
		QueueSize:     queue,
		Policy:        workerpool.Policy(conf.Worker.Policy),
		SubmitTimeout: conf.Worker.SubmitTimeout,
		Logger:        log.Named("workerpool"),
	})

	osFs := afero.NewOsFs()
	cache := static.NewCache(conf.Static.CacheSize, conf.Static.CacheTTL, conf.Static.MaxCachedBytes)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	d := server.New(server.Options{
		Pool:    pool,
		Static:  static.NewServer(osFs, cache, log.Named("static")),
		Metrics: server.NewMetrics(reg),
		Logger:  log.Named("dispatcher"),
	})
	for _, root := range conf.Static.Roots {
		if err := d.RegisterStatic(root); err != nil {
			logs.Fatal("register static root failed", zap.String("root", root), zap.Error(err))
		}
	}

	var signer *security.Signer
	if conf.Auth.JWTSecret != "" {
		signer, err = security.NewSigner(conf.Auth.JWTSecret, conf.Auth.TokenTTL)
		if err != nil {
			logs.Fatal("init jwt signer failed", zap.Error(err))
		}
	} else {
		logs.Warn("auth.jwt_secret is empty, item mutations are NOT protected")
	}

	var files *static.Server
	if conf.Static.FilesRoot != "" {
		files = static.NewServer(osFs, nil, log.Named("files"))
		files.AddRoot(conf.Static.FilesRoot)
	}

	module := interfaces.New(interfaces.Options{
		Signer: signer,
		Auth:   conf.Auth,
		CORS:   conf.CORS,
		Files:  files,
		Logger: log.Named("item"),
	})
	if err := module.Register(d); err != nil {
		logs.Fatal("register routes failed", zap.Error(err))
	}
	d.Start()

	srv := transporthttp.NewHttpServer(transporthttp.Options{
		Addr:         conf.Server.Addr(),
		ReadTimeout:  conf.Server.ReadTimeout,
		WriteTimeout: conf.Server.WriteTimeout,
		IdleTimeout:  conf.Server.IdleTimeout,
		MaxBodyBytes: conf.Server.MaxBodyBytes,
		Gatherer:     reg,
		Logger:       log.Named("http"),
	}, d)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logs.Info("web server started",
			zap.String("addr", conf.Server.Addr()),
			zap.Int("workers", workers),
			zap.Int("queue", queue),
		)
		if err := srv.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case err := <-errCh:
		logs.Error("服务异常退出", zap.Error(err))
	}

	timeout := conf.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logs.Warn("http shutdown not clean", zap.Error(err))
	}
	// 连接关闭后再排空 worker 队列。
	d.Stop()
	logs.Info("web server stopped",
		zap.Any("pool", pool.Stats()),
		zap.Any("static_cache", cache.Stats()),
	)
}

// redacted 打印配置前抹掉密钥。
func redacted(c config.Config) config.Config {
	if c.Auth.JWTSecret != "" {
		c.Auth.JWTSecret = "***"
	}
	if c.Auth.AdminPassword != "" {
		c.Auth.AdminPassword = "***"
	}
	return c
}
