package interfaces

import (
	"WebCore/internal/item/app"
	"WebCore/internal/item/infra/repo"
	"WebCore/internal/item/interfaces/handler"
	"WebCore/internal/shared/config"
	"WebCore/internal/shared/security"
	"WebCore/internal/web"
	"WebCore/internal/web/server"
	"WebCore/internal/web/static"
	"WebCore/modules/kit/logx"
)

type Options struct {
	// Repo 为空时使用内存仓储。
	Repo   app.ItemRepo
	Signer *security.Signer
	Auth   config.AuthConfig
	CORS   config.CORSConfig
	// Files 为空时不挂载 /files/*。
	Files  *static.Server
	Logger logx.Logger
}

type Module struct {
	opts Options
}

func New(opts Options) *Module {
	if opts.Logger == nil {
		opts.Logger = logx.Nop()
	}
	if opts.Repo == nil {
		opts.Repo = repo.NewMemoryRepo()
	}
	return &Module{opts: opts}
}

// Register 向 Dispatcher 注册两个 Router：/api 与页面。须在 Dispatcher.Start 之前调用。
func (m *Module) Register(d *server.Dispatcher) error {
	api, err := m.apiRouter()
	if err != nil {
		return err
	}
	pages, err := m.pageRouter()
	if err != nil {
		return err
	}
	for _, r := range []*web.Router{api, pages} {
		if err := d.RegisterRouter(r); err != nil {
			return err
		}
	}
	return d.SetNotFoundHandler(handler.NotFound)
}

func (m *Module) apiRouter() (*web.Router, error) {
	r := web.NewRouter()
	if err := r.Use(handler.CORS(m.opts.CORS)); err != nil {
		return nil, err
	}

	var guard web.HandlerFunc
	if m.opts.Signer != nil {
		auth := handler.NewAuth(m.opts.Signer, m.opts.Auth.AdminUser, m.opts.Auth.AdminPassword, m.opts.Logger)
		if err := auth.RegisterRoutes(r); err != nil {
			return nil, err
		}
		guard = auth.RequireToken
	}

	items := handler.NewItem(app.NewItemService(m.opts.Repo), m.opts.Logger)
	if err := items.RegisterRoutes(r, guard); err != nil {
		return nil, err
	}
	return r, nil
}

func (m *Module) pageRouter() (*web.Router, error) {
	r := web.NewRouter()
	if err := r.GET("/", handler.Index); err != nil {
		return nil, err
	}
	if err := r.GET("/hello/:name", handler.Hello); err != nil {
		return nil, err
	}
	if m.opts.Files != nil {
		files := handler.Files(m.opts.Files)
		if err := r.GET("/files/*", files); err != nil {
			return nil, err
		}
		if err := r.HEAD("/files/*", files); err != nil {
			return nil, err
		}
	}
	return r, nil
}
