package handler

import (
	"context"
	"net/http"
	"strings"

	"WebCore/internal/shared/config"
	"WebCore/internal/web"
)

const (
	fallbackMethods = "GET, OPTIONS"
	apiPrefix       = "/api"
)

// CORS 返回 Router 级中间件。
//
// 白名单内的 Origin 回显并允许携带凭证；白名单含 "*" 时对所有来源开放配置的方法；
// 其余来源只放行 GET/OPTIONS。OPTIONS 预检直接 204 结束。
// 中间件对经过该 Router 的每个请求都会执行，/api 之外的路径原样放行。
func CORS(cfg config.CORSConfig) web.HandlerFunc {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	wildcard := false
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			wildcard = true
			continue
		}
		origins[o] = struct{}{}
	}
	methods := strings.Join(cfg.AllowedMethods, ", ")
	if methods == "" {
		methods = fallbackMethods
	}
	headers := strings.Join(cfg.AllowedHeaders, ", ")

	return func(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
		if p := req.Path(); p != apiPrefix && !strings.HasPrefix(p, apiPrefix+"/") {
			return web.Continue, nil
		}
		origin := ""
		if v := req.Header("Origin"); len(v) > 0 {
			origin = v[0]
		}

		switch _, listed := origins[origin]; {
		case origin != "" && listed:
			res.AddHeader("Access-Control-Allow-Origin", origin)
			res.AddHeader("Vary", "Origin")
			res.AddHeader("Access-Control-Allow-Methods", methods)
			res.AddHeader("Access-Control-Allow-Credentials", "true")
		case wildcard:
			res.AddHeader("Access-Control-Allow-Origin", "*")
			res.AddHeader("Access-Control-Allow-Methods", methods)
		default:
			res.AddHeader("Access-Control-Allow-Origin", "*")
			res.AddHeader("Access-Control-Allow-Methods", fallbackMethods)
		}
		if headers != "" {
			res.AddHeader("Access-Control-Allow-Headers", headers)
		}

		if req.Method() == web.MethodOptions {
			res.SetStatus(http.StatusNoContent, "")
			return web.Exit, nil
		}
		return web.Continue, nil
	}
}
