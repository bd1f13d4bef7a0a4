package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"WebCore/internal/item/dto"
	"WebCore/internal/web"
	"WebCore/internal/web/pathmatch"
	"WebCore/internal/web/static"
)

const indexPage = `<!DOCTYPE html>
<html>
<head><title>WebCore</title></head>
<body>
<h1>WebCore</h1>
<ul>
<li><a href="/api/items">/api/items</a></li>
<li><a href="/hello/world">/hello/world</a></li>
</ul>
</body>
</html>
`

const notFoundPage = `<!DOCTYPE html>
<html>
<head><title>404 Not Found</title></head>
<body><h1>404 Not Found</h1><p>The requested resource was not found on this server.</p></body>
</html>
`

func Index(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
	return web.Exit, res.SendHTML(http.StatusOK, indexPage)
}

func Hello(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
	return web.Exit, res.SendText(http.StatusOK, "Hello, "+req.Param("name")+"!")
}

// Files 从独立的文件根目录按通配部分读取文件，扩展名不在静态集合内的文件也能下载。
func Files(srv *static.Server) web.HandlerFunc {
	return func(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
		name, ok := req.Lookup(pathmatch.Wildcard)
		if !ok {
			return web.Error, web.NewError(http.StatusNotFound, "File not found")
		}
		f, err := srv.Open(name)
		if err != nil {
			if errors.Is(err, static.ErrFileNotFound) {
				return web.Error, web.NewError(http.StatusNotFound, "File not found").WithCause(err)
			}
			return web.Error, err
		}
		res.SetStatus(http.StatusOK, "")
		res.SetContentType(f.ContentType)
		if req.Method() == web.MethodHead {
			// HEAD 不带 body，长度按文件实际大小。
			res.AddHeader("Content-Length", strconv.Itoa(len(f.Body)))
		} else {
			res.SetBody(f.Body)
		}
		return web.Exit, nil
	}
}

// NotFound /api/ 下返回 JSON，其余返回 HTML。
func NotFound(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
	if strings.HasPrefix(req.Path(), "/api/") {
		return web.Exit, res.SendJSON(http.StatusNotFound, dto.ErrorResp{Error: "Resource not found"})
	}
	return web.Exit, res.SendHTML(http.StatusNotFound, notFoundPage)
}
