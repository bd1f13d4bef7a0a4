package web

import (
	"net/http"
	"strconv"

	"WebCore/modules/kit/errx"
)

// 配置类错误码：各自独立，errors.Is 可以精确区分。
const (
	CodeEmptyPattern    errx.Code = "ROUTE_EMPTY_PATTERN"
	CodeNoHandlers      errx.Code = "ROUTE_NO_HANDLERS"
	CodeWildcardNotLast errx.Code = "ROUTE_WILDCARD_NOT_LAST"
	CodeRouterFrozen    errx.Code = "ROUTER_FROZEN"
	CodeNilHandler      errx.Code = "ROUTE_NIL_HANDLER"
)

// 配置类错误：在注册期返回，调用方应视为致命错误。
var (
	ErrEmptyPattern    = errx.NewSys(CodeEmptyPattern, "route pattern cannot be empty")
	ErrNoHandlers      = errx.NewSys(CodeNoHandlers, "at least one handler must be provided")
	ErrWildcardNotLast = errx.NewSys(CodeWildcardNotLast, "wildcard segment must be the last segment")
	ErrRouterFrozen    = errx.NewSys(CodeRouterFrozen, "router is frozen after dispatcher start")
	ErrNilHandler      = errx.NewSys(CodeNilHandler, "handler cannot be nil")
)

// ErrInvalidCode 表示 handler 返回了枚举之外的控制码（编程错误，第一次出现即暴露）。
var ErrInvalidCode = errx.NewSys(errx.CodeInvalidControlCode, "invalid control code returned by handler").
	WithStatus(http.StatusInternalServerError)

// NewError 创建携带 HTTP 状态码与对外文案的业务错误，handler 直接 return 即可。
//
//	return web.Error, web.NewError(http.StatusNotFound, "Item not found")
func NewError(status int, msg string) *errx.Error {
	return errx.NewHTTP(status, codeForStatus(status), msg)
}

func codeForStatus(status int) errx.Code {
	switch status {
	case http.StatusNotFound:
		return errx.CodeNotFound
	case http.StatusBadRequest:
		return errx.CodeBadRequest
	case http.StatusUnauthorized:
		return errx.CodeUnauthorized
	case http.StatusMethodNotAllowed:
		return errx.CodeMethodNotAllowed
	case http.StatusServiceUnavailable:
		return errx.CodeUnavailable
	}
	if status >= 500 {
		return errx.CodeInternal
	}
	return errx.Code("HTTP_" + strconv.Itoa(status))
}
