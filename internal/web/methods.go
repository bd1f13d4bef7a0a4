package web

import "net/http"

// 可识别的 HTTP 方法；其余方法在进入路由前即以 405 拒绝。
const (
	MethodGet     = http.MethodGet
	MethodPost    = http.MethodPost
	MethodPut     = http.MethodPut
	MethodDelete  = http.MethodDelete
	MethodPatch   = http.MethodPatch
	MethodHead    = http.MethodHead
	MethodOptions = http.MethodOptions
)

var knownMethods = map[string]struct{}{
	MethodGet:     {},
	MethodPost:    {},
	MethodPut:     {},
	MethodDelete:  {},
	MethodPatch:   {},
	MethodHead:    {},
	MethodOptions: {},
}

// KnownMethod 区分大小写。
func KnownMethod(method string) bool {
	_, ok := knownMethods[method]
	return ok
}
