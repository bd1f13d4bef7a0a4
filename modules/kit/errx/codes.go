package errx

import "net/http"

// 这里定义“跨服务统一”的错误码。
//
// 约束：
// - 系统类错误码用于归一化（便于告警、观测、排障）
// - HTTP 类错误码与状态码一一对应，供 web 层直接翻译为响应
// - 业务域错误码（例如 ITEM_NOT_FOUND）由各业务自行定义

const (
	// CodeInternal 表示服务内部不可预期错误（兜底）。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable 表示依赖不可用/服务不可用（队列满、服务关闭等）。
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	// CodeTimeout 表示请求/依赖调用超时。
	CodeTimeout Code = "TIMEOUT"
	// CodeRateLimited 表示被限流/过载保护。
	CodeRateLimited Code = "RATE_LIMITED"
	// 请求参数错误
	CodeReqParamError Code = "CODE_REQ_PARAM_ERROR"

	CodeNotFound         Code = "NOT_FOUND"
	CodeBadRequest       Code = "BAD_REQUEST"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeMethodNotAllowed Code = "METHOD_NOT_ALLOWED"

	// CodeConfig 表示启动期配置错误（路由/中间件/配置文件），不可恢复。
	CodeConfig Code = "CONFIG_ERROR"
	// CodeInvalidControlCode 表示 handler 返回了枚举之外的控制码，属于编程错误。
	CodeInvalidControlCode Code = "INVALID_CONTROL_CODE"
)

// 统一哨兵错误（允许 WithData/WithCause/WithMsg 派生新对象）。
var (
	ErrInternal    = NewSys(CodeInternal, "Internal Server Error").WithStatus(http.StatusInternalServerError)
	ErrUnavailable = NewSys(CodeUnavailable, "Service Unavailable").WithStatus(http.StatusServiceUnavailable)
	ErrTimeout     = NewSys(CodeTimeout, "请求超时").WithStatus(http.StatusGatewayTimeout)
	ErrRateLimited = NewBiz(CodeRateLimited, "请求过于频繁").WithStatus(http.StatusTooManyRequests)
	ErrReqParamERR = NewBiz(CodeReqParamError, "请求参数错误").WithStatus(http.StatusBadRequest)

	ErrNotFound         = NewHTTP(http.StatusNotFound, CodeNotFound, "Not Found")
	ErrBadRequest       = NewHTTP(http.StatusBadRequest, CodeBadRequest, "Bad Request")
	ErrUnauthorized     = NewHTTP(http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
	ErrMethodNotAllowed = NewHTTP(http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method Not Allowed")
)
