package web

import (
	"context"
	"fmt"
)

// Code 是 handler/中间件的处理结果（控制码），闭合枚举。
type Code int

const (
	// Continue 继续执行下一个中间件/handler。
	Continue Code = 0
	// Exit 终止链路，响应视为已完成。
	Exit Code = 1
	// Error 终止链路，向调用方表示失败。
	Error Code = -1
)

func (c Code) String() string {
	switch c {
	case Continue:
		return "CONTINUE"
	case Exit:
		return "EXIT"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Valid 表示是否为枚举内的值。
func (c Code) Valid() bool {
	return c == Continue || c == Exit || c == Error
}

// HandlerFunc 是中间件和路由 handler 的统一签名。
//
// 返回值约定：
//   - (Continue|Exit|Error, nil)：按控制码推进链路
//   - (_, err)：立即终止链路，err 原样向上抛给 Dispatcher 翻译为响应；
//     带 HTTP 状态码的 *errx.Error 按其状态码应答，其余按 500 处理
type HandlerFunc func(ctx context.Context, req Request, res Response) (Code, error)

// runChain 顺序执行 handlers，遇到 Exit/Error/错误立即返回。
// 全部 Continue 时返回 (Continue, nil)，由调用方决定其语义。
func runChain(ctx context.Context, handlers []HandlerFunc, req Request, res Response) (Code, error) {
	for i, h := range handlers {
		code, err := h(ctx, req, res)
		if err != nil {
			return Error, err
		}
		switch code {
		case Continue:
			continue
		case Exit, Error:
			return code, nil
		default:
			return Error, ErrInvalidCode.
				WithData("code", int(code)).
				WithData("index", i).
				WithStack()
		}
	}
	return Continue, nil
}
