package domain

import (
	"net/http"

	"WebCore/modules/kit/errx"
)

type Code = errx.Code

const (
	CodeItemNotFound Code = "ITEM_NOT_FOUND"
	CodeInvalidItem  Code = "ITEM_INVALID"
)

type Error = errx.Error

// 领域错误直接携带 HTTP 状态与对外文案，handler 原样返回即可。
var (
	ErrItemNotFound = errx.NewHTTP(http.StatusNotFound, CodeItemNotFound, "Item not found")
	ErrInvalidItem  = errx.NewHTTP(http.StatusBadRequest, CodeInvalidItem, "Invalid item data")
)
