package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"WebCore/internal/item/app"
	"WebCore/internal/item/dto"
	"WebCore/internal/web"
	"WebCore/modules/kit/errx"
	"WebCore/modules/kit/logx"
)

var (
	ErrInvalidID   = errx.ErrBadRequest.WithMsg("Invalid item id")
	ErrInvalidJSON = errx.ErrBadRequest.WithMsg("Invalid JSON body")
)

type Item struct {
	svc *app.ItemService
	log logx.Logger
}

func NewItem(svc *app.ItemService, log logx.Logger) *Item {
	if log == nil {
		log = logx.Nop()
	}
	return &Item{svc: svc, log: log}
}

// RegisterRoutes 挂载商品 CRUD；auth 非空时写操作先经过它。
func (h *Item) RegisterRoutes(r *web.Router, auth web.HandlerFunc) error {
	guard := func(next web.HandlerFunc) []web.HandlerFunc {
		if auth == nil {
			return []web.HandlerFunc{next}
		}
		return []web.HandlerFunc{auth, next}
	}
	for _, err := range []error{
		r.GET("/api/items", h.List),
		r.GET("/api/items/:id", h.Get),
		r.POST("/api/items", guard(h.Create)...),
		r.PUT("/api/items/:id", guard(h.Update)...),
		r.DELETE("/api/items/:id", guard(h.Delete)...),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *Item) List(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
	resp, err := h.svc.List(ctx)
	if err != nil {
		return web.Error, err
	}
	return web.Exit, res.SendJSON(http.StatusOK, resp)
}

func (h *Item) Get(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
	id, err := itemID(req)
	if err != nil {
		return web.Error, err
	}
	it, err := h.svc.Get(ctx, id)
	if err != nil {
		return web.Error, err
	}
	return web.Exit, res.SendJSON(http.StatusOK, it)
}

func (h *Item) Create(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
	var body dto.ItemReq
	if err := decodeJSON(req, &body); err != nil {
		return web.Error, err
	}
	it, err := h.svc.Create(ctx, body)
	if err != nil {
		return web.Error, err
	}
	h.log.WithContext(ctx).Info("item created", zap.Int64("id", it.ID), zap.String("name", it.Name))
	res.AddHeader("Location", "/api/items/"+strconv.FormatInt(it.ID, 10))
	return web.Exit, res.SendJSON(http.StatusCreated, it)
}

func (h *Item) Update(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
	id, err := itemID(req)
	if err != nil {
		return web.Error, err
	}
	var body dto.ItemReq
	if err := decodeJSON(req, &body); err != nil {
		return web.Error, err
	}
	it, err := h.svc.Update(ctx, id, body)
	if err != nil {
		return web.Error, err
	}
	return web.Exit, res.SendJSON(http.StatusOK, it)
}

func (h *Item) Delete(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
	id, err := itemID(req)
	if err != nil {
		return web.Error, err
	}
	if err := h.svc.Delete(ctx, id); err != nil {
		return web.Error, err
	}
	h.log.WithContext(ctx).Info("item deleted", zap.Int64("id", id))
	res.SetStatus(http.StatusNoContent, "")
	return web.Exit, nil
}

func itemID(req web.Request) (int64, error) {
	raw := req.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID.WithData("id", raw)
	}
	return id, nil
}

func decodeJSON(req web.Request, v any) error {
	if err := json.Unmarshal(req.Body(), v); err != nil {
		return ErrInvalidJSON.WithCause(err)
	}
	return nil
}
