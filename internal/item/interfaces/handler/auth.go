package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"WebCore/internal/item/dto"
	"WebCore/internal/shared/security"
	"WebCore/internal/web"
	"WebCore/modules/kit/errx"
	"WebCore/modules/kit/logx"
)

const roleAdmin = "admin"

var ErrBadCredentials = errx.ErrUnauthorized.WithMsg("Invalid username or password")

type Auth struct {
	signer   *security.Signer
	user     string
	password string
	log      logx.Logger
}

func NewAuth(signer *security.Signer, user, password string, log logx.Logger) *Auth {
	if log == nil {
		log = logx.Nop()
	}
	return &Auth{signer: signer, user: user, password: password, log: log}
}

func (a *Auth) RegisterRoutes(r *web.Router) error {
	return r.POST("/api/auth/token", a.Token)
}

// Token 用管理员账号换取 token。
func (a *Auth) Token(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
	var body dto.TokenReq
	if err := decodeJSON(req, &body); err != nil {
		return web.Error, err
	}
	if a.user == "" || !equal(body.Username, a.user) || !equal(body.Password, a.password) {
		return web.Error, ErrBadCredentials.WithData("username", body.Username)
	}
	token, exp, err := a.signer.Award(body.Username, roleAdmin)
	if err != nil {
		return web.Error, errx.ErrInternal.WithCause(err)
	}
	a.log.WithContext(ctx).Info("token awarded", zap.String("subject", body.Username))
	return web.Exit, res.SendJSON(http.StatusOK, dto.TokenResp{Token: token, ExpiresAt: exp.Unix()})
}

// RequireToken 放在路由 handler 链首位：校验 Bearer token，失败直接 401。
func (a *Auth) RequireToken(ctx context.Context, req web.Request, res web.Response) (web.Code, error) {
	raw, ok := bearer(req.Authorization())
	if !ok {
		return web.Error, errx.ErrUnauthorized.WithData("reason", "missing bearer token")
	}
	claims, err := a.signer.Parse(raw)
	if err != nil {
		return web.Error, errx.ErrUnauthorized.WithCause(err)
	}
	if claims.Role != roleAdmin {
		return web.Error, errx.ErrUnauthorized.WithData("role", claims.Role)
	}
	return web.Continue, nil
}

func bearer(h string) (string, bool) {
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
