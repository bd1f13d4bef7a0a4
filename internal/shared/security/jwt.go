package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrJWTSecretMissing = errors.New("jwt secret is not set")
	ErrTokenInvalid     = errors.New("token is invalid")
)

const defaultTTL = 24 * time.Hour

type Claims struct {
	Subject string `json:"sub_name"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Signer 用 HS256 签发、校验 token。密钥与有效期显式注入，不读环境变量。
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, ErrJWTSecretMissing
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Signer{key: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Award 生成 token。
func (s *Signer) Award(subject, role string) (string, time.Time, error) {
	now := s.now()
	expireTime := now.Add(s.ttl)
	claims := &Claims{
		Subject: subject,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expireTime),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expireTime, nil
}

// Parse 解析并验证 token。
func (s *Signer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.key, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, errors.Join(ErrTokenInvalid, err)
	}
	if token == nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
