package dto

import "WebCore/internal/item/domain"

// ItemReq 是创建/更新请求体。
type ItemReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

func (r ItemReq) ToDomain(id int64) domain.Item {
	return domain.Item{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
	}
}

type ItemListResp struct {
	Items []domain.Item `json:"items"`
	Total int           `json:"total"`
}

type TokenReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResp struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type ErrorResp struct {
	Error string `json:"error"`
}
