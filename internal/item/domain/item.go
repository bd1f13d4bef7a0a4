package domain

import "strings"

type Item struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Validate 只校验字段本身，ID 由仓储分配。
func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrInvalidItem.WithData("field", "name")
	}
	if i.Price < 0 {
		return ErrInvalidItem.WithData("field", "price")
	}
	return nil
}
