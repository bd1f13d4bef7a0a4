package app

import (
	"context"

	"WebCore/internal/item/domain"
)

type ItemRepo interface {
	List(ctx context.Context) ([]domain.Item, error)
	Get(ctx context.Context, id int64) (domain.Item, error)
	Create(ctx context.Context, it domain.Item) (domain.Item, error)
	Update(ctx context.Context, it domain.Item) (domain.Item, error)
	Delete(ctx context.Context, id int64) error
}
