package app

import (
	"context"

	"WebCore/internal/item/domain"
	"WebCore/internal/item/dto"
)

type ItemService struct {
	repo ItemRepo
}

func NewItemService(repo ItemRepo) *ItemService {
	return &ItemService{repo: repo}
}

func (s *ItemService) List(ctx context.Context) (*dto.ItemListResp, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ItemListResp{Items: items, Total: len(items)}, nil
}

func (s *ItemService) Get(ctx context.Context, id int64) (domain.Item, error) {
	return s.repo.Get(ctx, id)
}

// Create 校验失败返回 ErrInvalidItem（400），不会占用 ID。
func (s *ItemService) Create(ctx context.Context, req dto.ItemReq) (domain.Item, error) {
	it := req.ToDomain(0)
	if err := it.Validate(); err != nil {
		return domain.Item{}, err
	}
	return s.repo.Create(ctx, it)
}

// Update 整体替换；先校验再查存在性，非法请求不区分 ID 是否存在。
func (s *ItemService) Update(ctx context.Context, id int64, req dto.ItemReq) (domain.Item, error) {
	it := req.ToDomain(id)
	if err := it.Validate(); err != nil {
		return domain.Item{}, err
	}
	return s.repo.Update(ctx, it)
}

func (s *ItemService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
