package repo

import (
	"context"
	"sort"
	"sync"

	"WebCore/internal/item/domain"
)

// MemoryRepo 是进程内的商品仓储，ID 从 1 开始自增，不复用。
type MemoryRepo struct {
	mu     sync.RWMutex
	items  map[int64]domain.Item
	nextID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		items:  make(map[int64]domain.Item),
		nextID: 1,
	}
}

// List 按 ID 升序返回快照。
func (r *MemoryRepo) List(ctx context.Context) ([]domain.Item, error) {
	r.mu.RLock()
	out := make([]domain.Item, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id int64) (domain.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	if !ok {
		return domain.Item{}, domain.ErrItemNotFound.WithData("id", id)
	}
	return it, nil
}

func (r *MemoryRepo) Create(ctx context.Context, it domain.Item) (domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it.ID = r.nextID
	r.nextID++
	r.items[it.ID] = it
	return it, nil
}

func (r *MemoryRepo) Update(ctx context.Context, it domain.Item) (domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[it.ID]; !ok {
		return domain.Item{}, domain.ErrItemNotFound.WithData("id", it.ID)
	}
	r.items[it.ID] = it
	return it, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.ErrItemNotFound.WithData("id", id)
	}
	delete(r.items, id)
	return nil
}
