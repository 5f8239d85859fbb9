package inventory

import (
	"context"
	"sync"

	"github.com/Additional-Code/bikeshop/internal/config"
)

// BasketHandle identifies the single basket counter shared by every bike sold
// with a basket. The id is either configured or resolved lazily to the lowest
// basket id. A configured id never changes; a resolved one is kept until
// Invalidate reports its row gone.
type BasketHandle struct {
	repo *Repository

	mu         sync.Mutex
	id         int64
	configured bool
}

// NewBasketHandle builds a handle, pinned to cfg.Shop.BasketID when set.
func NewBasketHandle(repo *Repository, cfg config.Config) *BasketHandle {
	return &BasketHandle{repo: repo, id: cfg.Shop.BasketID, configured: cfg.Shop.BasketID != 0}
}

// ID returns the basket id, resolving it on first use.
func (h *BasketHandle) ID(ctx context.Context) (int64, error) {
	return h.IDWithin(ctx, h.repo)
}

// IDWithin is ID with the first lookup running on repo, typically one bound
// to an open transaction.
func (h *BasketHandle) IDWithin(ctx context.Context, repo *Repository) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.id != 0 {
		return h.id, nil
	}
	id, err := repo.FirstBasketID(ctx)
	if err != nil {
		return 0, err
	}
	h.id = id
	return id, nil
}

// Invalidate forgets a lazily resolved id so the next lookup resolves again.
// It reports false, changing nothing, when id is configured or no longer the
// current one.
func (h *BasketHandle) Invalidate(id int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.configured || h.id != id {
		return false
	}
	h.id = 0
	return true
}
