package repository

import (
	"context"

	"github.com/kaikyoudou/storefront/internal/domain"
)

// DefaultCartKey is the fixed namespaced key the serialized cart lives
// under. Kept stable so carts persisted by earlier store versions keep
// loading.
const DefaultCartKey = "kaikyoudou_cart_v1"

// CartStore persists the cart as an ordered sequence of
// {product_id, quantity} pairs. Implementations must return lines in
// the order they were saved, and must treat corrupt stored data as an
// empty cart rather than an error.
type CartStore interface {
	Load(ctx context.Context) ([]domain.CartLine, error)
	Save(ctx context.Context, lines []domain.CartLine) error
	Clear(ctx context.Context) error
}
