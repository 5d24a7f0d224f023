package service

import (
	"context"
	"errors"
	"sync"

	"github.com/kaikyoudou/storefront/internal/catalog"
	"github.com/kaikyoudou/storefront/internal/domain"
	"github.com/kaikyoudou/storefront/internal/repository"
	"go.uber.org/zap"
)

// CartService owns the cart for the current shopping session. All
// mutations persist the cart and notify subscribers with the new item
// count. A failing store never fails the mutation: the service logs,
// switches to in-memory operation, and the session continues.
type CartService interface {
	AddItem(ctx context.Context, productID string, quantity int64) error
	SetQuantity(ctx context.Context, productID string, quantity int64) error
	RemoveItem(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	Lines() []domain.CartLine
	TotalItemCount() int64
	TotalPrice() int64
	Summary() domain.OrderSummary
	Subscribe(fn func(itemCount int64))
}

type cartService struct {
	mu          sync.Mutex
	cart        *domain.Cart
	catalog     *catalog.Catalog
	store       repository.CartStore
	shipping    domain.ShippingPolicy
	logger      *zap.Logger
	subscribers []func(int64)
	degraded    bool
}

// NewCartService restores the cart from the store. A store that cannot
// be read starts the session with an empty, in-memory-only cart.
func NewCartService(
	cat *catalog.Catalog,
	store repository.CartStore,
	shipping domain.ShippingPolicy,
	logger *zap.Logger,
) CartService {
	s := &cartService{
		catalog:  cat,
		store:    store,
		shipping: shipping,
		logger:   logger,
	}

	lines, err := store.Load(context.Background())
	if err != nil {
		logger.Warn("cart store unavailable, starting in-memory session", zap.Error(err))
		s.degraded = true
		lines = nil
	}
	s.cart = domain.NewCart(lines)

	return s
}

func (s *cartService) AddItem(ctx context.Context, productID string, quantity int64) error {
	if quantity <= 0 {
		s.logger.Warn("ignoring add with non-positive quantity",
			zap.String("product_id", productID),
			zap.Int64("quantity", quantity),
		)
		return nil
	}

	product, err := s.catalog.FindByID(productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			s.logger.Warn("product not found", zap.String("product_id", productID))
		}
		return err
	}

	s.mu.Lock()
	s.cart.Add(product.ID, quantity)
	s.persistLocked(ctx)
	count, subs := s.cart.TotalItems(), s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, count)
	return nil
}

func (s *cartService) SetQuantity(ctx context.Context, productID string, quantity int64) error {
	s.mu.Lock()

	if _, ok := s.cart.Get(productID); !ok {
		s.mu.Unlock()
		if quantity > 0 {
			// Deliberately not an insert: only AddItem creates lines.
			s.logger.Warn("set quantity on a product not in the cart",
				zap.String("product_id", productID),
				zap.Int64("quantity", quantity),
			)
		}
		return nil
	}

	if !s.cart.SetQuantity(productID, quantity) {
		s.mu.Unlock()
		return nil
	}

	s.persistLocked(ctx)
	count, subs := s.cart.TotalItems(), s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, count)
	return nil
}

func (s *cartService) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()

	if !s.cart.Remove(productID) {
		s.mu.Unlock()
		return nil
	}

	s.persistLocked(ctx)
	count, subs := s.cart.TotalItems(), s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, count)
	return nil
}

func (s *cartService) Clear(ctx context.Context) error {
	s.mu.Lock()

	if s.cart.Len() == 0 {
		s.mu.Unlock()
		return nil
	}

	s.cart.Clear()
	s.persistLocked(ctx)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, 0)
	return nil
}

func (s *cartService) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Lines()
}

func (s *cartService) TotalItemCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.TotalItems()
}

func (s *cartService) TotalPrice() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.totalPriceLocked()
}

// totalPriceLocked skips lines whose product is no longer in the
// catalog: a stale persisted line contributes 0 rather than erroring.
func (s *cartService) totalPriceLocked() int64 {
	var total int64
	for _, line := range s.cart.Lines() {
		product, err := s.catalog.FindByID(line.ProductID)
		if err != nil {
			continue
		}
		total += product.Price * line.Quantity
	}
	return total
}

func (s *cartService) Summary() domain.OrderSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Summarize(s.totalPriceLocked(), s.shipping)
}

func (s *cartService) Subscribe(fn func(itemCount int64)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = append(s.subscribers, fn)
}

func (s *cartService) persistLocked(ctx context.Context) {
	if s.degraded {
		return
	}

	if err := s.store.Save(ctx, s.cart.Lines()); err != nil {
		s.logger.Warn("cart store write failed, continuing in-memory", zap.Error(err))
		s.degraded = true
	}
}

func (s *cartService) subscribersLocked() []func(int64) {
	subs := make([]func(int64), len(s.subscribers))
	copy(subs, s.subscribers)
	return subs
}

// notify runs outside the service lock so a subscriber may call back
// into the service.
func notify(subs []func(int64), count int64) {
	for _, fn := range subs {
		fn(count)
	}
}
