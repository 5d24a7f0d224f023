package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/kaikyoudou/storefront/internal/catalog"
	"github.com/kaikyoudou/storefront/internal/domain"
	"github.com/kaikyoudou/storefront/internal/repository"
	"github.com/kaikyoudou/storefront/internal/service"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

var testShipping = domain.ShippingPolicy{FreeThreshold: 5000, FlatFee: 500}

func testCatalog(s *suite.Suite) *catalog.Catalog {
	cat, err := catalog.New([]domain.Product{
		{ID: "1", Name: "フレークステッカー", Price: 500, Stock: 50, RelatedProductIDs: []string{"2", "6"}},
		{ID: "2", Name: "台紙シール", Price: 300, Stock: 60},
		{ID: "5", Name: "マルチケース", Price: 1000, Stock: 30},
		{ID: "6", Name: "ラバーストラップ", Price: 700, Stock: 45},
	})
	s.Require().NoError(err)
	return cat
}

// brokenStore fails on demand so degrade behavior can be driven from
// the tests.
type brokenStore struct {
	mu       sync.Mutex
	loadErr  error
	saveErr  error
	saves    int
	lastSave []domain.CartLine
}

func (s *brokenStore) Load(context.Context) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSave, s.loadErr
}

func (s *brokenStore) Save(_ context.Context, lines []domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.lastSave = lines
	return nil
}

func (s *brokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSave = nil
	return nil
}

type CartServiceSuite struct {
	suite.Suite

	ctx   context.Context
	cat   *catalog.Catalog
	store *repository.MemoryStore
	cart  service.CartService
}

func (s *CartServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.cat = testCatalog(&s.Suite)
	s.store = repository.NewMemoryStore()
	s.cart = service.NewCartService(s.cat, s.store, testShipping, zap.NewNop())
}

func (s *CartServiceSuite) TestAddItemMergesQuantities() {
	s.Require().NoError(s.cart.AddItem(s.ctx, "1", 2))
	s.Require().NoError(s.cart.AddItem(s.ctx, "1", 3))

	lines := s.cart.Lines()
	s.Require().Len(lines, 1)
	s.Require().EqualValues(5, lines[0].Quantity)
	s.Require().EqualValues(5, s.cart.TotalItemCount())
}

func (s *CartServiceSuite) TestAddItemUnknownProduct() {
	err := s.cart.AddItem(s.ctx, "ghost", 1)
	s.Require().ErrorIs(err, catalog.ErrProductNotFound)
	s.Require().EqualValues(0, s.cart.TotalItemCount())
}

func (s *CartServiceSuite) TestAddItemNonPositiveQuantityIsIgnored() {
	s.Require().NoError(s.cart.AddItem(s.ctx, "1", 0))
	s.Require().NoError(s.cart.AddItem(s.ctx, "1", -2))
	s.Require().EqualValues(0, s.cart.TotalItemCount())
}

func (s *CartServiceSuite) TestSetQuantityZeroEqualsRemove() {
	s.Require().NoError(s.cart.AddItem(s.ctx, "1", 2))

	s.Require().NoError(s.cart.SetQuantity(s.ctx, "1", 0))
	s.Require().EqualValues(0, s.cart.TotalItemCount())
	s.Require().Empty(s.cart.Lines())

	// Removing again is a no-op.
	s.Require().NoError(s.cart.RemoveItem(s.ctx, "1"))
	s.Require().NoError(s.cart.RemoveItem(s.ctx, "1"))
}

func (s *CartServiceSuite) TestSetQuantityOnMissingLineIsNoop() {
	s.Require().NoError(s.cart.SetQuantity(s.ctx, "2", 4))
	s.Require().Empty(s.cart.Lines())

	s.Require().NoError(s.cart.SetQuantity(s.ctx, "2", -1))
	s.Require().Empty(s.cart.Lines())
}

func (s *CartServiceSuite) TestCountInvariantAcrossMutations() {
	s.Require().NoError(s.cart.AddItem(s.ctx, "1", 2))
	s.Require().NoError(s.cart.AddItem(s.ctx, "2", 1))
	s.Require().NoError(s.cart.SetQuantity(s.ctx, "1", 4))
	s.Require().NoError(s.cart.AddItem(s.ctx, "5", 3))
	s.Require().NoError(s.cart.RemoveItem(s.ctx, "2"))

	var sum int64
	for _, line := range s.cart.Lines() {
		s.Require().Positive(line.Quantity)
		sum += line.Quantity
	}
	s.Require().Equal(sum, s.cart.TotalItemCount())
}

func (s *CartServiceSuite) TestTotalPriceAndSummary() {
	s.Require().NoError(s.cart.AddItem(s.ctx, "1", 2)) // 1000
	s.Require().NoError(s.cart.AddItem(s.ctx, "5", 3)) // 3000

	s.Require().EqualValues(4000, s.cart.TotalPrice())

	summary := s.cart.Summary()
	s.Require().EqualValues(4000, summary.Subtotal)
	s.Require().EqualValues(500, summary.ShippingFee)
	s.Require().EqualValues(4500, summary.Total)

	s.Require().NoError(s.cart.AddItem(s.ctx, "5", 1)) // 5000
	summary = s.cart.Summary()
	s.Require().EqualValues(0, summary.ShippingFee)
	s.Require().EqualValues(5000, summary.Total)
}

func (s *CartServiceSuite) TestStaleLineContributesZero() {
	// A line persisted before the product left the catalog.
	s.Require().NoError(s.store.Save(s.ctx, []domain.CartLine{
		{ProductID: "1", Quantity: 2},
		{ProductID: "discontinued", Quantity: 3},
	}))
	cart := service.NewCartService(s.cat, s.store, testShipping, zap.NewNop())

	s.Require().EqualValues(5, cart.TotalItemCount())
	s.Require().EqualValues(1000, cart.TotalPrice())
}

func (s *CartServiceSuite) TestMutationsPersist() {
	s.Require().NoError(s.cart.AddItem(s.ctx, "1", 2))
	s.Require().NoError(s.cart.AddItem(s.ctx, "2", 1))
	s.Require().NoError(s.cart.SetQuantity(s.ctx, "1", 5))

	stored, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal([]domain.CartLine{
		{ProductID: "1", Quantity: 5},
		{ProductID: "2", Quantity: 1},
	}, stored)

	restored := service.NewCartService(s.cat, s.store, testShipping, zap.NewNop())
	s.Require().EqualValues(6, restored.TotalItemCount())
	s.Require().Equal(s.cart.Lines(), restored.Lines())
}

func (s *CartServiceSuite) TestClearEmptiesCartAndStore() {
	s.Require().NoError(s.cart.AddItem(s.ctx, "1", 2))
	s.Require().NoError(s.cart.Clear(s.ctx))

	s.Require().EqualValues(0, s.cart.TotalItemCount())
	stored, err := s.store.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().Empty(stored)
}

func (s *CartServiceSuite) TestSubscribersSeeEveryMutation() {
	var counts []int64
	s.cart.Subscribe(func(count int64) {
		counts = append(counts, count)
	})

	s.Require().NoError(s.cart.AddItem(s.ctx, "1", 2))
	s.Require().NoError(s.cart.SetQuantity(s.ctx, "1", 3))
	s.Require().NoError(s.cart.RemoveItem(s.ctx, "1"))

	s.Require().Equal([]int64{2, 3, 0}, counts)
}

func (s *CartServiceSuite) TestNoopMutationsDoNotNotify() {
	var fired int
	s.cart.Subscribe(func(int64) { fired++ })

	s.Require().NoError(s.cart.RemoveItem(s.ctx, "1"))
	s.Require().NoError(s.cart.SetQuantity(s.ctx, "1", 2))
	s.Require().NoError(s.cart.Clear(s.ctx))

	s.Require().Zero(fired)
}

func (s *CartServiceSuite) TestStoreWriteFailureDegradesToMemory() {
	store := &brokenStore{saveErr: repository.ErrStoreUnavailable}
	cart := service.NewCartService(s.cat, store, testShipping, zap.NewNop())

	// The mutation still succeeds; the session just stops persisting.
	s.Require().NoError(cart.AddItem(s.ctx, "1", 2))
	s.Require().NoError(cart.AddItem(s.ctx, "2", 1))
	s.Require().EqualValues(3, cart.TotalItemCount())

	// Once degraded the store is left alone even after it recovers.
	store.mu.Lock()
	store.saveErr = nil
	store.mu.Unlock()
	s.Require().NoError(cart.AddItem(s.ctx, "5", 1))

	store.mu.Lock()
	defer store.mu.Unlock()
	s.Require().Zero(store.saves)
}

func (s *CartServiceSuite) TestStoreReadFailureStartsEmptySession() {
	store := &brokenStore{loadErr: repository.ErrStoreUnavailable}
	cart := service.NewCartService(s.cat, store, testShipping, zap.NewNop())

	s.Require().EqualValues(0, cart.TotalItemCount())
	s.Require().NoError(cart.AddItem(s.ctx, "1", 1))
	s.Require().EqualValues(1, cart.TotalItemCount())
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(CartServiceSuite))
}