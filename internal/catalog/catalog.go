package catalog

import (
	"errors"
	"fmt"

	"github.com/kaikyoudou/storefront/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog is the read-only product set for the store. Products keep the
// order they were supplied in; related-product lists stay in their
// author-curated order.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	copy(c.products, products)

	for i, p := range c.products {
		if p.ID == "" {
			return nil, fmt.Errorf("product at index %d has empty id", i)
		}
		if _, ok := c.byID[p.ID]; ok {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("product %q has negative price", p.ID)
		}
		c.byID[p.ID] = i
	}

	return c, nil
}

func (c *Catalog) FindByID(id string) (*domain.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p := c.products[i]
	return &p, nil
}

func (c *Catalog) List() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Related resolves the product's related-id list, dropping ids that no
// longer exist in the catalog and truncating to limit.
func (c *Catalog) Related(p *domain.Product, limit int) []domain.Product {
	if p == nil || limit <= 0 {
		return nil
	}

	var related []domain.Product
	for _, id := range p.RelatedProductIDs {
		if len(related) == limit {
			break
		}
		rp, err := c.FindByID(id)
		if err != nil {
			continue
		}
		related = append(related, *rp)
	}
	return related
}
