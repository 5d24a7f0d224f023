package domain

type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// Cart keeps lines in insertion order, one line per product id.
// Lines with quantity <= 0 are never stored: mutations that would
// produce one remove the line instead.
type Cart struct {
	lines []CartLine
}

func NewCart(lines []CartLine) *Cart {
	c := &Cart{}
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		c.Add(line.ProductID, line.Quantity)
	}
	return c
}

func (c *Cart) find(productID string) *CartLine {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return &c.lines[i]
		}
	}
	return nil
}

func (c *Cart) Get(productID string) (CartLine, bool) {
	if line := c.find(productID); line != nil {
		return *line, true
	}
	return CartLine{}, false
}

func (c *Cart) Add(productID string, quantity int64) {
	if line := c.find(productID); line != nil {
		line.Quantity += quantity
		return
	}
	c.lines = append(c.lines, CartLine{ProductID: productID, Quantity: quantity})
}

// SetQuantity overwrites an existing line's quantity, removing the line
// when quantity <= 0. It reports whether the cart changed. A missing
// line is never inserted here.
func (c *Cart) SetQuantity(productID string, quantity int64) bool {
	line := c.find(productID)
	if line == nil {
		return false
	}
	if quantity <= 0 {
		return c.Remove(productID)
	}
	if line.Quantity == quantity {
		return false
	}
	line.Quantity = quantity
	return true
}

func (c *Cart) Remove(productID string) bool {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) TotalItems() int64 {
	var total int64
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Clear() {
	c.lines = nil
}
