package domain

// ShippingPolicy is the single source of truth for the shipping fee.
// Both the cart summary and the checkout summary must go through it so
// the two views cannot diverge.
type ShippingPolicy struct {
	FreeThreshold int64
	FlatFee       int64
}

// Fee waives shipping when the subtotal reaches the threshold, inclusive.
func (p ShippingPolicy) Fee(subtotal int64) int64 {
	if subtotal >= p.FreeThreshold {
		return 0
	}
	return p.FlatFee
}

// OrderSummary is derived at read time and never stored.
type OrderSummary struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Total       int64 `json:"total"`
}

func Summarize(subtotal int64, policy ShippingPolicy) OrderSummary {
	fee := policy.Fee(subtotal)
	return OrderSummary{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       subtotal + fee,
	}
}
