package domain

type Product struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Price             int64    `json:"price"`
	Description       string   `json:"description"`
	ImageURL          string   `json:"image_url"`
	Category          string   `json:"category"`
	Stock             int64    `json:"stock"`
	RelatedProductIDs []string `json:"related_product_ids,omitempty"`
}
