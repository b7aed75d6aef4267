package cart

import "github.com/shopspring/decimal"

// ServerItem is a cart line as the API returns it.
type ServerItem struct {
	ID          int             `json:"id"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	// Older API versions nest the product instead of flattening it.
	ProductDetail *struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"product_detail,omitempty"`
}

// ServerCart is the body of GET /api/cart/.
type ServerCart struct {
	Items      []ServerItem     `json:"items"`
	TotalPrice *decimal.Decimal `json:"total_price,omitempty"`
}

// Item is the storefront's projection of a cart line.
type Item struct {
	ID       int
	Name     string
	Slug     string
	Price    decimal.Decimal
	Quantity int
	Total    decimal.Decimal
}

func project(s ServerItem) Item {
	it := Item{
		ID:       s.ID,
		Name:     s.ProductName,
		Slug:     s.ProductSlug,
		Price:    s.Price,
		Quantity: s.Quantity,
		Total:    s.TotalPrice,
	}
	if s.ProductDetail != nil {
		if it.Name == "" {
			it.Name = s.ProductDetail.Name
		}
		if it.Slug == "" {
			it.Slug = s.ProductDetail.Slug
		}
	}
	return it
}

// Status is the lifecycle position of a Store.
type Status int

const (
	StatusEmpty Status = iota
	StatusLoading
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of a cart.
type State struct {
	Status Status
	Items  []Item
	Count  int
	Total  decimal.Decimal
}
