package product

import "github.com/shopspring/decimal"

// PlaceholderImage is shown for products without an image.
const PlaceholderImage = "/static/images/no-image.svg"

// Product mirrors the API product record. Only Slug, Name, Price, Image,
// Category and IsPublished are required by the storefront; the rest is
// shown on the detail view when present.
type Product struct {
	ID           int             `json:"id,omitempty"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity,omitempty"`
	Image        *string         `json:"image"`
	Category     int             `json:"category"`
	CategorySlug string          `json:"category_slug,omitempty"`
	IsPublished  bool            `json:"is_published"`
}

// ImageURL returns the product image or the placeholder.
func (p Product) ImageURL() string {
	if p.Image == nil || *p.Image == "" {
		return PlaceholderImage
	}
	return *p.Image
}

// Page is the paginated wrapper of `/api/v1/product/`.
type Page struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []Product `json:"results"`
}

// Published keeps only published products, preserving order.
func Published(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.IsPublished {
			out = append(out, p)
		}
	}
	return out
}
