package presenter

import "github.com/wichananm65/football-storefront/internal/cart"

// CartPresenter shapes cart state for JSON responses.
type CartPresenter struct{}

func NewCartPresenter() *CartPresenter {
	return &CartPresenter{}
}

type CartItemResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
}

type CartResponse struct {
	Status string             `json:"status"`
	Count  int                `json:"count"`
	Total  string             `json:"total"`
	Items  []CartItemResponse `json:"items"`
}

func (p *CartPresenter) ToResponse(s cart.State) *CartResponse {
	items := make([]CartItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, CartItemResponse{
			ID:       it.ID,
			Name:     it.Name,
			Slug:     it.Slug,
			Price:    it.Price.StringFixed(2),
			Quantity: it.Quantity,
			Total:    it.Total.StringFixed(2),
		})
	}
	return &CartResponse{
		Status: s.Status.String(),
		Count:  s.Count,
		Total:  s.Total.StringFixed(2),
		Items:  items,
	}
}
