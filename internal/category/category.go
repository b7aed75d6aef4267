package category

// Category is a product category as served by `/api/v1/category/`.
// Products reference it through their `category` id.
type Category struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
}
