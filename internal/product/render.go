package product

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"
)

// EmptyMessage is shown in place of the grid when no product qualifies.
const EmptyMessage = "No products found"

var funcs = template.FuncMap{
	"price": FormatPrice,
}

var gridTmpl = template.Must(template.New("products").Funcs(funcs).Parse(`<div class="products">
{{- range .}}
<div class="product-card">
  <a href="/product/{{.Slug}}"><img src="{{.ImageURL}}" alt="{{.Name}}"></a>
  <h3>{{.Name}}</h3>
  <p class="price">{{price .Price}}</p>
  <form method="post" action="/cart/add/{{.Slug}}">
    <input type="hidden" name="quantity" value="1">
    <button type="submit">Add to cart</button>
  </form>
</div>
{{- end}}
</div>`))

var detailTmpl = template.Must(template.New("product").Funcs(funcs).Parse(`<article class="product-detail">
  <img src="{{.ImageURL}}" alt="{{.Name}}">
  <h1>{{.Name}}</h1>
  <p class="price">{{price .Price}}</p>
  {{- if .Description}}
  <p class="description">{{.Description}}</p>
  {{- end}}
  <form method="post" action="/cart/add/{{.Slug}}">
    <input type="number" name="quantity" value="1" min="1">
    <button type="submit">Add to cart</button>
  </form>
</article>`))

var messageTmpl = template.Must(template.New("message").Parse(`<p class="products-message">{{.}}</p>`))

// FormatPrice renders an amount with two decimals and the currency sign.
func FormatPrice(d decimal.Decimal) string {
	return d.StringFixed(2) + " ₽"
}

// RenderProducts renders one card per product, or the empty message.
func RenderProducts(products []Product) template.HTML {
	if len(products) == 0 {
		return execute(messageTmpl, EmptyMessage)
	}
	return execute(gridTmpl, products)
}

func RenderProduct(p Product) template.HTML {
	return execute(detailTmpl, p)
}

func RenderLoadFailed() template.HTML {
	return execute(messageTmpl, LoadFailedMessage)
}

func execute(t *template.Template, data any) template.HTML {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
