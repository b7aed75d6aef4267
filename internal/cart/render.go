package cart

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"
)

const EmptyMessage = "Your cart is empty"

var funcs = template.FuncMap{
	"price": func(d decimal.Decimal) string { return d.StringFixed(2) + " ₽" },
}

var cartTmpl = template.Must(template.New("cart").Funcs(funcs).Parse(`<section class="cart">
{{- if .Items}}
<table class="cart-items">
  <thead><tr><th>Product</th><th>Price</th><th>Quantity</th><th>Total</th><th></th></tr></thead>
  <tbody>
  {{- range .Items}}
  <tr class="cart-item" data-id="{{.ID}}">
    <td><a href="/product/{{.Slug}}">{{.Name}}</a></td>
    <td>{{price .Price}}</td>
    <td class="quantity">
      <form method="post" action="/cart/item/{{.ID}}/update">
        <input type="number" name="quantity" min="1" value="{{.Quantity}}">
        <button type="submit">Update</button>
      </form>
    </td>
    <td class="total">{{price .Total}}</td>
    <td><form method="post" action="/cart/item/{{.ID}}/delete"><button type="submit">Remove</button></form></td>
  </tr>
  {{- end}}
  </tbody>
</table>
<p class="cart-summary">Items: <span class="cart-count">{{.Count}}</span>, total: <span class="cart-total">{{price .Total}}</span></p>
<form method="post" action="/cart/clear"><button type="submit">Clear cart</button></form>
{{- else}}
<p class="cart-empty">` + EmptyMessage + `</p>
{{- end}}
</section>`))

// RenderCart renders the items and aggregates of s.
func RenderCart(s State) template.HTML {
	var buf bytes.Buffer
	if err := cartTmpl.Execute(&buf, s); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
