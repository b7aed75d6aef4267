package page

import (
	"bytes"
	"html/template"

	"github.com/gofiber/fiber/v2"
)

// Controls decides which of the login and logout controls are visible.
type Controls struct {
	ShowLogin  bool
	ShowLogout bool
}

// Layout is everything the page chrome needs around a body.
type Layout struct {
	Title      string
	Controls   Controls
	Notice     string
	Categories template.HTML
	Body       template.HTML
	CartCount  int
}

var layoutTmpl = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{if .Title}}{{.Title}} | {{end}}Football Store</title>
  <link rel="stylesheet" href="/static/style.css">
</head>
<body>
<header>
  <a class="brand" href="/">Football Store</a>
  <a class="cart-link" href="/cart">Cart{{if .CartCount}} ({{.CartCount}}){{end}}</a>
  <a id="login-link" href="/login"{{if not .Controls.ShowLogin}} hidden{{end}}>Log in</a>
  <form id="logout-form" method="post" action="/logout"{{if not .Controls.ShowLogout}} hidden{{end}}>
    <button type="submit">Log out</button>
  </form>
</header>
{{- if .Notice}}
<div class="notice" role="alert">{{.Notice}}</div>
{{- end}}
{{- if .Categories}}
{{.Categories}}
{{- end}}
<main>
{{.Body}}
</main>
</body>
</html>`))

// Render writes l as a complete HTML document.
func Render(c *fiber.Ctx, l Layout) error {
	var buf bytes.Buffer
	if err := layoutTmpl.Execute(&buf, l); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
