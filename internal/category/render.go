package category

import (
	"bytes"
	"html/template"
)

var listTmpl = template.Must(template.New("categories").Parse(
	`<nav class="categories">{{range .}}<a class="category" href="/category/{{.ID}}">{{.Title}}</a>{{end}}</nav>`))

var unavailableTmpl = template.Must(template.New("unavailable").Parse(
	`<p class="categories-unavailable">{{.}}</p>`))

// RenderCategories renders one filter link per category.
func RenderCategories(items []Category) template.HTML {
	return execute(listTmpl, items)
}

func RenderUnavailable() template.HTML {
	return execute(unavailableTmpl, UnavailablePlaceholder)
}

func execute(t *template.Template, data any) template.HTML {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
