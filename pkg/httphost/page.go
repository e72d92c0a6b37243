package httphost

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/vango-dev/localeroute/pkg/router"
	"github.com/vango-dev/localeroute/pkg/views"
)

// Page is a view module served by the HTTP host.
type Page interface {
	// Render writes the page body.
	Render(w io.Writer, data PageData) error
}

// PageData is what a page sees when it renders.
type PageData struct {
	Lang       string
	Route      string
	Props      map[string]any
	Params     router.Params
	Alternates []router.Alternate
}

// PageFunc adapts a function to Page.
type PageFunc func(w io.Writer, data PageData) error

// Render calls f.
func (f PageFunc) Render(w io.Writer, data PageData) error {
	return f(w, data)
}

// TemplatePage renders an html/template body.
type TemplatePage struct {
	tmpl *template.Template
}

// Render executes the template with data.
func (p *TemplatePage) Render(w io.Writer, data PageData) error {
	return p.tmpl.Execute(w, data)
}

// DecodeTemplate parses a view file as an html/template. It is the decoder
// handed to views.FSRegistry and s3source.Registry.
func DecodeTemplate(name string, data []byte) (Page, error) {
	tmpl, err := template.New(name).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse view %s: %w", name, err)
	}
	return &TemplatePage{tmpl: tmpl}, nil
}

var _ views.DecodeFunc[Page] = DecodeTemplate

var shell = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- range .Alternates}}
<link rel="alternate" hreflang="{{.Lang}}" href="{{.Href}}">
{{- end}}
<script id="localeroute-data" type="application/json">{{.Data}}</script>
</head>
<body>
{{.Body}}
</body>
</html>
`))

type shellData struct {
	Lang       string
	Title      string
	Alternates []router.Alternate
	Data       map[string]any
	Body       template.HTML
}

// renderPage renders view into the HTML document shell.
func renderPage(w io.Writer, view router.View[Page], data PageData) error {
	var body bytes.Buffer
	if err := view.Module.Render(&body, data); err != nil {
		return err
	}

	return shell.Execute(w, shellData{
		Lang:       data.Lang,
		Title:      pageTitle(data),
		Alternates: data.Alternates,
		Data: map[string]any{
			"lang":   data.Lang,
			"route":  data.Route,
			"props":  data.Props,
			"params": data.Params,
		},
		Body: template.HTML(body.String()),
	})
}

func pageTitle(data PageData) string {
	if title, ok := data.Props["title"].(string); ok && title != "" {
		return title
	}
	if data.Route == "" {
		return "localeroute"
	}
	parts := strings.Split(data.Route, ".")
	return parts[len(parts)-1]
}
