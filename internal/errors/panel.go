package errors

import (
	"html"
	"io"
	"strings"
)

const panelStyle = "background-color: #522; border-radius: 12px;" +
	"color: #D44; font-family: monospace; text-align: center;" +
	"max-width: 400px;" +
	"padding: 20px; margin: 32px auto;"

// DefaultPanelTitle is used when a panel is rendered without a title.
const DefaultPanelTitle = "An error occurred"

// Panel returns the error panel markup. The paragraph is omitted when
// message is empty. Title and message are HTML-escaped.
func Panel(title, message string) string {
	if title == "" {
		title = DefaultPanelTitle
	}

	var b strings.Builder
	b.WriteString(`<div style="`)
	b.WriteString(panelStyle)
	b.WriteString(`">`)
	b.WriteString("<h1>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</h1>")
	if message != "" {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(message))
		b.WriteString("</p>")
	}
	b.WriteString("</div>")
	return b.String()
}

// RenderPanel writes a complete HTML document whose body is the error panel.
func RenderPanel(w io.Writer, title, message string) error {
	_, err := io.WriteString(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>"+
		html.EscapeString(orDefault(title))+"</title></head><body>"+
		Panel(title, message)+"</body></html>\n")
	return err
}

func orDefault(title string) string {
	if title == "" {
		return DefaultPanelTitle
	}
	return title
}
