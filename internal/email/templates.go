package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*.txt templates/*.html
var templateFiles embed.FS

// Template names. Each has a .txt and a .html body.
const (
	TemplateContactAdmin     = "contact_admin"
	TemplateContactUser      = "contact_user"
	TemplateAppointmentAdmin = "appointment_admin"
	TemplateAppointmentUser  = "appointment_user"
)

// Renderer renders the paired text and HTML bodies of a template.
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

func NewRenderer() (*Renderer, error) {
	text, err := texttemplate.ParseFS(templateFiles, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to parse text templates: %w", err)
	}
	html, err := htmltemplate.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse html templates: %w", err)
	}
	return &Renderer{text: text, html: html}, nil
}

// MustRenderer panics if the embedded templates fail to parse.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Render(name string, data interface{}) (text, html string, err error) {
	var tb, hb bytes.Buffer
	if err := r.text.ExecuteTemplate(&tb, name+".txt", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s.txt: %w", name, err)
	}
	if err := r.html.ExecuteTemplate(&hb, name+".html", data); err != nil {
		return "", "", fmt.Errorf("failed to render %s.html: %w", name, err)
	}
	return tb.String(), hb.String(), nil
}
