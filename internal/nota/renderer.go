package nota

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"time"
)

// Renderer builds the receipt HTML handed to Gotenberg. The nota template
// is self-contained and does not share the site layout.
type Renderer struct {
	tpl *template.Template
}

// NewRenderer parses the embedded nota template.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("02-01-2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("02-01-2006 15:04")
		},
	}
	tpl, err := template.New("nota_pdf.html").Funcs(funcMap).ParseFS(fsys, "templates/reports/nota_pdf.html")
	if err != nil {
		return nil, fmt.Errorf("nota: parse template: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Render produces the full HTML document for one payload.
func (r *Renderer) Render(payload Payload) (string, error) {
	buf := &bytes.Buffer{}
	if err := r.tpl.ExecuteTemplate(buf, "nota_pdf.html", payload); err != nil {
		return "", fmt.Errorf("nota: render: %w", err)
	}
	return buf.String(), nil
}
