// Package view renders HTML pages from the embedded template tree.
package view

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/cassia-erp/cassia-erp/internal/shared"
)

// TemplateData is the envelope passed to every page template.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	Data        any
}

// Engine parses and renders the embedded templates. Each page is parsed
// together with the layout and partials so blocks resolve per page.
type Engine struct {
	pages map[string]*template.Template
}

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// asTime accepts both time.Time and *time.Time so templates can pass
// optional timestamps directly.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	}
	return time.Time{}, false
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(v any) string {
			t, ok := asTime(v)
			if !ok {
				return "-"
			}
			return t.Format("02-01-2006")
		},
		"formatDateTime": func(v any) string {
			t, ok := asTime(v)
			if !ok {
				return "-"
			}
			return t.Format("02-01-2006 15:04")
		},
		"formatRupiah": func(v float64) string {
			return "Rp " + rupiahPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
		},
		"deref": func(v *float64) float64 {
			if v == nil {
				return 0
			}
			return *v
		},
		"hasPrefix": strings.HasPrefix,
	}
}

// NewEngine parses every page under templates/pages against the layout.
func NewEngine(fsys fs.FS) (*Engine, error) {
	pagePaths, err := fs.Glob(fsys, "templates/pages/*/*.html")
	if err != nil {
		return nil, fmt.Errorf("view: glob pages: %w", err)
	}

	engine := &Engine{pages: make(map[string]*template.Template, len(pagePaths))}
	for _, path := range pagePaths {
		t, err := template.New("layout.html").Funcs(funcMap()).ParseFS(fsys,
			"templates/layout.html",
			"templates/partials/*.html",
			path,
		)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", path, err)
		}
		name := strings.TrimPrefix(path, "templates/")
		engine.pages[name] = t
	}
	return engine, nil
}

// Render writes one page. The page name matches its path under templates/,
// e.g. "pages/ledger/index.html".
func (e *Engine) Render(w io.Writer, page string, data TemplateData) error {
	t, ok := e.pages[page]
	if !ok {
		return fmt.Errorf("view: unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}
