package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"agroMarket/domain"
	"agroMarket/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Page wraps handler data with what the layout needs on every request.
type Page struct {
	Name    string
	AppName string
	Session *domain.Session
	Flashes []domain.Flash
	Data    any
}

// Renderer implements echo.Renderer over the embedded page templates.
// Each page is parsed together with the shared layout.
type Renderer struct {
	appName string
	pages   map[string]*template.Template
}

func NewRenderer(appName string) (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	r := &Renderer{appName: appName, pages: make(map[string]*template.Template)}
	for _, file := range files {
		if file == layoutFile {
			continue
		}

		name := strings.TrimSuffix(path.Base(file), ".html")
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	page := Page{
		Name:    name,
		AppName: r.appName,
		Session: middleware.CurrentSession(c),
		Flashes: middleware.PopFlashes(c),
		Data:    data,
	}

	return tmpl.ExecuteTemplate(w, "layout", page)
}

var funcs = template.FuncMap{
	"money": func(v any) string {
		switch d := v.(type) {
		case decimal.Decimal:
			return d.StringFixed(2)
		case *decimal.Decimal:
			if d == nil {
				return "-"
			}
			return d.StringFixed(2)
		case decimal.NullDecimal:
			if !d.Valid {
				return "-"
			}
			return d.Decimal.StringFixed(2)
		}
		return fmt.Sprint(v)
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"orRemoved": func(s string) string {
		if s == "" {
			return "(removed)"
		}
		return s
	},
	"isRole": func(s *domain.Session, role string) bool {
		return s.Is(domain.Role(role))
	},
}
