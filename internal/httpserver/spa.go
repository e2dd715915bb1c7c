package httpserver

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/modern_shop/pkg/logging"
)

const indexTemplate = "index.html"

type TemplateRenderer struct {
	templates *template.Template
}

func NewTemplateRenderer(dir string) (*TemplateRenderer, error) {
	t, err := template.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("parse templates in %s: %w", dir, err)
	}
	return &TemplateRenderer{templates: t}, nil
}

func (r *TemplateRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type SPA struct {
	StaticDir string
}

func (s *SPA) Fallback(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "spa.fallback")

	rel := strings.Trim(c.Param("*"), "/")
	if strings.HasPrefix(rel, "api") {
		return echo.ErrNotFound
	}

	if rel != "" {
		if file, ok := s.resolve(rel); ok {
			return c.File(file)
		}
	}

	if c.Echo().Renderer == nil {
		l.Warn("spa_error", "status", 404, "reason", "no templates loaded")
		return echo.ErrNotFound
	}
	return c.Render(http.StatusOK, indexTemplate, echo.Map{"Path": "/" + rel})
}

// resolve maps a request path onto a regular file under StaticDir and refuses
// anything that would escape it.
func (s *SPA) resolve(rel string) (string, bool) {
	root, err := filepath.Abs(s.StaticDir)
	if err != nil {
		return "", false
	}
	full := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+rel)))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", false
	}

	fi, err := os.Stat(full)
	if err != nil {
		return "", false
	}
	return full, fi.Mode().IsRegular()
}
