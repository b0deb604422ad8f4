// Package views holds the server-rendered HTML templates.
package views

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"

	"github.com/spec-kit/applicant-tracker/internal/domain"
)

// Layout wraps every page.
const Layout = "layouts/main"

//go:embed templates
var templates embed.FS

// NewEngine builds the template engine over the embedded files.
func NewEngine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("stageLabel", func(s domain.Stage) string { return s.Label() })
	engine.AddFunc("date", func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02/01/2006 15:04")
	})
	engine.AddFunc("deref", func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	})
	return engine
}
