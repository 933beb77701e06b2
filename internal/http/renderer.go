package http

import (
	"embed"
	"html/template"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

// templateFuncs are the helpers every page template may call.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"categories": func() []entities.BookCategory {
			return entities.BookCategories
		},
	}
}

// LoadTemplates parses the page templates from dir, or the embedded set
// when dir is empty.
func LoadTemplates(dir string) (*template.Template, error) {
	tmpl := template.New("").Funcs(templateFuncs())
	if dir != "" {
		return tmpl.ParseGlob(filepath.Join(dir, "*.html"))
	}
	return tmpl.ParseFS(templateFS, "templates/*.html")
}

// PageRenderer renders HTML pages with the data the layout needs: the
// current user, pending flash messages and the CSRF field.
type PageRenderer struct {
	sessions *auth.SessionManager
}

func NewPageRenderer(sessions *auth.SessionManager) *PageRenderer {
	return &PageRenderer{sessions: sessions}
}

func (r *PageRenderer) Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = auth.GetUser(c)
	data["CSRFField"] = auth.CSRFTokenField(c)
	if r.sessions != nil {
		data["Flashes"] = r.sessions.PopFlashes(c.Request)
	}
	c.HTML(status, name, data)
}

// renderError draws the generic error page.
func (r *PageRenderer) renderError(c *gin.Context, status int, detail string) {
	r.Render(c, status, "error.html", gin.H{
		"Title": "Error",
		"Error": detail,
	})
}
