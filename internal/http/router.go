package http

import (
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/access"
	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/auth"
)

// hstsMaxAge is sent when cookies are marked secure (one year).
const hstsMaxAge = 31536000

// handleBoth registers path and its form without the trailing slash.
func handleBoth(r gin.IRoutes, method, path string, handlers ...gin.HandlerFunc) {
	r.Handle(method, path, handlers...)
	if trimmed := strings.TrimSuffix(path, "/"); trimmed != path && trimmed != "" {
		r.Handle(method, trimmed, handlers...)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", audit.RequestIDHeader},
		ExposeHeaders: []string{audit.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// NewRouter creates and configures the HTTP router with all endpoints.
// Pages use session authentication and CSRF protection; everything under
// /rest uses token authentication.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(audit.RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(hstsMaxAge))
	}

	// Sessions load for every request so that flashes and the 404 page
	// work outside the page group too
	router.Use(cfg.SessionManager.SessionLoadSave())

	router.SetHTMLTemplate(template.Must(LoadTemplates(cfg.TemplatesPath)))
	renderer := NewPageRenderer(cfg.SessionManager)

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	// --- HTML pages ---

	pages := router.Group("/")
	if len(cfg.CSRFSecret) > 0 {
		pages.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	pages.Use(auth.LoadPrincipal(auth.NewSessionAuthenticator(cfg.SessionManager, cfg.AuthService)))

	var auditLog auth.AuditLogger
	if cfg.Auditor != nil {
		auditLog = cfg.Auditor
	}
	authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.Validator, renderer, auditLog)
	authController.RegisterRoutes(pages)

	booksUI := NewBooksUIController(cfg.Books, cfg.Checker, cfg.Validator, renderer, cfg.SessionManager, cfg.Auditor, cfg.PageSize)
	booksUI.RegisterRoutes(pages.Group("/", auth.RequireLogin()))

	// --- REST API ---

	tokenAuth := auth.LoadPrincipal(auth.NewTokenAuthenticator(cfg.AuthService))
	restCORS := corsMiddleware(cfg.CORSOrigins)
	usersAPI := NewUsersAPIController(cfg.AuthService, cfg.Permissions, cfg.Validator, cfg.Auditor)
	booksAPI := NewBooksAPIController(cfg.Books, cfg.Validator, cfg.Auditor, cfg.PageSize)

	// Token login lives outside /rest
	handleBoth(router, http.MethodPost, "/restUserLogin/", restCORS, usersAPI.Login)
	handleBoth(router, http.MethodOptions, "/restUserLogin/", restCORS)

	rest := router.Group("/rest", restCORS, tokenAuth)
	rest.OPTIONS("/*path") // preflight, answered by the CORS middleware
	handleBoth(rest, http.MethodPost, "/register/", usersAPI.Register)

	authed := rest.Group("", auth.RequireAPIAuth())
	handleBoth(authed, http.MethodDelete, "/userLogout/", usersAPI.Logout)
	handleBoth(authed, http.MethodGet, "/user/me/", usersAPI.Me)
	handleBoth(authed, http.MethodPost, "/user/password/", usersAPI.ChangePassword)

	bookRoutes := authed.Group("", RequirePermission(cfg.Checker, access.ResourceBook))
	handleBoth(bookRoutes, http.MethodGet, "/book/", booksAPI.List)
	handleBoth(bookRoutes, http.MethodPost, "/book/", booksAPI.Create)
	handleBoth(bookRoutes, http.MethodGet, "/book/:lookup/", booksAPI.Retrieve)
	handleBoth(bookRoutes, http.MethodPut, "/book/:lookup/", booksAPI.Update)
	handleBoth(bookRoutes, http.MethodPatch, "/book/:lookup/", booksAPI.PartialUpdate)
	handleBoth(bookRoutes, http.MethodDelete, "/book/:lookup/", booksAPI.Destroy)

	router.NoRoute(NotFoundHandler(renderer))

	return router
}
