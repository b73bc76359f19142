package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/portfolio-site/internal/auth"
	"github.com/localnerve/portfolio-site/internal/middleware"
)

// Routes is everything the route table needs.
type Routes struct {
	Public  *PublicHandler
	Admin   *AdminHandler
	Tokens  *auth.Tokens
	Admins  middleware.AdminChecker
	Limiter *middleware.RateLimiter
	Health  fiber.Handler
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

// Register mounts the page, API and health routes on app. The JSON 404
// handler is added last.
func Register(app *fiber.App, r Routes) {
	limited := r.Limiter.Handler()
	session := middleware.Session(r.Tokens, r.SecureCookies)
	requireSession := middleware.RequireSession(r.Admin.Store)
	requireAdmin := middleware.RequireAdmin(r.Admins)

	if r.Health != nil {
		app.Get("/healthz", r.Health)
	}

	// Public page documents
	app.Get("/", r.Public.Home)
	app.Get("/about", r.Public.About)
	app.Get("/projects", r.Public.Projects)
	app.Get("/projects/:slug", r.Public.Project)
	app.Get("/writing", r.Public.Writing)
	app.Get("/resume", r.Public.Resume)
	app.Get("/contact", r.Public.Contact)
	app.Get("/admin", session, r.Admin.Page)

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	public := api.Group("/public")
	public.Get("/settings", r.Public.Settings)
	public.Get("/projects", r.Public.PublishedProjects)
	public.Get("/projects/:slug", r.Public.PublishedProject)
	public.Get("/writing", r.Public.WritingGroups)
	public.Post("/events", limited, r.Public.RecordEvent)

	adm := api.Group("/admin", session)
	adm.Get("/state", r.Admin.State)
	adm.Post("/session", limited, r.Admin.SignIn)
	adm.Delete("/session", r.Admin.SignOut)
	adm.Post("/claim", limited, requireSession, r.Admin.Claim)
	adm.Post("/bootstrap", limited, requireSession, r.Admin.Bootstrap)

	// Content management: a signed-in session and the stored admin id
	guard := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{requireSession, requireAdmin, h}
	}
	adm.Get("/settings", guard(r.Admin.GetSettings)...)
	adm.Put("/settings", guard(r.Admin.UpdateSettings)...)

	adm.Get("/projects", guard(r.Admin.ListProjects)...)
	adm.Post("/projects", guard(r.Admin.CreateProject)...)
	adm.Get("/projects/:id", guard(r.Admin.GetProject)...)
	adm.Put("/projects/:id", guard(r.Admin.UpdateProject)...)
	adm.Delete("/projects/:id", guard(r.Admin.DeleteProject)...)

	adm.Get("/writing/categories", guard(r.Admin.ListCategories)...)
	adm.Post("/writing/categories", guard(r.Admin.SaveCategory)...)
	adm.Put("/writing/categories/:id", guard(r.Admin.SaveCategory)...)
	adm.Delete("/writing/categories/:id", guard(r.Admin.DeleteCategory)...)

	adm.Get("/writing/items", guard(r.Admin.ListWritingItems)...)
	adm.Post("/writing/items", guard(r.Admin.SaveWritingItem)...)
	adm.Put("/writing/items/:id", guard(r.Admin.SaveWritingItem)...)
	adm.Delete("/writing/items/:id", guard(r.Admin.DeleteWritingItem)...)

	adm.Post("/seed", guard(r.Admin.Seed)...)
	adm.Get("/analytics", guard(r.Admin.Analytics)...)

	app.Use(NotFound)
}
