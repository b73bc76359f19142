package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/portfolio-site/internal/forms"
	"github.com/localnerve/portfolio-site/internal/services"
	"github.com/localnerve/portfolio-site/internal/utils"
)

// maxPublicLimit caps the limit query on public lists.
const maxPublicLimit = 100

// PublicHandler serves the public pages and the public content API.
type PublicHandler struct {
	Content *services.ContentService
	Forms   *forms.Validator
}

// Home handles GET /
// @Summary Home page document
// @Tags Pages
// @Produce json
// @Success 200 {object} services.Page
// @Router / [get]
func (h *PublicHandler) Home(c *fiber.Ctx) error {
	return c.JSON(h.Content.HomePage(c.UserContext()))
}

// About handles GET /about
// @Summary About page document
// @Tags Pages
// @Produce json
// @Success 200 {object} services.Page
// @Router /about [get]
func (h *PublicHandler) About(c *fiber.Ctx) error {
	return c.JSON(h.Content.AboutPage(c.UserContext()))
}

// Projects handles GET /projects?tag=
// @Summary Projects page document
// @Tags Pages
// @Produce json
// @Param tag query string false "Tag filter"
// @Success 200 {object} services.Page
// @Router /projects [get]
func (h *PublicHandler) Projects(c *fiber.Ctx) error {
	return c.JSON(h.Content.ProjectsPage(c.UserContext(), c.Query("tag")))
}

// Project handles GET /projects/:slug
// @Summary Project page document
// @Tags Pages
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} services.Page
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /projects/{slug} [get]
func (h *PublicHandler) Project(c *fiber.Ctx) error {
	page, err := h.Content.ProjectPage(c.UserContext(), c.Params("slug"))
	if err != nil {
		return publicError(c, err, "Project not found")
	}
	return c.JSON(page)
}

// Writing handles GET /writing
// @Summary Writing page document
// @Tags Pages
// @Produce json
// @Success 200 {object} services.Page
// @Router /writing [get]
func (h *PublicHandler) Writing(c *fiber.Ctx) error {
	return c.JSON(h.Content.WritingPage(c.UserContext()))
}

// Resume handles GET /resume
// @Summary Resume page document
// @Tags Pages
// @Produce json
// @Success 200 {object} services.Page
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /resume [get]
func (h *PublicHandler) Resume(c *fiber.Ctx) error {
	page, err := h.Content.ResumePage(c.UserContext())
	if err != nil {
		return publicError(c, err, "Page not found")
	}
	return c.JSON(page)
}

// Contact handles GET /contact
// @Summary Contact page document
// @Tags Pages
// @Produce json
// @Success 200 {object} services.Page
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /contact [get]
func (h *PublicHandler) Contact(c *fiber.Ctx) error {
	page, err := h.Content.ContactPage(c.UserContext())
	if err != nil {
		return publicError(c, err, "Page not found")
	}
	return c.JSON(page)
}

// Settings handles GET /api/public/settings
// @Summary Public site settings
// @Description Validated settings; defaults when the backend is unavailable
// @Tags Public
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/public/settings [get]
func (h *PublicHandler) Settings(c *fiber.Ctx) error {
	settings, degraded := h.Content.PublicSettings(c.UserContext())
	return c.JSON(fiber.Map{
		"settings": settings,
		"degraded": degraded,
	})
}

// PublishedProjects handles GET /api/public/projects?limit&tag
// @Summary Published project cards
// @Tags Public
// @Produce json
// @Param limit query int false "Maximum number of projects"
// @Param tag query string false "Tag filter"
// @Success 200 {object} map[string]interface{}
// @Router /api/public/projects [get]
func (h *PublicHandler) PublishedProjects(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 0, maxPublicLimit)
	cards, degraded := h.Content.PublishedProjects(c.UserContext(), limit, c.Query("tag"))
	return c.JSON(fiber.Map{
		"projects": cards,
		"degraded": degraded,
	})
}

// PublishedProject handles GET /api/public/projects/:slug
// @Summary Published project view
// @Tags Public
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} services.ProjectView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /api/public/projects/{slug} [get]
func (h *PublicHandler) PublishedProject(c *fiber.Ctx) error {
	view, err := h.Content.PublishedProject(c.UserContext(), c.Params("slug"))
	if err != nil {
		return publicError(c, err, "Project not found")
	}
	return c.JSON(view)
}

// WritingGroups handles GET /api/public/writing
// @Summary Writing items grouped by category
// @Tags Public
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/public/writing [get]
func (h *PublicHandler) WritingGroups(c *fiber.Ctx) error {
	groups, degraded := h.Content.Writing(c.UserContext())
	return c.JSON(fiber.Map{
		"groups":   groups,
		"degraded": degraded,
	})
}

// RecordEvent handles POST /api/public/events
// @Summary Record an analytics event
// @Tags Public
// @Accept json
// @Produce json
// @Param body body services.EventInput true "Event"
// @Success 202 {object} map[string]interface{}
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Router /api/public/events [post]
func (h *PublicHandler) RecordEvent(c *fiber.Ctx) error {
	var in services.EventInput
	if err := h.Forms.Decode(forms.Event, c.Body(), &in); err != nil {
		return err
	}
	sid, err := h.Content.RecordEvent(c.UserContext(), in)
	if err != nil {
		return publicError(c, err, "")
	}
	return utils.SuccessResponse(c, fiber.Map{"ok": true, "sessionId": sid}, fiber.StatusAccepted)
}
