// admin.go
//
// Personal portfolio site service: public content pages and a single-admin content API
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of portfolio-site.
// portfolio-site is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// portfolio-site is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with portfolio-site.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/portfolio-site/internal/admin"
	"github.com/localnerve/portfolio-site/internal/auth"
	"github.com/localnerve/portfolio-site/internal/forms"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/middleware"
	"github.com/localnerve/portfolio-site/internal/services"
	"github.com/localnerve/portfolio-site/internal/utils"
)

// awaitTimeout bounds how long a request waits for a pending identity check.
const awaitTimeout = 5 * time.Second

// AdminHandler serves the admin state machine and the content API.
type AdminHandler struct {
	Gates   *admin.Registry
	Store   *auth.Store
	Content *services.ContentService
	Forms   *forms.Validator
}

// StateResponse is the admin state plus the outcome of a proposal, if any.
type StateResponse struct {
	State  admin.View             `json:"state"`
	Result *gateway.ActionResult `json:"result,omitempty"`
}

func (h *AdminHandler) gate(c *fiber.Ctx) *admin.Gate {
	return h.Gates.Get(c.UserContext(), middleware.SessionID(c))
}

// enter is gate with diagnostics rerun, for requests that load the admin area.
func (h *AdminHandler) enter(c *fiber.Ctx) *admin.Gate {
	return h.Gates.Enter(c.UserContext(), middleware.SessionID(c))
}

func awaitView(c *fiber.Ctx, g *admin.Gate) admin.View {
	ctx, cancel := context.WithTimeout(c.UserContext(), awaitTimeout)
	defer cancel()
	return g.Await(ctx)
}

// Page handles GET /admin
// @Summary Admin page document
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin [get]
func (h *AdminHandler) Page(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":  "admin",
		"state": awaitView(c, h.enter(c)),
	})
}

// State handles GET /api/admin/state
// @Summary Admin gate state
// @Tags Admin
// @Produce json
// @Success 200 {object} StateResponse
// @Router /api/admin/state [get]
func (h *AdminHandler) State(c *fiber.Ctx) error {
	return c.JSON(StateResponse{State: awaitView(c, h.enter(c))})
}

// SignIn handles POST /api/admin/session
// @Summary Sign in
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body object true "email and password"
// @Success 200 {object} StateResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Router /api/admin/session [post]
func (h *AdminHandler) SignIn(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := h.Forms.Decode(forms.SignIn, c.Body(), &body); err != nil {
		return err
	}

	g := h.gate(c)
	if _, err := h.Store.SignIn(c.UserContext(), middleware.SessionID(c), body.Email, body.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "admin.authentication")
		}
		return utils.ErrorResponse(c, utils.SanitizeErr(err), fiber.StatusBadGateway, "admin.authentication")
	}
	return c.JSON(StateResponse{State: awaitView(c, g)})
}

// SignOut handles DELETE /api/admin/session
// @Summary Sign out
// @Tags Admin
// @Produce json
// @Success 200 {object} StateResponse
// @Router /api/admin/session [delete]
func (h *AdminHandler) SignOut(c *fiber.Ctx) error {
	g := h.gate(c)
	if err := h.Store.SignOut(c.UserContext(), middleware.SessionID(c)); err != nil {
		return err
	}
	return c.JSON(StateResponse{State: awaitView(c, g)})
}

// Claim handles POST /api/admin/claim
// @Summary Claim the admin role on an unclaimed site
// @Tags Admin
// @Produce json
// @Success 200 {object} StateResponse
// @Failure 429 {object} utils.ErrorResponseStruct
// @Router /api/admin/claim [post]
func (h *AdminHandler) Claim(c *fiber.Ctx) error {
	res, view := h.gate(c).Claim(c.UserContext())
	return c.JSON(StateResponse{State: view, Result: &res})
}

// Bootstrap handles POST /api/admin/bootstrap
// @Summary Claim the admin role with the bootstrap token
// @Tags Admin
// @Accept json
// @Produce json
// @Param body body object true "token"
// @Success 200 {object} StateResponse
// @Failure 422 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Router /api/admin/bootstrap [post]
func (h *AdminHandler) Bootstrap(c *fiber.Ctx) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := h.Forms.Decode(forms.Bootstrap, c.Body(), &body); err != nil {
		return err
	}
	res, view := h.gate(c).Bootstrap(c.UserContext(), body.Token)
	return c.JSON(StateResponse{State: view, Result: &res})
}

// GetSettings handles GET /api/admin/settings
// @Summary Admin settings
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Success 200 {object} services.AdminSettings
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /api/admin/settings [get]
func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.Content.AdminSettings(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(settings)
}

// UpdateSettings handles PUT /api/admin/settings
// @Summary Update settings groups
// @Description Absent groups are unchanged; a stale version is a 409
// @Tags Admin
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body services.SettingsInput true "Settings"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Router /api/admin/settings [put]
func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	var in services.SettingsInput
	if err := h.Forms.Decode(forms.Settings, c.Body(), &in); err != nil {
		return err
	}
	settings, err := h.Content.UpdateSettings(c.UserContext(), in)
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, settings)
}

// ListProjects handles GET /api/admin/projects
// @Summary All projects
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Success 200 {array} services.Project
// @Router /api/admin/projects [get]
func (h *AdminHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.Content.AdminProjects(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(projects)
}

// GetProject handles GET /api/admin/projects/:id
// @Summary One project
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Param id path string true "Project id"
// @Success 200 {object} services.Project
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/admin/projects/{id} [get]
func (h *AdminHandler) GetProject(c *fiber.Ctx) error {
	p, err := h.Content.AdminProject(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// CreateProject handles POST /api/admin/projects
// @Summary Create a project
// @Tags Admin
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body services.ProjectInput true "Project"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Router /api/admin/projects [post]
func (h *AdminHandler) CreateProject(c *fiber.Ctx) error {
	var in services.ProjectInput
	if err := h.Forms.Decode(forms.Project, c.Body(), &in); err != nil {
		return err
	}
	in.ID = ""
	return h.saveProject(c, in)
}

// UpdateProject handles PUT /api/admin/projects/:id
// @Summary Update a project
// @Tags Admin
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param id path string true "Project id"
// @Param body body services.ProjectInput true "Project"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Router /api/admin/projects/{id} [put]
func (h *AdminHandler) UpdateProject(c *fiber.Ctx) error {
	var in services.ProjectInput
	if err := h.Forms.Decode(forms.Project, c.Body(), &in); err != nil {
		return err
	}
	in.ID = c.Params("id")
	return h.saveProject(c, in)
}

func (h *AdminHandler) saveProject(c *fiber.Ctx, in services.ProjectInput) error {
	p, err := h.Content.SaveProject(c.UserContext(), in)
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, p)
}

// DeleteProject handles DELETE /api/admin/projects/:id
// @Summary Delete a project
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Param id path string true "Project id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /api/admin/projects/{id} [delete]
func (h *AdminHandler) DeleteProject(c *fiber.Ctx) error {
	if err := h.Content.DeleteProject(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, nil)
}

// ListCategories handles GET /api/admin/writing/categories
// @Summary All writing categories
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Success 200 {array} services.Category
// @Router /api/admin/writing/categories [get]
func (h *AdminHandler) ListCategories(c *fiber.Ctx) error {
	cats, err := h.Content.AdminCategories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(cats)
}

// SaveCategory handles POST /api/admin/writing/categories and
// PUT /api/admin/writing/categories/:id
// @Summary Create or update a writing category
// @Tags Admin
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body services.CategoryInput true "Category"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Router /api/admin/writing/categories [post]
func (h *AdminHandler) SaveCategory(c *fiber.Ctx) error {
	var in services.CategoryInput
	if err := h.Forms.Decode(forms.Category, c.Body(), &in); err != nil {
		return err
	}
	in.ID = 0
	if c.Params("id") != "" {
		id, err := paramUint(c, "id")
		if err != nil {
			return err
		}
		in.ID = id
	}
	cat, err := h.Content.SaveCategory(c.UserContext(), in)
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, cat)
}

// DeleteCategory handles DELETE /api/admin/writing/categories/:id
// @Summary Delete a writing category
// @Description Items in the category become uncategorised
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Param id path int true "Category id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /api/admin/writing/categories/{id} [delete]
func (h *AdminHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	if err := h.Content.DeleteCategory(c.UserContext(), id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, nil)
}

// ListWritingItems handles GET /api/admin/writing/items
// @Summary All writing items
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Success 200 {array} services.WritingItem
// @Router /api/admin/writing/items [get]
func (h *AdminHandler) ListWritingItems(c *fiber.Ctx) error {
	items, err := h.Content.AdminWritingItems(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// SaveWritingItem handles POST /api/admin/writing/items and
// PUT /api/admin/writing/items/:id
// @Summary Create or update a writing item
// @Tags Admin
// @Accept json
// @Produce json
// @Security CookieAuth
// @Param body body services.WritingItemInput true "Writing item"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 422 {object} utils.ErrorResponseStruct
// @Router /api/admin/writing/items [post]
func (h *AdminHandler) SaveWritingItem(c *fiber.Ctx) error {
	var in services.WritingItemInput
	if err := h.Forms.Decode(forms.WritingItem, c.Body(), &in); err != nil {
		return err
	}
	in.ID = 0
	if c.Params("id") != "" {
		id, err := paramUint(c, "id")
		if err != nil {
			return err
		}
		in.ID = id
	}
	item, err := h.Content.SaveWritingItem(c.UserContext(), in)
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, item)
}

// DeleteWritingItem handles DELETE /api/admin/writing/items/:id
// @Summary Delete a writing item
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Param id path int true "Writing item id"
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /api/admin/writing/items/{id} [delete]
func (h *AdminHandler) DeleteWritingItem(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	if err := h.Content.DeleteWritingItem(c.UserContext(), id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, nil)
}

// Seed handles POST /api/admin/seed
// @Summary Insert the demo content
// @Description Idempotent; existing slugs, category names and item URLs are skipped
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /api/admin/seed [post]
func (h *AdminHandler) Seed(c *fiber.Ctx) error {
	counts, err := h.Content.SeedDemo(c.UserContext())
	if err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, counts)
}

// Analytics handles GET /api/admin/analytics?days=
// @Summary Analytics summary
// @Tags Admin
// @Produce json
// @Security CookieAuth
// @Param days query int false "Window in days (1-365, default 30)"
// @Success 200 {object} gateway.AnalyticsSummary
// @Router /api/admin/analytics [get]
func (h *AdminHandler) Analytics(c *fiber.Ctx) error {
	summary, err := h.Content.AnalyticsSummary(c.UserContext(), queryInt(c, "days", 0, 0))
	if err != nil {
		return err
	}
	return c.JSON(summary)
}
