// common.go
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
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/portfolio-site/internal/forms"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/localnerve/portfolio-site/internal/utils"
	"github.com/sirupsen/logrus"
)

// opUpdateSettings is the only operation whose conflicts are version errors.
const opUpdateSettings = "update_settings"

// msgUnavailable replaces backend errors on public routes.
const msgUnavailable = "Content is temporarily unavailable."

// ErrorHandler renders every error that reaches Fiber as the JSON error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return utils.ErrorResponse(c, ce.Message, ce.Code, ce.Type)
	}

	var fe forms.Errors
	if errors.As(err, &fe) {
		return utils.ValidationErrorResponse(c, fieldErrors(fe))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code == fiber.StatusNotFound {
			return NotFound(c)
		}
		return utils.ErrorResponse(c, fiberErr.Message, fiberErr.Code, "http")
	}

	var te *types.Error
	if errors.As(err, &te) && te.Kind == types.KindConflict && te.Op == opUpdateSettings {
		return utils.VersionErrorResponse(c)
	}
	kind := types.KindOf(err)
	logrus.WithFields(logrus.Fields{
		"url":  c.OriginalURL(),
		"kind": kind,
	}).Warn(utils.SanitizeErr(err))
	return utils.ErrorResponse(c, utils.SanitizeErr(err), types.StatusFor(kind), string(kind))
}

// NotFound is the JSON 404 for unknown paths.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   "[404] Resource Not Found",
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// publicError hides backend failures from visitors. Not found and
// validation errors keep their status.
func publicError(c *fiber.Ctx, err error, message string) error {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return utils.NotFoundResponse(c, message)
	case errors.Is(err, types.ErrValidation):
		return err
	}
	logrus.WithField("url", c.OriginalURL()).Warn(utils.SanitizeErr(err))
	return utils.ErrorResponse(c, msgUnavailable, fiber.StatusServiceUnavailable, "unavailable")
}

func fieldErrors(fe forms.Errors) []utils.FieldError {
	out := make([]utils.FieldError, 0, len(fe))
	for _, f := range fe {
		out = append(out, utils.FieldError{Field: f.Field, Message: f.Message})
	}
	return out
}

// queryInt reads a non-negative integer query value, clamped to max.
func queryInt(c *fiber.Ctx, key string, def, max int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// paramUint reads a positive integer path parameter.
func paramUint(c *fiber.Ctx, key string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(key), 10, 32)
	if err != nil || n == 0 {
		return 0, forms.Errors{{Field: key, Message: "must be a positive integer"}}
	}
	return uint(n), nil
}
