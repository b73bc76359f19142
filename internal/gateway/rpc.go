// rpc.go
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

package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/hints"
)

// ActionResult is the outcome of a claim or bootstrap proposal. A refused
// proposal is not an error.
type ActionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BootstrapStatus describes the claim state of the site.
type BootstrapStatus struct {
	Bootstrapped    bool `json:"bootstrapped"`
	TokenConfigured bool `json:"tokenConfigured"`
}

// Refusal messages.
const (
	msgAlreadyClaimed = "this site already has an administrator"
	msgTokenRequired  = "a bootstrap token is required to claim this site"
	msgNoToken        = "no bootstrap token is configured"
	msgBadToken       = "invalid bootstrap token"
	msgNoUser         = "a signed-in user is required"
)

// MaxBootstrapTokenLength is the bcrypt input limit.
const MaxBootstrapTokenLength = 72

// HashBootstrapToken returns the bcrypt hash stored for a bootstrap token.
func HashBootstrapToken(token string) (string, error) {
	if token == "" || len(token) > MaxBootstrapTokenLength {
		return "", types.NewError(types.KindValidation, "hash_bootstrap_token",
			"bootstrap token must be 1 to 72 bytes", nil)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", types.NewError(types.KindBackend, "hash_bootstrap_token", err.Error(), err)
	}
	return string(b), nil
}

// IsAdmin reports whether userID is the stored admin identity.
func (g *Gateway) IsAdmin(ctx context.Context, userID string) (bool, error) {
	row, err := g.Settings(ctx)
	if err != nil {
		return false, err
	}
	return userID != "" && row.Claimed() && row.AdminUserID == userID, nil
}

// BootstrapStatus reads whether an admin exists and whether a token gates claiming.
func (g *Gateway) BootstrapStatus(ctx context.Context) (BootstrapStatus, error) {
	row, err := g.Settings(ctx)
	if err != nil {
		return BootstrapStatus{}, err
	}
	return BootstrapStatus{
		Bootstrapped:    row.Claimed(),
		TokenConfigured: row.BootstrapTokenHash != "",
	}, nil
}

// ClaimAdmin assigns userID as admin if the site is unclaimed and no token is
// configured. The single conditional UPDATE makes the first claimant win.
func (g *Gateway) ClaimAdmin(ctx context.Context, userID string) (ActionResult, error) {
	if userID == "" || userID == models.UnclaimedAdminID {
		return ActionResult{Error: msgNoUser}, nil
	}

	var result ActionResult
	err := g.run(ctx, "claim_admin", func(tx *gorm.DB) error {
		res := tx.Clauses(hints.CommentBefore("update", "op:claim_admin")).
			Model(&models.SiteSettings{}).
			Where("id = ? AND admin_user_id = ? AND bootstrap_token_hash = ?",
				models.SiteSettingsID, models.UnclaimedAdminID, "").
			Updates(map[string]interface{}{
				"admin_user_id": userID,
				"version":       gorm.Expr("version + 1"),
				"updated_at":    g.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			result = ActionResult{Success: true}
			return nil
		}

		var row models.SiteSettings
		if err := tx.Where("id = ?", models.SiteSettingsID).First(&row).Error; err != nil {
			return err
		}
		switch {
		case row.Claimed():
			result = ActionResult{Error: msgAlreadyClaimed}
		case row.BootstrapTokenHash != "":
			result = ActionResult{Error: msgTokenRequired}
		default:
			result = ActionResult{Error: msgAlreadyClaimed}
		}
		return nil
	})
	return result, err
}

// BootstrapSetAdmin assigns userID as admin when token matches the stored
// hash. The hash is cleared on success so the token cannot be reused.
func (g *Gateway) BootstrapSetAdmin(ctx context.Context, userID, token string) (ActionResult, error) {
	if userID == "" || userID == models.UnclaimedAdminID {
		return ActionResult{Error: msgNoUser}, nil
	}

	var result ActionResult
	err := g.run(ctx, "bootstrap_set_admin", func(tx *gorm.DB) error {
		var row models.SiteSettings
		if err := tx.Where("id = ?", models.SiteSettingsID).First(&row).Error; err != nil {
			return err
		}
		switch {
		case row.Claimed():
			result = ActionResult{Error: msgAlreadyClaimed}
			return nil
		case row.BootstrapTokenHash == "":
			result = ActionResult{Error: msgNoToken}
			return nil
		}

		err := bcrypt.CompareHashAndPassword([]byte(row.BootstrapTokenHash), []byte(token))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrPasswordTooLong) {
			result = ActionResult{Error: msgBadToken}
			return nil
		}
		if err != nil {
			return err
		}

		res := tx.Clauses(hints.CommentBefore("update", "op:bootstrap_set_admin")).
			Model(&models.SiteSettings{}).
			Where("id = ? AND admin_user_id = ? AND bootstrap_token_hash = ?",
				models.SiteSettingsID, models.UnclaimedAdminID, row.BootstrapTokenHash).
			Updates(map[string]interface{}{
				"admin_user_id":        userID,
				"bootstrap_token_hash": "",
				"version":              gorm.Expr("version + 1"),
				"updated_at":           g.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			result = ActionResult{Success: true}
		} else {
			result = ActionResult{Error: msgAlreadyClaimed}
		}
		return nil
	})
	return result, err
}

// SetBootstrapToken stores a token hash; "" removes the token. Only allowed
// while the site is unclaimed.
func (g *Gateway) SetBootstrapToken(ctx context.Context, hash string) error {
	return g.run(ctx, "set_bootstrap_token", func(tx *gorm.DB) error {
		res := tx.Model(&models.SiteSettings{}).
			Where("id = ? AND admin_user_id = ?", models.SiteSettingsID, models.UnclaimedAdminID).
			Updates(map[string]interface{}{
				"bootstrap_token_hash": hash,
				"updated_at":           g.now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.SiteSettings{}).Where("id = ?", models.SiteSettingsID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return gorm.ErrRecordNotFound
			}
			return types.NewError(types.KindConflict, "", msgAlreadyClaimed, nil)
		}
		return nil
	})
}

// Demo is demo content to seed.
type Demo struct {
	Projects   []models.Project
	Categories []DemoCategory
}

// DemoCategory is a category and the items filed under it.
type DemoCategory struct {
	Category models.WritingCategory
	Items    []models.WritingItem
}

// SeedCounts reports rows inserted per entity.
type SeedCounts struct {
	Projects     int `json:"projects"`
	Categories   int `json:"categories"`
	WritingItems int `json:"writingItems"`
}

// SeedDemoContent inserts demo rows that are not present yet. Projects match
// on slug, categories on name and items on URL, so a second run inserts nothing.
func (g *Gateway) SeedDemoContent(ctx context.Context, demo Demo) (SeedCounts, error) {
	var counts SeedCounts
	err := g.run(ctx, "seed_demo_content", func(tx *gorm.DB) error {
		return tx.Transaction(func(tx *gorm.DB) error {
			counts = SeedCounts{}
			for i := range demo.Projects {
				p := demo.Projects[i]
				var n int64
				if err := tx.Model(&models.Project{}).Where("slug = ?", p.Slug).Count(&n).Error; err != nil {
					return err
				}
				if n > 0 {
					continue
				}
				if p.ID == "" {
					p.ID = uuid.NewString()
				}
				p.CreatedAt = g.now()
				p.UpdatedAt = p.CreatedAt
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
					return err
				}
				counts.Projects++
			}

			for _, dc := range demo.Categories {
				var cat models.WritingCategory
				err := tx.Where("name = ?", dc.Category.Name).First(&cat).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					cat = dc.Category
					cat.ID = 0
					if err := tx.Create(&cat).Error; err != nil {
						return err
					}
					counts.Categories++
				} else if err != nil {
					return err
				}

				for i := range dc.Items {
					item := dc.Items[i]
					var n int64
					if err := tx.Model(&models.WritingItem{}).Where("url = ?", item.URL).Count(&n).Error; err != nil {
						return err
					}
					if n > 0 {
						continue
					}
					item.ID = 0
					item.CategoryID = &cat.ID
					if err := tx.Omit("Category").Create(&item).Error; err != nil {
						return err
					}
					counts.WritingItems++
				}
			}
			return nil
		})
	})
	return counts, err
}
