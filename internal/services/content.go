// content.go
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

package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/localnerve/portfolio-site/internal/cache"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/markdown"
	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/siteconfig"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/localnerve/portfolio-site/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Cache key prefixes. Writes invalidate by prefix.
const (
	PrefixSettings = "settings:"
	PrefixProjects = "projects:"
	PrefixWriting  = "writing:"

	keySettingsPublic    = PrefixSettings + "public"
	keyWritingCategories = PrefixWriting + "categories"
	keyWritingItems      = PrefixWriting + "items"
)

// Default cache lifetimes.
const (
	DefaultSettingsTTL = 60 * time.Second
	DefaultProjectsTTL = 30 * time.Second
)

// Options tunes a ContentService. Zero values take the defaults.
type Options struct {
	SettingsTTL time.Duration
	ProjectsTTL time.Duration
	Now         func() time.Time
}

// ContentService reads and writes site content through the gateway. Public
// reads are cached and never fail: on a backend error they return defaults or
// empty lists and report degraded. Admin reads return the error.
type ContentService struct {
	gw          *gateway.Gateway
	cache       *cache.Cache
	md          *markdown.Renderer
	settingsTTL time.Duration
	projectsTTL time.Duration
	now         func() time.Time
	log         *logrus.Entry
}

// NewContentService builds a ContentService.
func NewContentService(gw *gateway.Gateway, c *cache.Cache, opts Options) *ContentService {
	s := &ContentService{
		gw:          gw,
		cache:       c,
		md:          markdown.New(),
		settingsTTL: opts.SettingsTTL,
		projectsTTL: opts.ProjectsTTL,
		now:         opts.Now,
		log:         logrus.WithField("component", "content"),
	}
	if s.settingsTTL <= 0 {
		s.settingsTTL = DefaultSettingsTTL
	}
	if s.projectsTTL <= 0 {
		s.projectsTTL = DefaultProjectsTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Gateway returns the underlying gateway.
func (s *ContentService) Gateway() *gateway.Gateway {
	return s.gw
}

// degrade logs a public read failure and reports it.
func (s *ContentService) degrade(op string, err error) bool {
	s.log.WithFields(logrus.Fields{
		"op":   op,
		"kind": types.KindOf(err),
	}).Warn(utils.SanitizeErr(err))
	return true
}

// PublicSettings returns the validated public settings. On failure it returns
// DefaultSettings and degraded=true.
func (s *ContentService) PublicSettings(ctx context.Context) (siteconfig.Settings, bool) {
	settings, err := cache.Fetch(ctx, s.cache, keySettingsPublic, s.settingsTTL,
		func(ctx context.Context) (siteconfig.Settings, error) {
			row, err := s.gw.PublicSettings(ctx)
			if err != nil {
				return siteconfig.Settings{}, err
			}
			return settingsFromPublic(row), nil
		})
	if err != nil {
		return siteconfig.DefaultSettings(), s.degrade("public_settings", err)
	}
	return settings, false
}

func settingsFromPublic(row models.PublicSettings) siteconfig.Settings {
	updated := row.UpdatedAt
	return siteconfig.Settings{
		Nav:          siteconfig.ParseNav(row.NavConfig.JSON),
		HomeSections: siteconfig.ParseHomeSections(row.HomeSections.JSON),
		Theme:        siteconfig.ParseTheme(row.Theme.JSON),
		SEO:          siteconfig.ParseSEO(row.SEO.JSON),
		Pages:        siteconfig.ParsePages(row.Pages.JSON),
		Bootstrapped: row.Bootstrapped,
		Version:      row.Version,
		UpdatedAt:    &updated,
	}
}

// publishedProjects loads published projects through the cache. limit <= 0
// loads all of them.
func (s *ContentService) publishedProjects(ctx context.Context, limit int) ([]Project, error) {
	if limit < 0 {
		limit = 0
	}
	key := fmt.Sprintf("%spublished:%d", PrefixProjects, limit)
	return cache.Fetch(ctx, s.cache, key, s.projectsTTL, func(ctx context.Context) ([]Project, error) {
		rows, err := s.gw.ListProjects(ctx, gateway.ProjectQuery{PublishedOnly: true, Limit: limit})
		if err != nil {
			return nil, err
		}
		out := make([]Project, 0, len(rows))
		for _, r := range rows {
			out = append(out, projectFromModel(r))
		}
		return out, nil
	})
}

// PublishedProjects returns published project cards, featured first. A tag
// filter is applied to the cached list for limit.
func (s *ContentService) PublishedProjects(ctx context.Context, limit int, tag string) ([]ProjectCard, bool) {
	projects, err := s.publishedProjects(ctx, limit)
	if err != nil {
		return []ProjectCard{}, s.degrade("published_projects", err)
	}
	cards := make([]ProjectCard, 0, len(projects))
	for _, p := range projects {
		if tag != "" && !p.HasTag(tag) {
			continue
		}
		cards = append(cards, p.Card())
	}
	return cards, false
}

// PublishedProject returns the public view of a published project. It reads
// from the cached published list; a miss is a not_found error.
func (s *ContentService) PublishedProject(ctx context.Context, slug string) (ProjectView, error) {
	slug = siteconfig.SafeSlug(slug)
	projects, err := s.publishedProjects(ctx, 0)
	if err != nil {
		return ProjectView{}, err
	}
	for _, p := range projects {
		if p.Slug == slug {
			return s.View(p), nil
		}
	}
	return ProjectView{}, types.NewError(types.KindNotFound, "published_project", "not found", nil)
}

// Categories returns the enabled categories by order.
func (s *ContentService) Categories(ctx context.Context) ([]Category, bool) {
	cats, err := s.categories(ctx)
	if err != nil {
		return []Category{}, s.degrade("categories", err)
	}
	return cats, false
}

func (s *ContentService) categories(ctx context.Context) ([]Category, error) {
	return cache.Fetch(ctx, s.cache, keyWritingCategories, s.settingsTTL, func(ctx context.Context) ([]Category, error) {
		rows, err := s.gw.ListCategories(ctx, true)
		if err != nil {
			return nil, err
		}
		out := make([]Category, 0, len(rows))
		for _, r := range rows {
			out = append(out, categoryFromModel(r))
		}
		return out, nil
	})
}

func (s *ContentService) writingItems(ctx context.Context) ([]WritingItem, error) {
	return cache.Fetch(ctx, s.cache, keyWritingItems, s.settingsTTL, func(ctx context.Context) ([]WritingItem, error) {
		rows, err := s.gw.ListWritingItems(ctx, true)
		if err != nil {
			return nil, err
		}
		out := make([]WritingItem, 0, len(rows))
		for _, r := range rows {
			item := writingItemFromModel(r)
			if item.URL == "" {
				continue
			}
			if !item.ShowWhy {
				item.WhyThisMatters = ""
			}
			out = append(out, item)
		}
		return out, nil
	})
}

// WritingItems returns enabled items in enabled categories, featured first.
func (s *ContentService) WritingItems(ctx context.Context, limit int) ([]WritingItem, bool) {
	items, err := s.writingItems(ctx)
	if err != nil {
		return []WritingItem{}, s.degrade("writing_items", err)
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, false
}

// Writing returns the enabled items grouped under their categories in
// category order. Uncategorised items come last.
func (s *ContentService) Writing(ctx context.Context) ([]WritingGroup, bool) {
	cats, catsDegraded := s.Categories(ctx)
	items, itemsDegraded := s.WritingItems(ctx, 0)
	return groupWriting(cats, items), catsDegraded || itemsDegraded
}

func groupWriting(cats []Category, items []WritingItem) []WritingGroup {
	byID := make(map[uint]int, len(cats))
	groups := make([]WritingGroup, 0, len(cats)+1)
	for i := range cats {
		byID[cats[i].ID] = len(groups)
		groups = append(groups, WritingGroup{Category: &cats[i], Items: []WritingItem{}})
	}
	var loose []WritingItem
	for _, it := range items {
		if it.CategoryID != nil {
			if idx, ok := byID[*it.CategoryID]; ok {
				groups[idx].Items = append(groups[idx].Items, it)
			}
			continue
		}
		loose = append(loose, it)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Items) > 0 {
			out = append(out, g)
		}
	}
	if len(loose) > 0 {
		out = append(out, WritingGroup{Items: loose})
	}
	return out
}

// Tags returns every tag used by published projects, sorted.
func (s *ContentService) Tags(ctx context.Context) []string {
	projects, err := s.publishedProjects(ctx, 0)
	if err != nil {
		return []string{}
	}
	seen := map[string]struct{}{}
	for _, p := range projects {
		for _, t := range p.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

var knownPlatforms = map[string]string{
	"github":   "GitHub",
	"linkedin": "LinkedIn",
	"youtube":  "YouTube",
	"dev.to":   "DEV",
	"substack": "Substack",
	"medium":   "Medium",
}

// platformLabel returns the display form of a writing platform.
func platformLabel(platform string) string {
	p := strings.TrimSpace(platform)
	if p == "" {
		return ""
	}
	if label, ok := knownPlatforms[strings.ToLower(p)]; ok {
		return label
	}
	// Casers keep state, so each call gets its own
	return cases.Title(language.English).String(p)
}
