// settings.go
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

// Package siteconfig converts loosely typed JSON configuration into typed,
// fully defaulted values. Every parser is total: nil, malformed JSON, or a
// value of the wrong shape yields the default rather than an error.
package siteconfig

import (
	"sort"
	"strings"
	"time"
)

// NavLink is a single navigation entry.
type NavLink struct {
	Label   string `json:"label"`
	Href    string `json:"href"`
	Visible bool   `json:"visible"`
}

// NavCTA is the optional call-to-action button in the navigation bar.
type NavCTA struct {
	Label   string `json:"label"`
	Href    string `json:"href"`
	Visible bool   `json:"visible"`
}

// NavConfig is the ordered navigation.
type NavConfig struct {
	Links []NavLink `json:"links"`
	CTA   *NavCTA   `json:"cta,omitempty"`
}

// HomeSection describes one block of the home page.
type HomeSection struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
	Order   int    `json:"order"`
	Limit   *int   `json:"limit,omitempty"`
}

// HomeSections is the ordered list of home page blocks.
type HomeSections []HomeSection

// ThemeMode is light, dark or system.
type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

// ThemeConfig holds the colour scheme.
type ThemeConfig struct {
	Mode   ThemeMode `json:"mode"`
	Accent string    `json:"accent,omitempty"`
	Font   string    `json:"font,omitempty"`
}

// SEOConfig holds document metadata.
type SEOConfig struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OGImage     string `json:"ogImage,omitempty"`
	Canonical   string `json:"canonical,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
}

// SocialLink is a contact page profile link.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// ResumePage configures the resume page.
type ResumePage struct {
	Enabled bool   `json:"enabled"`
	PDFURL  string `json:"pdfUrl,omitempty"`
}

// ContactPage configures the contact page.
type ContactPage struct {
	Enabled bool         `json:"enabled"`
	Email   string       `json:"email,omitempty"`
	Socials []SocialLink `json:"socials"`
}

// PagesConfig is the per-page configuration.
type PagesConfig struct {
	Resume  ResumePage  `json:"resume"`
	Contact ContactPage `json:"contact"`
}

// Settings is the validated form of the site settings row.
type Settings struct {
	Nav          NavConfig    `json:"navConfig"`
	HomeSections HomeSections `json:"homeSections"`
	Theme        ThemeConfig  `json:"theme"`
	SEO          SEOConfig    `json:"seo"`
	Pages        PagesConfig  `json:"pages"`
	Bootstrapped bool         `json:"bootstrapped"`
	Version      uint64       `json:"version,omitempty"`
	UpdatedAt    *time.Time   `json:"updatedAt,omitempty"`
}

// Ordered returns the visible home sections sorted by order.
func (s Settings) Ordered() HomeSections {
	out := make(HomeSections, 0, len(s.HomeSections))
	for _, sec := range s.HomeSections {
		if sec.Visible {
			out = append(out, sec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Section finds a home section by id.
func (s Settings) Section(id string) (HomeSection, bool) {
	for _, sec := range s.HomeSections {
		if sec.ID == id {
			return sec, true
		}
	}
	return HomeSection{}, false
}

// ParseSettings validates a whole settings object keyed like its JSON form.
func ParseSettings(input any) Settings {
	m, ok := decodeObject(input)
	if !ok {
		return DefaultSettings()
	}
	s := Settings{
		Nav:          ParseNav(m["navConfig"]),
		HomeSections: ParseHomeSections(m["homeSections"]),
		Theme:        ParseTheme(m["theme"]),
		SEO:          ParseSEO(m["seo"]),
		Pages:        ParsePages(m["pages"]),
		Bootstrapped: boolField(m, "bootstrapped", false),
	}
	if v, ok := m["version"].(float64); ok && v >= 0 && v == float64(uint64(v)) {
		s.Version = uint64(v)
	}
	if ts, ok := stringField(m, "updatedAt"); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			s.UpdatedAt = &t
		}
	}
	return s
}

// ParseNav validates a navigation config.
func ParseNav(input any) NavConfig {
	v, ok := decode(input)
	if !ok {
		return DefaultNav()
	}

	var links []any
	var cta any
	switch t := v.(type) {
	case []any:
		links = t
	case map[string]any:
		arr, ok := t["links"].([]any)
		if !ok {
			d := DefaultNav()
			d.CTA = parseCTA(t["cta"])
			return d
		}
		links = arr
		cta = t["cta"]
	default:
		return DefaultNav()
	}

	out := NavConfig{Links: make([]NavLink, 0, len(links)), CTA: parseCTA(cta)}
	for _, el := range links {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		label := trimmedText(m, "label", MaxLabelLength)
		href, _ := stringField(m, "href")
		href = SafeURL(href)
		if label == "" || href == "" {
			continue
		}
		out.Links = append(out.Links, NavLink{Label: label, Href: href, Visible: boolField(m, "visible", true)})
	}
	return out
}

func parseCTA(v any) *NavCTA {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	label := trimmedText(m, "label", MaxLabelLength)
	href, _ := stringField(m, "href")
	href = SafeURL(href)
	if label == "" || href == "" {
		return nil
	}
	return &NavCTA{Label: label, Href: href, Visible: boolField(m, "visible", true)}
}

const maxSectionLimit = 50

// ParseHomeSections validates the home section list. Accepts either an array or
// an object with a "sections" array.
func ParseHomeSections(input any) HomeSections {
	v, ok := decode(input)
	if !ok {
		return DefaultHomeSections()
	}
	var arr []any
	switch t := v.(type) {
	case []any:
		arr = t
	case map[string]any:
		a, ok := t["sections"].([]any)
		if !ok {
			return DefaultHomeSections()
		}
		arr = a
	default:
		return DefaultHomeSections()
	}

	out := make(HomeSections, 0, len(arr))
	seen := make(map[string]struct{}, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		id, _ := stringField(m, "id")
		id = SafeSlug(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		sec := HomeSection{ID: id, Visible: boolField(m, "visible", true)}
		if order, ok := intField(m, "order"); ok {
			sec.Order = order
		} else {
			sec.Order = len(out)
		}
		if limit, ok := intField(m, "limit"); ok && limit >= 1 {
			if limit > maxSectionLimit {
				limit = maxSectionLimit
			}
			sec.Limit = &limit
		}
		out = append(out, sec)
	}
	return out
}

// ParseTheme validates a theme config.
func ParseTheme(input any) ThemeConfig {
	m, ok := decodeObject(input)
	if !ok {
		return DefaultTheme()
	}
	out := DefaultTheme()
	if mode, ok := stringField(m, "mode"); ok {
		switch ThemeMode(strings.ToLower(strings.TrimSpace(mode))) {
		case ThemeLight:
			out.Mode = ThemeLight
		case ThemeDark:
			out.Mode = ThemeDark
		case ThemeSystem:
			out.Mode = ThemeSystem
		}
	}
	out.Accent = SafeColor(m["accent"])
	out.Font = trimmedText(m, "font", 100)
	return out
}

// ParseSEO validates document metadata. Empty title or description fall back
// to the defaults individually.
func ParseSEO(input any) SEOConfig {
	m, ok := decodeObject(input)
	if !ok {
		return DefaultSEO()
	}
	def := DefaultSEO()
	out := SEOConfig{
		Title:       trimmedText(m, "title", MaxLabelLength),
		Description: trimmedText(m, "description", 500),
		OGImage:     SafeURL(m["ogImage"]),
		Canonical:   SafeURL(m["canonical"]),
		Favicon:     SafeURL(m["favicon"]),
	}
	if out.Title == "" {
		out.Title = def.Title
	}
	if out.Description == "" {
		out.Description = def.Description
	}
	return out
}

// ParsePages validates the per-page config.
func ParsePages(input any) PagesConfig {
	m, ok := decodeObject(input)
	if !ok {
		return DefaultPages()
	}
	out := DefaultPages()

	if r, ok := m["resume"].(map[string]any); ok {
		out.Resume = ResumePage{
			Enabled: boolField(r, "enabled", true),
			PDFURL:  SafeURL(r["pdfUrl"]),
		}
	}

	if c, ok := m["contact"].(map[string]any); ok {
		out.Contact = ContactPage{
			Enabled: boolField(c, "enabled", true),
			Email:   SafeEmail(c["email"]),
			Socials: []SocialLink{},
		}
		if arr, ok := c["socials"].([]any); ok {
			for _, el := range arr {
				s, ok := el.(map[string]any)
				if !ok {
					continue
				}
				platform := trimmedText(s, "platform", MaxLabelLength)
				link := SafeURL(s["url"])
				if platform == "" || link == "" {
					continue
				}
				out.Contact.Socials = append(out.Contact.Socials, SocialLink{Platform: platform, URL: link})
			}
		}
	}
	return out
}
