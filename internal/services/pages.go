package services

import (
	"context"
	"errors"

	"github.com/localnerve/portfolio-site/internal/siteconfig"
	"github.com/localnerve/portfolio-site/internal/types"
	"golang.org/x/sync/errgroup"
)

// DegradedNotice is shown on pages assembled from fallback content.
const DegradedNotice = "Some content could not be loaded right now. Showing defaults."

// Page names.
const (
	PageHome     = "home"
	PageAbout    = "about"
	PageProjects = "projects"
	PageProject  = "project"
	PageWriting  = "writing"
	PageResume   = "resume"
	PageContact  = "contact"
)

// Page is the JSON document served for a public route.
type Page struct {
	Page     string                 `json:"page"`
	SEO      siteconfig.SEOConfig   `json:"seo"`
	Nav      siteconfig.NavConfig   `json:"nav"`
	Theme    siteconfig.ThemeConfig `json:"theme"`
	Degraded bool                   `json:"degraded"`
	Notice   string                 `json:"notice,omitempty"`
	Body     any                    `json:"body"`
}

// HomeBlock is one rendered home section.
type HomeBlock struct {
	ID   string `json:"id"`
	Data any    `json:"data"`
}

// Hero is the hero section content.
type Hero struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProjectsBody is the projects page body.
type ProjectsBody struct {
	Tag      string        `json:"tag,omitempty"`
	Tags     []string      `json:"tags"`
	Projects []ProjectCard `json:"projects"`
}

var errPageDisabled = types.NewError(types.KindNotFound, "page", "page is disabled", nil)

func (s *ContentService) page(name string, settings siteconfig.Settings, degraded bool, body any) Page {
	p := Page{
		Page:     name,
		SEO:      settings.SEO,
		Nav:      visibleNav(settings),
		Theme:    settings.Theme,
		Degraded: degraded,
		Body:     body,
	}
	if degraded {
		p.Notice = DegradedNotice
	}
	return p
}

// visibleNav drops hidden links and links to disabled pages.
func visibleNav(settings siteconfig.Settings) siteconfig.NavConfig {
	disabled := map[string]bool{
		"/resume":  !settings.Pages.Resume.Enabled,
		"/contact": !settings.Pages.Contact.Enabled,
	}
	out := siteconfig.NavConfig{Links: make([]siteconfig.NavLink, 0, len(settings.Nav.Links))}
	for _, l := range settings.Nav.Links {
		if l.Visible && !disabled[l.Href] {
			out.Links = append(out.Links, l)
		}
	}
	if cta := settings.Nav.CTA; cta != nil && cta.Visible && !disabled[cta.Href] {
		c := *cta
		out.CTA = &c
	}
	return out
}

func sectionLimit(sec siteconfig.HomeSection, def int) int {
	if sec.Limit != nil {
		return *sec.Limit
	}
	return def
}

// HomePage assembles the home page from settings, featured projects and
// writing, loaded concurrently.
func (s *ContentService) HomePage(ctx context.Context) Page {
	settings, degraded := s.PublicSettings(ctx)
	sections := settings.Ordered()

	blocks := make([]HomeBlock, len(sections))
	flags := make([]bool, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	for i, sec := range sections {
		blocks[i].ID = sec.ID
		switch sec.ID {
		case siteconfig.SectionHero:
			blocks[i].Data = Hero{Title: settings.SEO.Title, Description: settings.SEO.Description}
		case siteconfig.SectionFeaturedProjects:
			g.Go(func() error {
				blocks[i].Data, flags[i] = s.PublishedProjects(gctx, sectionLimit(sec, 3), "")
				return nil
			})
		case siteconfig.SectionWriting:
			g.Go(func() error {
				blocks[i].Data, flags[i] = s.WritingItems(gctx, sectionLimit(sec, 5))
				return nil
			})
		case siteconfig.SectionAbout:
			blocks[i].Data = Hero{Title: "About", Description: settings.SEO.Description}
		case siteconfig.SectionContact:
			if settings.Pages.Contact.Enabled {
				blocks[i].Data = settings.Pages.Contact
			}
		}
	}
	_ = g.Wait()

	out := make([]HomeBlock, 0, len(blocks))
	for i, b := range blocks {
		degraded = degraded || flags[i]
		if b.Data != nil {
			out = append(out, b)
		}
	}
	return s.page(PageHome, settings, degraded, out)
}

// ProjectsPage lists published projects, optionally filtered by tag.
func (s *ContentService) ProjectsPage(ctx context.Context, tag string) Page {
	var (
		settings                   siteconfig.Settings
		cards                      []ProjectCard
		tags                       []string
		settingsFail, projectsFail bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		settings, settingsFail = s.PublicSettings(gctx)
		return nil
	})
	g.Go(func() error {
		cards, projectsFail = s.PublishedProjects(gctx, 0, tag)
		tags = s.Tags(gctx)
		return nil
	})
	_ = g.Wait()

	body := ProjectsBody{Tags: tags, Projects: cards}
	if t := siteconfig.ParseTags([]any{tag}); len(t) > 0 {
		body.Tag = t[0]
	}
	return s.page(PageProjects, settings, settingsFail || projectsFail, body)
}

// ProjectPage shows one published project. Only a missing project is an
// error; backend failures give a degraded page without a body.
func (s *ContentService) ProjectPage(ctx context.Context, slug string) (Page, error) {
	var (
		settings     siteconfig.Settings
		settingsFail bool
		view         ProjectView
		viewErr      error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		settings, settingsFail = s.PublicSettings(gctx)
		return nil
	})
	g.Go(func() error {
		view, viewErr = s.PublishedProject(gctx, slug)
		return nil
	})
	_ = g.Wait()

	if viewErr != nil {
		if errors.Is(viewErr, types.ErrNotFound) {
			return Page{}, viewErr
		}
		s.degrade("project_page", viewErr)
		return s.page(PageProject, settings, true, nil), nil
	}

	p := s.page(PageProject, settings, settingsFail, view)
	p.SEO.Title = view.Title + " | " + settings.SEO.Title
	if view.Summary != "" {
		p.SEO.Description = view.Summary
	}
	return p, nil
}

// WritingPage shows enabled writing grouped by category.
func (s *ContentService) WritingPage(ctx context.Context) Page {
	var (
		settings                  siteconfig.Settings
		groups                    []WritingGroup
		settingsFail, writingFail bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		settings, settingsFail = s.PublicSettings(gctx)
		return nil
	})
	g.Go(func() error {
		groups, writingFail = s.Writing(gctx)
		return nil
	})
	_ = g.Wait()
	return s.page(PageWriting, settings, settingsFail || writingFail, groups)
}

// AboutBody is the about page body.
type AboutBody struct {
	Description string                  `json:"description"`
	Featured    []ProjectCard           `json:"featured"`
	Contact     *siteconfig.ContactPage `json:"contact,omitempty"`
}

// AboutPage shows the site description with a few featured projects.
func (s *ContentService) AboutPage(ctx context.Context) Page {
	var (
		settings                   siteconfig.Settings
		cards                      []ProjectCard
		settingsFail, projectsFail bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		settings, settingsFail = s.PublicSettings(gctx)
		return nil
	})
	g.Go(func() error {
		cards, projectsFail = s.PublishedProjects(gctx, 3, "")
		return nil
	})
	_ = g.Wait()

	body := AboutBody{Description: settings.SEO.Description, Featured: cards}
	if settings.Pages.Contact.Enabled {
		c := settings.Pages.Contact
		body.Contact = &c
	}
	return s.page(PageAbout, settings, settingsFail || projectsFail, body)
}

// ResumePage shows the resume config; not_found when the page is disabled.
func (s *ContentService) ResumePage(ctx context.Context) (Page, error) {
	settings, degraded := s.PublicSettings(ctx)
	if !settings.Pages.Resume.Enabled {
		return Page{}, errPageDisabled
	}
	return s.page(PageResume, settings, degraded, settings.Pages.Resume), nil
}

// ContactPage shows the contact config; not_found when the page is disabled.
func (s *ContentService) ContactPage(ctx context.Context) (Page, error) {
	settings, degraded := s.PublicSettings(ctx)
	if !settings.Pages.Contact.Enabled {
		return Page{}, errPageDisabled
	}
	return s.page(PageContact, settings, degraded, settings.Pages.Contact), nil
}
