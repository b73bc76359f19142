package services

import (
	"time"

	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/siteconfig"
)

// Project is a validated project row.
type Project struct {
	ID          string                    `json:"id"`
	Slug        string                    `json:"slug"`
	Title       string                    `json:"title"`
	Summary     string                    `json:"summary"`
	Tags        []string                  `json:"tags"`
	Status      siteconfig.ProjectStatus  `json:"status"`
	DetailLevel siteconfig.DetailLevel    `json:"detailLevel"`
	Featured    bool                      `json:"featured"`
	Published   bool                      `json:"published"`
	Sections    siteconfig.SectionsConfig `json:"sectionsConfig"`
	Content     siteconfig.ProjectContent `json:"content"`
	Media       []siteconfig.Media        `json:"media"`
	Metrics     []string                  `json:"metrics"`
	DecisionLog []siteconfig.Decision     `json:"decisionLog"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

func projectFromModel(m models.Project) Project {
	return Project{
		ID:          m.ID,
		Slug:        m.Slug,
		Title:       m.Title,
		Summary:     m.Summary,
		Tags:        siteconfig.ParseTags(m.Tags.JSON),
		Status:      siteconfig.ParseStatus(m.Status),
		DetailLevel: siteconfig.ParseDetailLevel(m.DetailLevel),
		Featured:    m.Featured,
		Published:   m.Published,
		Sections:    siteconfig.ParseSections(m.SectionsConfig.JSON),
		Content:     siteconfig.ParseContent(m.Content.JSON),
		Media:       siteconfig.ParseMedia(m.Media.JSON),
		Metrics:     siteconfig.ParseMetrics(m.Metrics.JSON),
		DecisionLog: siteconfig.ParseDecisionLog(m.DecisionLog.JSON),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (p Project) model() models.Project {
	return models.Project{
		ID:             p.ID,
		Slug:           p.Slug,
		Title:          p.Title,
		Summary:        p.Summary,
		Tags:           models.MustJSON(p.Tags),
		Status:         string(p.Status),
		DetailLevel:    string(p.DetailLevel),
		Featured:       p.Featured,
		Published:      p.Published,
		SectionsConfig: models.MustJSON(p.Sections),
		Content:        models.MustJSON(p.Content),
		Media:          models.MustJSON(p.Media),
		Metrics:        models.MustJSON(p.Metrics),
		DecisionLog:    models.MustJSON(p.DecisionLog),
		CreatedAt:      p.CreatedAt,
	}
}

// HasTag reports whether the project carries tag (case-insensitive).
func (p Project) HasTag(tag string) bool {
	want := siteconfig.ParseTags([]any{tag})
	if len(want) == 0 {
		return true
	}
	for _, t := range p.Tags {
		if t == want[0] {
			return true
		}
	}
	return false
}

// ProjectCard is the list form of a project.
type ProjectCard struct {
	Slug      string                   `json:"slug"`
	Title     string                   `json:"title"`
	Summary   string                   `json:"summary"`
	Tags      []string                 `json:"tags"`
	Status    siteconfig.ProjectStatus `json:"status"`
	Featured  bool                     `json:"featured"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// Card returns the list form of p.
func (p Project) Card() ProjectCard {
	return ProjectCard{
		Slug:      p.Slug,
		Title:     p.Title,
		Summary:   p.Summary,
		Tags:      p.Tags,
		Status:    p.Status,
		Featured:  p.Featured,
		UpdatedAt: p.UpdatedAt,
	}
}

// Category is a validated writing category.
type Category struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Order   int    `json:"orderIndex"`
	Enabled bool   `json:"enabled"`
}

func categoryFromModel(m models.WritingCategory) Category {
	return Category{
		ID:      m.ID,
		Name:    siteconfig.SafeText(m.Name, siteconfig.MaxLabelLength),
		Order:   m.OrderIndex,
		Enabled: m.Enabled,
	}
}

// WritingItem is a validated writing item.
type WritingItem struct {
	ID             uint                `json:"id"`
	CategoryID     *uint               `json:"categoryId"`
	Title          string              `json:"title"`
	URL            string              `json:"url"`
	Platform       string              `json:"platform"`
	PlatformLabel  string              `json:"platformLabel"`
	Language       siteconfig.Language `json:"language"`
	Featured       bool                `json:"featured"`
	Enabled        bool                `json:"enabled"`
	Order          int                 `json:"orderIndex"`
	WhyThisMatters string              `json:"whyThisMatters,omitempty"`
	ShowWhy        bool                `json:"showWhy"`
}

func writingItemFromModel(m models.WritingItem) WritingItem {
	platform := siteconfig.SafeText(m.Platform, siteconfig.MaxLabelLength)
	return WritingItem{
		ID:             m.ID,
		CategoryID:     m.CategoryID,
		Title:          siteconfig.SafeText(m.Title, siteconfig.MaxLabelLength),
		URL:            siteconfig.SafeURL(m.URL),
		Platform:       platform,
		PlatformLabel:  platformLabel(platform),
		Language:       siteconfig.ParseLanguage(m.Language),
		Featured:       m.Featured,
		Enabled:        m.Enabled,
		Order:          m.OrderIndex,
		WhyThisMatters: siteconfig.SafeText(m.WhyThisMatters, 2000),
		ShowWhy:        m.ShowWhy,
	}
}

// WritingGroup is one category section of the writing page. Category is nil
// for uncategorised items.
type WritingGroup struct {
	Category *Category    `json:"category"`
	Items    []WritingItem `json:"items"`
}
