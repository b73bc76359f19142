package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/localnerve/portfolio-site/data"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/siteconfig"
	"github.com/localnerve/portfolio-site/internal/types"
)

// AdminSettings is the admin view of the settings row. The admin id and the
// token hash stay server-side.
type AdminSettings struct {
	siteconfig.Settings
	TokenConfigured bool `json:"tokenConfigured"`
}

// SettingsInput replaces settings groups. Absent groups are left unchanged.
type SettingsInput struct {
	Version      uint64          `json:"version"`
	NavConfig    json.RawMessage `json:"navConfig,omitempty"`
	HomeSections json.RawMessage `json:"homeSections,omitempty"`
	Theme        json.RawMessage `json:"theme,omitempty"`
	SEO          json.RawMessage `json:"seo,omitempty"`
	Pages        json.RawMessage `json:"pages,omitempty"`
}

func adminSettingsFromRow(row models.SiteSettings) AdminSettings {
	updated := row.UpdatedAt
	return AdminSettings{
		Settings: siteconfig.Settings{
			Nav:          siteconfig.ParseNav(row.NavConfig.JSON),
			HomeSections: siteconfig.ParseHomeSections(row.HomeSections.JSON),
			Theme:        siteconfig.ParseTheme(row.Theme.JSON),
			SEO:          siteconfig.ParseSEO(row.SEO.JSON),
			Pages:        siteconfig.ParsePages(row.Pages.JSON),
			Bootstrapped: row.Claimed(),
			Version:      row.Version,
			UpdatedAt:    &updated,
		},
		TokenConfigured: row.BootstrapTokenHash != "",
	}
}

// AdminSettings reads the settings row. Errors are returned, not defaulted.
func (s *ContentService) AdminSettings(ctx context.Context) (AdminSettings, error) {
	row, err := s.gw.Settings(ctx)
	if err != nil {
		return AdminSettings{}, err
	}
	return adminSettingsFromRow(row), nil
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// UpdateSettings validates each supplied group and stores it if the version
// still matches.
func (s *ContentService) UpdateSettings(ctx context.Context, in SettingsInput) (AdminSettings, error) {
	var patch gateway.SettingsPatch
	set := func(dst **models.JSON, v any) {
		j := models.MustJSON(v)
		*dst = &j
	}
	if present(in.NavConfig) {
		set(&patch.NavConfig, siteconfig.ParseNav(in.NavConfig))
	}
	if present(in.HomeSections) {
		set(&patch.HomeSections, siteconfig.ParseHomeSections(in.HomeSections))
	}
	if present(in.Theme) {
		set(&patch.Theme, siteconfig.ParseTheme(in.Theme))
	}
	if present(in.SEO) {
		set(&patch.SEO, siteconfig.ParseSEO(in.SEO))
	}
	if present(in.Pages) {
		set(&patch.Pages, siteconfig.ParsePages(in.Pages))
	}

	row, err := s.gw.UpdateSettings(ctx, in.Version, patch)
	if err != nil {
		return AdminSettings{}, err
	}
	s.cache.InvalidatePrefix(ctx, PrefixSettings)
	return adminSettingsFromRow(row), nil
}

// ClaimAdmin proposes userID as the first admin. A successful claim changes
// the public bootstrapped flag, so cached settings are dropped.
func (s *ContentService) ClaimAdmin(ctx context.Context, userID string) (gateway.ActionResult, error) {
	res, err := s.gw.ClaimAdmin(ctx, userID)
	if err == nil && res.Success {
		s.cache.InvalidatePrefix(ctx, PrefixSettings)
	}
	return res, err
}

// BootstrapSetAdmin proposes userID as admin with a bootstrap token.
func (s *ContentService) BootstrapSetAdmin(ctx context.Context, userID, token string) (gateway.ActionResult, error) {
	res, err := s.gw.BootstrapSetAdmin(ctx, userID, token)
	if err == nil && res.Success {
		s.cache.InvalidatePrefix(ctx, PrefixSettings)
	}
	return res, err
}

// ProjectInput is an admin project form.
type ProjectInput struct {
	ID             string                 `json:"id,omitempty"`
	Slug           string                 `json:"slug"`
	Title          string                 `json:"title"`
	Summary        string                 `json:"summary"`
	Tags           types.FlexList[string] `json:"tags"`
	Status         string                 `json:"status"`
	DetailLevel    string                 `json:"detailLevel"`
	Featured       bool                   `json:"featured"`
	Published      bool                   `json:"published"`
	SectionsConfig json.RawMessage        `json:"sectionsConfig,omitempty"`
	Content        json.RawMessage        `json:"content,omitempty"`
	Media          json.RawMessage        `json:"media,omitempty"`
	Metrics        json.RawMessage        `json:"metrics,omitempty"`
	DecisionLog    json.RawMessage        `json:"decisionLog,omitempty"`
}

// Normalize validates in into a Project. The slug falls back to the title.
func (in ProjectInput) Normalize() (Project, error) {
	p := Project{
		ID:          in.ID,
		Slug:        siteconfig.SafeSlug(in.Slug),
		Title:       siteconfig.SafeText(in.Title, siteconfig.MaxLabelLength),
		Summary:     siteconfig.SafeText(in.Summary, 2000),
		Tags:        siteconfig.ParseTags(toAnySlice(in.Tags.Slice())),
		Status:      siteconfig.ParseStatus(in.Status),
		DetailLevel: siteconfig.ParseDetailLevel(in.DetailLevel),
		Featured:    in.Featured,
		Published:   in.Published,
		Sections:    siteconfig.DefaultSections(),
		Content:     siteconfig.ParseContent([]byte(in.Content)),
		Media:       siteconfig.ParseMedia([]byte(in.Media)),
		Metrics:     siteconfig.ParseMetrics([]byte(in.Metrics)),
		DecisionLog: siteconfig.ParseDecisionLog([]byte(in.DecisionLog)),
	}
	if present(in.SectionsConfig) {
		p.Sections = siteconfig.ParseSections([]byte(in.SectionsConfig))
	}
	if p.Slug == "" {
		p.Slug = siteconfig.SafeSlug(p.Title)
	}
	if p.Title == "" || p.Slug == "" {
		return Project{}, types.NewError(types.KindValidation, "save_project", "a project needs a title", nil)
	}
	return p, nil
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// AdminProjects lists every project, drafts included.
func (s *ContentService) AdminProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.gw.ListProjects(ctx, gateway.ProjectQuery{})
	if err != nil {
		return nil, err
	}
	out := make([]Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, projectFromModel(r))
	}
	return out, nil
}

// AdminProject reads one project by id.
func (s *ContentService) AdminProject(ctx context.Context, id string) (Project, error) {
	row, err := s.gw.ProjectByID(ctx, id)
	if err != nil {
		return Project{}, err
	}
	return projectFromModel(row), nil
}

// SaveProject validates and stores a project.
func (s *ContentService) SaveProject(ctx context.Context, in ProjectInput) (Project, error) {
	p, err := in.Normalize()
	if err != nil {
		return Project{}, err
	}
	m := p.model()
	if err := s.gw.SaveProject(ctx, &m); err != nil {
		return Project{}, err
	}
	s.cache.InvalidatePrefix(ctx, PrefixProjects)
	return projectFromModel(m), nil
}

// DeleteProject removes a project.
func (s *ContentService) DeleteProject(ctx context.Context, id string) error {
	if err := s.gw.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, PrefixProjects)
	return nil
}

// CategoryInput is an admin category form.
type CategoryInput struct {
	ID         uint          `json:"id,omitempty"`
	Name       string        `json:"name"`
	OrderIndex types.FlexInt `json:"orderIndex"`
	Enabled    bool          `json:"enabled"`
}

// AdminCategories lists every category.
func (s *ContentService) AdminCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.gw.ListCategories(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, categoryFromModel(r))
	}
	return out, nil
}

// SaveCategory validates and stores a category.
func (s *ContentService) SaveCategory(ctx context.Context, in CategoryInput) (Category, error) {
	name := siteconfig.SafeText(in.Name, siteconfig.MaxLabelLength)
	if name == "" {
		return Category{}, types.NewError(types.KindValidation, "save_category", "a category needs a name", nil)
	}
	m := models.WritingCategory{ID: in.ID, Name: name, OrderIndex: in.OrderIndex.Int(), Enabled: in.Enabled}
	if err := s.gw.SaveCategory(ctx, &m); err != nil {
		return Category{}, err
	}
	s.cache.InvalidatePrefix(ctx, PrefixWriting)
	return categoryFromModel(m), nil
}

// DeleteCategory removes a category; its items become uncategorised.
func (s *ContentService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.gw.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, PrefixWriting)
	return nil
}

// WritingItemInput is an admin writing item form.
type WritingItemInput struct {
	ID             uint          `json:"id,omitempty"`
	CategoryID     *uint         `json:"categoryId"`
	Title          string        `json:"title"`
	URL            string        `json:"url"`
	Platform       string        `json:"platform"`
	Language       string        `json:"language"`
	Featured       bool          `json:"featured"`
	Enabled        bool          `json:"enabled"`
	OrderIndex     types.FlexInt `json:"orderIndex"`
	WhyThisMatters string        `json:"whyThisMatters"`
	ShowWhy        bool          `json:"showWhy"`
}

// AdminWritingItems lists every writing item.
func (s *ContentService) AdminWritingItems(ctx context.Context) ([]WritingItem, error) {
	rows, err := s.gw.ListWritingItems(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make([]WritingItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, writingItemFromModel(r))
	}
	return out, nil
}

// SaveWritingItem validates and stores a writing item.
func (s *ContentService) SaveWritingItem(ctx context.Context, in WritingItemInput) (WritingItem, error) {
	m := models.WritingItem{
		ID:             in.ID,
		CategoryID:     in.CategoryID,
		Title:          siteconfig.SafeText(in.Title, siteconfig.MaxLabelLength),
		URL:            siteconfig.SafeURL(in.URL),
		Platform:       siteconfig.SafeText(in.Platform, siteconfig.MaxLabelLength),
		Language:       string(siteconfig.ParseLanguage(in.Language)),
		Featured:       in.Featured,
		Enabled:        in.Enabled,
		OrderIndex:     in.OrderIndex.Int(),
		WhyThisMatters: siteconfig.SafeText(in.WhyThisMatters, 2000),
		ShowWhy:        in.ShowWhy,
	}
	if m.Title == "" {
		return WritingItem{}, types.NewError(types.KindValidation, "save_writing_item", "a writing item needs a title", nil)
	}
	if m.URL == "" {
		return WritingItem{}, types.NewError(types.KindValidation, "save_writing_item", "a writing item needs a valid url", nil)
	}
	if err := s.gw.SaveWritingItem(ctx, &m); err != nil {
		return WritingItem{}, err
	}
	s.cache.InvalidatePrefix(ctx, PrefixWriting)
	return writingItemFromModel(m), nil
}

// DeleteWritingItem removes a writing item.
func (s *ContentService) DeleteWritingItem(ctx context.Context, id uint) error {
	if err := s.gw.DeleteWritingItem(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, PrefixWriting)
	return nil
}

// SeedDemo inserts the embedded demo content that is not present yet.
func (s *ContentService) SeedDemo(ctx context.Context) (gateway.SeedCounts, error) {
	demo, err := data.LoadDemo()
	if err != nil {
		return gateway.SeedCounts{}, types.NewError(types.KindBackend, "seed_demo_content", err.Error(), err)
	}
	counts, err := s.gw.SeedDemoContent(ctx, demo)
	if err != nil {
		return gateway.SeedCounts{}, err
	}
	s.cache.InvalidatePrefix(ctx, PrefixProjects)
	s.cache.InvalidatePrefix(ctx, PrefixWriting)
	return counts, nil
}

// AnalyticsSummary aggregates the last days of events. Admin only.
func (s *ContentService) AnalyticsSummary(ctx context.Context, days int) (gateway.AnalyticsSummary, error) {
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}
	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.gw.AnalyticsSummary(ctx, since)
}
