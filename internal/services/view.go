package services

import (
	"github.com/localnerve/portfolio-site/internal/siteconfig"
	"github.com/sirupsen/logrus"
)

// ProjectView is the public detail form of a project: only the blocks its
// detail level and sections config allow, narrative fields rendered as HTML.
type ProjectView struct {
	ProjectCard
	DetailLevel  siteconfig.DetailLevel `json:"detailLevel"`
	Overview     string                 `json:"overview,omitempty"`
	Problem      string                 `json:"problem,omitempty"`
	Approach     string                 `json:"approach,omitempty"`
	Architecture string                 `json:"architecture,omitempty"`
	Outcome      string                 `json:"outcome,omitempty"`
	Media        []siteconfig.Media     `json:"media,omitempty"`
	Metrics      []string               `json:"metrics,omitempty"`
	DecisionLog  []siteconfig.Decision  `json:"decisionLog,omitempty"`
}

// allowedSections is what a detail level may show at most.
func allowedSections(level siteconfig.DetailLevel) siteconfig.SectionsConfig {
	switch level {
	case siteconfig.DetailBrief:
		return siteconfig.SectionsConfig{Overview: true}
	case siteconfig.DetailDeep:
		return siteconfig.DefaultSections()
	default:
		return siteconfig.SectionsConfig{
			Overview: true,
			Problem:  true,
			Approach: true,
			Outcome:  true,
			Media:    true,
			Metrics:  true,
		}
	}
}

// VisibleSections intersects the detail level with the project's own config.
// Confidential projects never show media.
func VisibleSections(p Project) siteconfig.SectionsConfig {
	max := allowedSections(p.DetailLevel)
	c := p.Sections
	out := siteconfig.SectionsConfig{
		Overview:     max.Overview && c.Overview,
		Problem:      max.Problem && c.Problem,
		Approach:     max.Approach && c.Approach,
		Architecture: max.Architecture && c.Architecture,
		Media:        max.Media && c.Media,
		Metrics:      max.Metrics && c.Metrics,
		DecisionLog:  max.DecisionLog && c.DecisionLog,
		Outcome:      max.Outcome && c.Outcome,
	}
	if p.Status == siteconfig.StatusConfidential {
		out.Media = false
	}
	return out
}

// View builds the public view of p.
func (s *ContentService) View(p Project) ProjectView {
	vis := VisibleSections(p)
	v := ProjectView{ProjectCard: p.Card(), DetailLevel: p.DetailLevel}

	render := func(field, src string) string {
		html, err := s.md.Render(src)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"slug":  p.Slug,
				"field": field,
			}).Warn("markdown render failed")
			return ""
		}
		return html
	}

	if vis.Overview {
		v.Overview = render("overview", p.Content.Overview)
	}
	if vis.Problem {
		v.Problem = render("problem", p.Content.Problem)
	}
	if vis.Approach {
		v.Approach = render("approach", p.Content.Approach)
	}
	if vis.Architecture {
		v.Architecture = render("architecture", p.Content.Architecture)
	}
	if vis.Outcome {
		v.Outcome = render("outcome", p.Content.Outcome)
	}
	if vis.Media && len(p.Media) > 0 {
		v.Media = p.Media
	}
	if vis.Metrics && len(p.Metrics) > 0 {
		v.Metrics = p.Metrics
	}
	if vis.DecisionLog && len(p.DecisionLog) > 0 {
		v.DecisionLog = p.DecisionLog
	}
	return v
}
