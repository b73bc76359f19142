// Package data holds embedded seed content.
package data

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/siteconfig"
)

//go:embed demo.toml
var DemoTOML string

type demoFile struct {
	Projects   []demoProject  `toml:"projects"`
	Categories []demoCategory `toml:"categories"`
}

type demoProject struct {
	Slug        string           `toml:"slug"`
	Title       string           `toml:"title"`
	Summary     string           `toml:"summary"`
	Tags        []string         `toml:"tags"`
	Status      string           `toml:"status"`
	DetailLevel string           `toml:"detail_level"`
	Featured    bool             `toml:"featured"`
	Published   bool             `toml:"published"`
	Sections    map[string]any   `toml:"sections"`
	Content     map[string]any   `toml:"content"`
	Media       []map[string]any `toml:"media"`
	Metrics     []string         `toml:"metrics"`
	DecisionLog []map[string]any `toml:"decision_log"`
}

type demoCategory struct {
	Name    string     `toml:"name"`
	Order   int        `toml:"order"`
	Enabled bool       `toml:"enabled"`
	Items   []demoItem `toml:"items"`
}

type demoItem struct {
	Title    string `toml:"title"`
	URL      string `toml:"url"`
	Platform string `toml:"platform"`
	Language string `toml:"language"`
	Featured bool   `toml:"featured"`
	Order    int    `toml:"order"`
	Why      string `toml:"why"`
	ShowWhy  bool   `toml:"show_why"`
}

// LoadDemo parses the embedded demo content.
func LoadDemo() (gateway.Demo, error) {
	return ParseDemo(DemoTOML)
}

// LoadDemoFile parses demo content from a TOML file on disk.
func LoadDemoFile(path string) (gateway.Demo, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return gateway.Demo{}, fmt.Errorf("failed to read demo content: %w", err)
	}
	return ParseDemo(string(src))
}

// ParseDemo parses demo content in the demo.toml layout. Every JSON column
// goes through the siteconfig parsers, so seeded rows read back unchanged.
func ParseDemo(src string) (gateway.Demo, error) {
	var f demoFile
	md, err := toml.Decode(src, &f)
	if err != nil {
		return gateway.Demo{}, fmt.Errorf("failed to parse demo content: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return gateway.Demo{}, fmt.Errorf("unknown demo content keys: %v", undecoded)
	}

	var demo gateway.Demo
	for _, p := range f.Projects {
		slug := siteconfig.SafeSlug(p.Slug)
		if slug == "" {
			return gateway.Demo{}, fmt.Errorf("demo project %q has no usable slug", p.Title)
		}
		sections := siteconfig.DefaultSections()
		if p.Sections != nil {
			sections = siteconfig.ParseSections(snakeToCamel(p.Sections))
		}
		demo.Projects = append(demo.Projects, models.Project{
			Slug:           slug,
			Title:          siteconfig.SafeText(p.Title, siteconfig.MaxLabelLength),
			Summary:        siteconfig.SafeText(p.Summary, 2000),
			Tags:           models.MustJSON(siteconfig.ParseTags(toAny(p.Tags))),
			Status:         string(siteconfig.ParseStatus(p.Status)),
			DetailLevel:    string(siteconfig.ParseDetailLevel(p.DetailLevel)),
			Featured:       p.Featured,
			Published:      p.Published,
			SectionsConfig: models.MustJSON(sections),
			Content:        models.MustJSON(siteconfig.ParseContent(p.Content)),
			Media:          models.MustJSON(siteconfig.ParseMedia(mapsToAny(p.Media))),
			Metrics:        models.MustJSON(siteconfig.ParseMetrics(toAny(p.Metrics))),
			DecisionLog:    models.MustJSON(siteconfig.ParseDecisionLog(mapsToAny(p.DecisionLog))),
		})
	}

	for _, c := range f.Categories {
		dc := gateway.DemoCategory{
			Category: models.WritingCategory{
				Name:       siteconfig.SafeText(c.Name, siteconfig.MaxLabelLength),
				OrderIndex: c.Order,
				Enabled:    c.Enabled,
			},
		}
		for _, it := range c.Items {
			url := siteconfig.SafeURL(it.URL)
			if url == "" {
				return gateway.Demo{}, fmt.Errorf("demo item %q has an invalid url", it.Title)
			}
			dc.Items = append(dc.Items, models.WritingItem{
				Title:          siteconfig.SafeText(it.Title, siteconfig.MaxLabelLength),
				URL:            url,
				Platform:       siteconfig.SafeText(it.Platform, siteconfig.MaxLabelLength),
				Language:       string(siteconfig.ParseLanguage(it.Language)),
				Featured:       it.Featured,
				Enabled:        true,
				OrderIndex:     it.Order,
				WhyThisMatters: siteconfig.SafeText(it.Why, 2000),
				ShowWhy:        it.ShowWhy,
			})
		}
		demo.Categories = append(demo.Categories, dc)
	}
	return demo, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func mapsToAny(ms []map[string]any) []any {
	out := make([]any, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

// snakeToCamel rewrites decision_log style keys to decisionLog.
func snakeToCamel(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		parts := strings.Split(k, "_")
		for i := 1; i < len(parts); i++ {
			if parts[i] != "" {
				parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
			}
		}
		out[strings.Join(parts, "")] = v
	}
	return out
}
