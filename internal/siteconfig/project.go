package siteconfig

import "strings"

// SectionsConfig selects which project blocks are shown.
type SectionsConfig struct {
	Overview     bool `json:"overview"`
	Problem      bool `json:"problem"`
	Approach     bool `json:"approach"`
	Architecture bool `json:"architecture"`
	Media        bool `json:"media"`
	Metrics      bool `json:"metrics"`
	DecisionLog  bool `json:"decisionLog"`
	Outcome      bool `json:"outcome"`
}

// ProjectContent holds the narrative fields of a project, as markdown.
type ProjectContent struct {
	Overview     string `json:"overview"`
	Problem      string `json:"problem"`
	Approach     string `json:"approach"`
	Architecture string `json:"architecture"`
	Outcome      string `json:"outcome"`
}

// MediaType is image or video.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Media is one gallery entry.
type Media struct {
	Type    MediaType `json:"type"`
	URL     string    `json:"url"`
	Caption string    `json:"caption,omitempty"`
}

// Decision is one decision log entry.
type Decision struct {
	Decision string `json:"decision"`
	Tradeoff string `json:"tradeoff"`
	Outcome  string `json:"outcome"`
}

const maxDecisionLength = 2000

// ParseSections validates a sections config; each missing or non-boolean flag
// takes its default.
func ParseSections(input any) SectionsConfig {
	m, ok := decodeObject(input)
	if !ok {
		return DefaultSections()
	}
	def := DefaultSections()
	return SectionsConfig{
		Overview:     boolField(m, "overview", def.Overview),
		Problem:      boolField(m, "problem", def.Problem),
		Approach:     boolField(m, "approach", def.Approach),
		Architecture: boolField(m, "architecture", def.Architecture),
		Media:        boolField(m, "media", def.Media),
		Metrics:      boolField(m, "metrics", def.Metrics),
		DecisionLog:  boolField(m, "decisionLog", def.DecisionLog),
		Outcome:      boolField(m, "outcome", def.Outcome),
	}
}

// ParseContent validates the narrative fields.
func ParseContent(input any) ProjectContent {
	m, ok := decodeObject(input)
	if !ok {
		return ProjectContent{}
	}
	return ProjectContent{
		Overview:     trimmedText(m, "overview", MaxTextLength),
		Problem:      trimmedText(m, "problem", MaxTextLength),
		Approach:     trimmedText(m, "approach", MaxTextLength),
		Architecture: trimmedText(m, "architecture", MaxTextLength),
		Outcome:      trimmedText(m, "outcome", MaxTextLength),
	}
}

// ParseMedia keeps well formed media entries.
func ParseMedia(input any) []Media {
	arr, ok := decodeArray(input)
	if !ok {
		return []Media{}
	}
	out := make([]Media, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		typ, _ := stringField(m, "type")
		mt := MediaType(strings.ToLower(strings.TrimSpace(typ)))
		if mt != MediaImage && mt != MediaVideo {
			continue
		}
		link := SafeURL(m["url"])
		if link == "" {
			continue
		}
		out = append(out, Media{Type: mt, URL: link, Caption: trimmedText(m, "caption", 500)})
	}
	return out
}

// ParseMetrics keeps the non-empty metric strings.
func ParseMetrics(input any) []string {
	return ParseStringArray(input)
}

// ParseDecisionLog keeps entries that name a decision.
func ParseDecisionLog(input any) []Decision {
	arr, ok := decodeArray(input)
	if !ok {
		return []Decision{}
	}
	out := make([]Decision, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		d := Decision{
			Decision: trimmedText(m, "decision", maxDecisionLength),
			Tradeoff: trimmedText(m, "tradeoff", maxDecisionLength),
			Outcome:  trimmedText(m, "outcome", maxDecisionLength),
		}
		if d.Decision == "" {
			continue
		}
		out = append(out, d)
	}
	return out
}
