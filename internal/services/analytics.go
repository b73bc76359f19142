package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/siteconfig"
	"github.com/localnerve/portfolio-site/internal/types"
)

// Analytics event kinds accepted from the public surface.
const (
	EventPageView       = "page_view"
	EventProjectView    = "project_view"
	EventWritingClick   = "writing_click"
	EventResumeDownload = "resume_download"
	EventContactClick   = "contact_click"
)

var eventKinds = map[string]struct{}{
	EventPageView:       {},
	EventProjectView:    {},
	EventWritingClick:   {},
	EventResumeDownload: {},
	EventContactClick:   {},
}

// EventInput is a public analytics beacon.
type EventInput struct {
	Kind      string `json:"kind"`
	Path      string `json:"path"`
	Referrer  string `json:"referrer,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// RecordEvent validates and appends an analytics event. A missing or
// malformed session id is replaced with a new one, which is returned.
func (s *ContentService) RecordEvent(ctx context.Context, in EventInput) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(in.Kind))
	if _, ok := eventKinds[kind]; !ok {
		return "", types.NewError(types.KindValidation, "record_event", "unknown event kind", nil)
	}
	path := siteconfig.SafeText(strings.TrimSpace(in.Path), siteconfig.MaxURLLength)
	if !strings.HasPrefix(path, "/") {
		return "", types.NewError(types.KindValidation, "record_event", "path must start with /", nil)
	}

	sid := strings.TrimSpace(in.SessionID)
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
	}

	err := s.gw.RecordEvent(ctx, &models.AnalyticsEvent{
		Kind:      kind,
		Path:      path,
		Referrer:  siteconfig.SafeText(strings.TrimSpace(in.Referrer), siteconfig.MaxURLLength),
		SessionID: sid,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", err
	}
	return sid, nil
}
