package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsSummary(t *testing.T) {
	g, clock := newTestGateway(t)
	ctx := context.Background()

	record := func(kind, path, session string) {
		require.NoError(t, g.RecordEvent(ctx, &models.AnalyticsEvent{Kind: kind, Path: path, SessionID: session}))
	}

	record("page_view", "/old", "s0")
	clock.Advance(time.Hour)
	since := clock.Now()
	clock.Advance(time.Minute)

	record("page_view", "/", "s1")
	record("page_view", "/", "s2")
	record("page_view", "/projects", "s1")
	record("outbound_click", "/writing", "s2")

	sum, err := g.AnalyticsSummary(ctx, since)
	require.NoError(t, err)
	assert.EqualValues(t, 4, sum.Total)
	assert.EqualValues(t, 2, sum.Sessions)
	assert.Equal(t, []KindCount{{Kind: "page_view", Total: 3}, {Kind: "outbound_click", Total: 1}}, sum.ByKind)
	require.NotEmpty(t, sum.TopPaths)
	assert.Equal(t, PathCount{Kind: "page_view", Path: "/", Total: 2}, sum.TopPaths[0])
}

func TestAnalyticsSummaryEmpty(t *testing.T) {
	g, _ := newTestGateway(t)
	sum, err := g.AnalyticsSummary(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Zero(t, sum.Total)
	assert.NotNil(t, sum.ByKind)
	assert.NotNil(t, sum.TopPaths)
}
