package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimAdmin(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	status, err := g.BootstrapStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, BootstrapStatus{}, status)

	res, err := g.ClaimAdmin(ctx, "")
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = g.ClaimAdmin(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = g.ClaimAdmin(ctx, "user-2")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, msgAlreadyClaimed, res.Error)

	isAdmin, err := g.IsAdmin(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, isAdmin)
	isAdmin, err = g.IsAdmin(ctx, "user-2")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	status, err = g.BootstrapStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Bootstrapped)
}

func TestConcurrentClaimHasOneWinner(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	const claimants = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
	)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			res, err := g.ClaimAdmin(ctx, id)
			if err != nil {
				t.Errorf("claim %s: %v", id, err)
				return
			}
			if res.Success {
				mu.Lock()
				winners = append(winners, id)
				mu.Unlock()
			}
		}(fmt.Sprintf("user-%d", i))
	}
	wg.Wait()

	require.Len(t, winners, 1)
	row, err := g.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, winners[0], row.AdminUserID)
}

func TestBootstrapToken(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	hash, err := HashBootstrapToken("open-sesame")
	require.NoError(t, err)
	require.NoError(t, g.SetBootstrapToken(ctx, hash))

	status, err := g.BootstrapStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, BootstrapStatus{TokenConfigured: true}, status)

	// A token blocks the plain claim
	res, err := g.ClaimAdmin(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, ActionResult{Error: msgTokenRequired}, res)

	res, err = g.BootstrapSetAdmin(ctx, "user-1", "wrong")
	require.NoError(t, err)
	assert.Equal(t, ActionResult{Error: msgBadToken}, res)

	res, err = g.BootstrapSetAdmin(ctx, "user-1", "open-sesame")
	require.NoError(t, err)
	assert.True(t, res.Success)

	row, err := g.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", row.AdminUserID)
	assert.Empty(t, row.BootstrapTokenHash)

	res, err = g.BootstrapSetAdmin(ctx, "user-2", "open-sesame")
	require.NoError(t, err)
	assert.Equal(t, ActionResult{Error: msgAlreadyClaimed}, res)

	assert.ErrorIs(t, g.SetBootstrapToken(ctx, hash), types.ErrConflict)
}

func TestBootstrapWithoutToken(t *testing.T) {
	g, _ := newTestGateway(t)
	res, err := g.BootstrapSetAdmin(context.Background(), "user-1", "anything")
	require.NoError(t, err)
	assert.Equal(t, ActionResult{Error: msgNoToken}, res)
}

func TestHashBootstrapTokenLimits(t *testing.T) {
	_, err := HashBootstrapToken("")
	assert.ErrorIs(t, err, types.ErrValidation)
	_, err = HashBootstrapToken(strings.Repeat("x", MaxBootstrapTokenLength+1))
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestSeedDemoContentIsIdempotent(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	demo := Demo{
		Projects: []models.Project{*project("demo-one", true, true), *project("demo-two", false, true)},
		Categories: []DemoCategory{{
			Category: models.WritingCategory{Name: "Essays", Enabled: true},
			Items: []models.WritingItem{
				{Title: "First", URL: "https://example.com/first", Language: "en", Enabled: true},
				{Title: "Second", URL: "https://example.com/second", Language: "en", Enabled: true},
			},
		}},
	}

	counts, err := g.SeedDemoContent(ctx, demo)
	require.NoError(t, err)
	assert.Equal(t, SeedCounts{Projects: 2, Categories: 1, WritingItems: 2}, counts)

	counts, err = g.SeedDemoContent(ctx, demo)
	require.NoError(t, err)
	assert.Equal(t, SeedCounts{}, counts)

	items, err := g.ListWritingItems(ctx, true)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].CategoryID)
}
