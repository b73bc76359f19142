package gateway

import (
	"context"
	"testing"

	"github.com/localnerve/portfolio-site/internal/models"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(title string, cat *models.WritingCategory, order int) *models.WritingItem {
	w := &models.WritingItem{
		Title:      title,
		URL:        "https://example.com/" + title,
		Language:   "en",
		Enabled:    true,
		OrderIndex: order,
	}
	if cat != nil {
		w.CategoryID = &cat.ID
	}
	return w
}

func TestWritingVisibility(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	on := &models.WritingCategory{Name: "Essays", Enabled: true}
	off := &models.WritingCategory{Name: "Notes", Enabled: false, OrderIndex: 1}
	require.NoError(t, g.SaveCategory(ctx, on))
	require.NoError(t, g.SaveCategory(ctx, off))

	visible := item("visible", on, 2)
	hidden := item("hidden", off, 0)
	orphan := item("orphan", nil, 1)
	disabled := item("disabled", on, 0)
	disabled.Enabled = false
	featured := item("featured", on, 9)
	featured.Featured = true
	for _, w := range []*models.WritingItem{visible, hidden, orphan, disabled, featured} {
		require.NoError(t, g.SaveWritingItem(ctx, w))
	}

	cats, err := g.ListCategories(ctx, true)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Essays", cats[0].Name)

	items, err := g.ListWritingItems(ctx, true)
	require.NoError(t, err)
	var titles []string
	for _, w := range items {
		titles = append(titles, w.Title)
	}
	assert.Equal(t, []string{"featured", "orphan", "visible"}, titles)

	all, err := g.ListWritingItems(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestSaveWritingItemUnknownCategory(t *testing.T) {
	g, _ := newTestGateway(t)
	missing := uint(42)
	w := item("lost", nil, 0)
	w.CategoryID = &missing

	err := g.SaveWritingItem(context.Background(), w)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestDeleteCategoryDetachesItems(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	cat := &models.WritingCategory{Name: "Talks", Enabled: true}
	require.NoError(t, g.SaveCategory(ctx, cat))
	w := item("talk", cat, 0)
	require.NoError(t, g.SaveWritingItem(ctx, w))

	require.NoError(t, g.DeleteCategory(ctx, cat.ID))

	items, err := g.ListWritingItems(ctx, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].CategoryID)

	assert.ErrorIs(t, g.DeleteCategory(ctx, cat.ID), types.ErrNotFound)
	require.NoError(t, g.DeleteWritingItem(ctx, w.ID))
	assert.ErrorIs(t, g.DeleteWritingItem(ctx, w.ID), types.ErrNotFound)
}
