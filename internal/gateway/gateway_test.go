package gateway

import (
	"context"
	"testing"

	"github.com/localnerve/portfolio-site/internal/testutil"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newTestGateway(t *testing.T) (*Gateway, *testutil.StubClock) {
	t.Helper()
	clock := testutil.FixedClock()
	return New(testutil.OpenTestDB(t), WithClock(clock.Now)), clock
}

func TestUnconfiguredGateway(t *testing.T) {
	g := Unconfigured([]string{"DB_HOST", "AUTHZ_URL"})
	assert.False(t, g.Configured())

	_, err := g.PublicSettings(context.Background())
	assert.ErrorIs(t, err, types.ErrConfigMissing)
	assert.Contains(t, err.Error(), "DB_HOST, AUTHZ_URL")

	_, err = g.ClaimAdmin(context.Background(), "user-1")
	assert.ErrorIs(t, err, types.ErrConfigMissing)
}

func TestSchemaMissing(t *testing.T) {
	g := New(testutil.OpenBareDB(t))

	assert.ErrorIs(t, g.CheckSchema(context.Background()), types.ErrSchemaMissing)
	_, err := g.ListProjects(context.Background(), ProjectQuery{})
	assert.ErrorIs(t, err, types.ErrSchemaMissing)
	_, err = g.BootstrapStatus(context.Background())
	assert.ErrorIs(t, err, types.ErrSchemaMissing)
}

func TestCheckSchemaAndPing(t *testing.T) {
	g, _ := newTestGateway(t)
	assert.NoError(t, g.Ping(context.Background()))
	assert.NoError(t, g.CheckSchema(context.Background()))
}

func TestPanicIsRecovered(t *testing.T) {
	g, _ := newTestGateway(t)
	err := g.run(context.Background(), "explode", func(*gorm.DB) error {
		panic("boom")
	})
	assert.Equal(t, types.KindBackend, types.KindOf(err))
	assert.Contains(t, err.Error(), "boom")
}
