package admin

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/localnerve/portfolio-site/internal/auth"
	"github.com/localnerve/portfolio-site/internal/cache"
	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/services"
	"github.com/localnerve/portfolio-site/internal/testutil"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = testutil.FakeUser{ID: "user-owner", Email: "owner@example.com", Password: "owner-pass"}
	stranger = testutil.FakeUser{ID: "user-stranger", Email: "stranger@example.com", Password: "stranger-pass"}
)

func readyConfig() *config.Config {
	return &config.Config{
		DBType:        "sqlite-pure",
		DBDatabase:    "site.db",
		AuthzURL:      "http://authorizer.local:8080",
		AuthzClientID: "client",
	}
}

func backendFor(cfg *config.Config, gw *gateway.Gateway) *GatewayBackend {
	return NewGatewayBackend(cfg, services.NewContentService(gw, cache.New(cache.NewMemory(nil)), services.Options{}))
}

type harness struct {
	gw    *gateway.Gateway
	store *auth.Store
	gate  *Gate
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gw := gateway.New(testutil.OpenTestDB(t))
	store := auth.NewStore(testutil.NewFakeProvider(owner, stranger), nil)
	gate := NewGate(backendFor(readyConfig(), gw), store.Scope("sid-1"))
	gate.Start(context.Background())
	t.Cleanup(gate.Close)
	return &harness{gw: gw, store: store, gate: gate}
}

func (h *harness) signIn(t *testing.T, u testutil.FakeUser) {
	t.Helper()
	_, err := h.store.SignIn(context.Background(), "sid-1", u.Email, u.Password)
	require.NoError(t, err)
}

func await(t *testing.T, g *Gate) View {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Await(ctx)
}

func TestGateFreshDeploymentClaim(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, StateUnauthenticated, await(t, h.gate).State)

	h.signIn(t, owner)
	v := await(t, h.gate)
	assert.Equal(t, StateClaimAvailable, v.State)
	assert.Equal(t, owner.Email, v.Email)

	res, v := h.gate.Claim(context.Background())
	assert.True(t, res.Success, res.Error)
	assert.Equal(t, StateAuthorized, v.State)

	// A second claim is refused by the server, not the gate
	res, v = h.gate.Claim(context.Background())
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, StateAuthorized, v.State)
}

func TestGateWrongUser(t *testing.T) {
	h := newHarness(t)
	res, err := h.gw.ClaimAdmin(context.Background(), owner.ID)
	require.NoError(t, err)
	require.True(t, res.Success)

	h.signIn(t, stranger)
	assert.Equal(t, StateNotAuthorized, await(t, h.gate).State)

	res, v := h.gate.Claim(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, StateNotAuthorized, v.State)

	require.NoError(t, h.store.SignOut(context.Background(), "sid-1"))
	v = await(t, h.gate)
	assert.Equal(t, StateUnauthenticated, v.State)
	assert.Empty(t, v.Email)
}

func TestGateBootstrapToken(t *testing.T) {
	h := newHarness(t)
	hash, err := gateway.HashBootstrapToken("let-me-in")
	require.NoError(t, err)
	require.NoError(t, h.gw.SetBootstrapToken(context.Background(), hash))

	h.signIn(t, owner)
	assert.Equal(t, StateTokenRequired, await(t, h.gate).State)

	res, v := h.gate.Claim(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, StateTokenRequired, v.State)

	res, v = h.gate.Bootstrap(context.Background(), "wrong")
	assert.False(t, res.Success)
	assert.Equal(t, StateTokenRequired, v.State)

	res, v = h.gate.Bootstrap(context.Background(), "let-me-in")
	assert.True(t, res.Success, res.Error)
	assert.Equal(t, StateAuthorized, v.State)
}

func TestGateProposalWithoutSession(t *testing.T) {
	h := newHarness(t)
	res, v := h.gate.Claim(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, msgSignInFirst, res.Error)
	assert.Equal(t, StateUnauthenticated, v.State)
}

func TestGateEnvMissing(t *testing.T) {
	store := auth.NewStore(testutil.NewFakeProvider(owner), nil)
	gw := gateway.Unconfigured([]string{"DB_DATABASE"})
	gate := NewGate(backendFor(&config.Config{DBType: "sqlite-pure"}, gw), store.Scope("sid-1"))
	gate.Start(context.Background())
	defer gate.Close()

	_, err := store.SignIn(context.Background(), "sid-1", owner.Email, owner.Password)
	require.NoError(t, err)

	v := await(t, gate)
	assert.Equal(t, StateEnvMissing, v.State)
	assert.Contains(t, v.Message, "DB_DATABASE")
}

func TestGateSchemaMissing(t *testing.T) {
	store := auth.NewStore(testutil.NewFakeProvider(owner), nil)
	gw := gateway.New(testutil.OpenBareDB(t))
	gate := NewGate(backendFor(readyConfig(), gw), store.Scope("sid-1"))
	gate.Start(context.Background())
	defer gate.Close()

	assert.Equal(t, StateSchemaMissing, await(t, gate).State)
}

// scriptedBackend answers identity checks from fields; IsAdmin for a user in
// block waits for that channel to close. Check reports the schema missing
// while down is set, and each call takes a value from hold when it is non-nil.
type scriptedBackend struct {
	status    gateway.BootstrapStatus
	statusErr error
	admin     string
	block     map[string]chan struct{}
	down      atomic.Bool
	hold      chan struct{}
	checks    atomic.Int32
}

func (b *scriptedBackend) Check(ctx context.Context) Check {
	b.checks.Add(1)
	if b.hold != nil {
		select {
		case <-b.hold:
		case <-ctx.Done():
		}
	}
	if b.down.Load() {
		return Check{EnvReady: true, Message: "database unreachable"}
	}
	return Check{EnvReady: true, SchemaReady: true}
}

func (b *scriptedBackend) BootstrapStatus(context.Context) (gateway.BootstrapStatus, error) {
	return b.status, b.statusErr
}

func (b *scriptedBackend) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if ch, ok := b.block[userID]; ok {
		select {
		case <-ch:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return userID == b.admin, nil
}

func (b *scriptedBackend) ClaimAdmin(context.Context, string) (gateway.ActionResult, error) {
	return gateway.ActionResult{}, errors.New("not scripted")
}

func (b *scriptedBackend) BootstrapSetAdmin(context.Context, string, string) (gateway.ActionResult, error) {
	return gateway.ActionResult{}, errors.New("not scripted")
}

func TestGateDiscardsStaleIdentityCheck(t *testing.T) {
	release := make(chan struct{})
	backend := &scriptedBackend{
		status: gateway.BootstrapStatus{Bootstrapped: true},
		admin:  owner.ID,
		block:  map[string]chan struct{}{stranger.ID: release},
	}
	store := auth.NewStore(testutil.NewFakeProvider(owner, stranger), nil)
	gate := NewGate(backend, store.Scope("sid-1"))
	gate.Start(context.Background())
	defer gate.Close()

	_, err := store.SignIn(context.Background(), "sid-1", stranger.Email, stranger.Password)
	require.NoError(t, err)
	assert.Equal(t, StateResolving, gate.View().State)

	_, err = store.SignIn(context.Background(), "sid-1", owner.Email, owner.Password)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return gate.View().State == StateAuthorized
	}, 2*time.Second, 5*time.Millisecond)

	// The stranger's check finishes last and must not overwrite the owner's
	close(release)
	v := await(t, gate)
	assert.Equal(t, StateAuthorized, v.State)
	assert.Equal(t, owner.Email, v.Email)
}

func TestGateIdentityCheckFailureFailsClosed(t *testing.T) {
	backend := &scriptedBackend{
		statusErr: types.NewError(types.KindBackend, "bootstrap_status", "connection reset", nil),
	}
	store := auth.NewStore(testutil.NewFakeProvider(owner), nil)
	gate := NewGate(backend, store.Scope("sid-1"))
	gate.Start(context.Background())
	defer gate.Close()

	_, err := store.SignIn(context.Background(), "sid-1", owner.Email, owner.Password)
	require.NoError(t, err)

	v := await(t, gate)
	assert.Equal(t, StateSchemaMissing, v.State)
	assert.Contains(t, v.Message, "connection reset")
}

func TestGateConfigErrorDuringCheck(t *testing.T) {
	backend := &scriptedBackend{statusErr: types.ErrConfigMissing}
	store := auth.NewStore(testutil.NewFakeProvider(owner), nil)
	gate := NewGate(backend, store.Scope("sid-1"))
	gate.Start(context.Background())
	defer gate.Close()

	_, err := store.SignIn(context.Background(), "sid-1", owner.Email, owner.Password)
	require.NoError(t, err)
	assert.Equal(t, StateEnvMissing, await(t, gate).State)
}

func TestRegistrySweep(t *testing.T) {
	clock := testutil.FixedClock()
	store := auth.NewStore(testutil.NewFakeProvider(owner), nil)
	reg := NewRegistry(&scriptedBackend{}, store, time.Minute, clock.Now)

	g1 := reg.Get(context.Background(), "a")
	assert.Same(t, g1, reg.Get(context.Background(), "a"))
	reg.Get(context.Background(), "b")
	assert.Equal(t, 2, reg.Len())

	clock.Advance(30 * time.Second)
	reg.Get(context.Background(), "a")
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 1, reg.Len())

	reg.Forget("a")
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryEnterRerunsDiagnostics(t *testing.T) {
	backend := &scriptedBackend{
		status: gateway.BootstrapStatus{Bootstrapped: true},
		admin:  owner.ID,
	}
	backend.down.Store(true)
	store := auth.NewStore(testutil.NewFakeProvider(owner), nil)
	reg := NewRegistry(backend, store, time.Minute, nil)
	t.Cleanup(func() { reg.Forget("sid-1") })
	ctx := context.Background()

	v := await(t, reg.Enter(ctx, "sid-1"))
	assert.Equal(t, StateSchemaMissing, v.State)
	assert.Equal(t, "database unreachable", v.Message)

	backend.down.Store(false)
	assert.Equal(t, StateUnauthenticated, await(t, reg.Enter(ctx, "sid-1")).State)

	// Get alone does not rerun diagnostics
	backend.down.Store(true)
	assert.Equal(t, StateUnauthenticated, await(t, reg.Get(ctx, "sid-1")).State)
	assert.Equal(t, StateSchemaMissing, await(t, reg.Enter(ctx, "sid-1")).State)

	_, err := store.SignIn(ctx, "sid-1", owner.Email, owner.Password)
	require.NoError(t, err)
	assert.Equal(t, StateSchemaMissing, await(t, reg.Get(ctx, "sid-1")).State)

	backend.down.Store(false)
	v = await(t, reg.Enter(ctx, "sid-1"))
	assert.Equal(t, StateAuthorized, v.State)
	assert.Equal(t, owner.Email, v.Email)
	assert.Empty(t, v.Message)
}

func TestGateSignInRerunsFailedDiagnostics(t *testing.T) {
	backend := &scriptedBackend{status: gateway.BootstrapStatus{TokenConfigured: false}}
	backend.down.Store(true)
	store := auth.NewStore(testutil.NewFakeProvider(owner), nil)
	gate := NewGate(backend, store.Scope("sid-1"))
	gate.Start(context.Background())
	defer gate.Close()
	require.Equal(t, StateSchemaMissing, await(t, gate).State)

	backend.down.Store(false)
	_, err := store.SignIn(context.Background(), "sid-1", owner.Email, owner.Password)
	require.NoError(t, err)

	v := await(t, gate)
	assert.Equal(t, StateClaimAvailable, v.State)
	assert.Equal(t, owner.Email, v.Email)
}

func TestGateOverlappingDiagnostics(t *testing.T) {
	backend := &scriptedBackend{hold: make(chan struct{})}
	store := auth.NewStore(testutil.NewFakeProvider(owner), nil)
	gate := NewGate(backend, store.Scope("sid-1"))

	finished := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			gate.Refresh(context.Background())
			finished <- struct{}{}
		}()
	}
	require.Eventually(t, func() bool {
		return backend.checks.Load() == 2
	}, 2*time.Second, 5*time.Millisecond)

	wait := func() {
		t.Helper()
		select {
		case <-finished:
		case <-time.After(2 * time.Second):
			t.Fatal("refresh did not finish")
		}
	}

	backend.hold <- struct{}{}
	wait()
	assert.Equal(t, StateChecking, gate.View().State)

	backend.hold <- struct{}{}
	wait()
	assert.Equal(t, StateUnauthenticated, await(t, gate).State)
}
