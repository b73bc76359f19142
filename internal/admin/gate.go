// gate.go
//
// Personal portfolio site service: public content pages and a single-admin content API
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of portfolio-site.
// portfolio-site is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// portfolio-site is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with portfolio-site.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package admin

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/localnerve/portfolio-site/internal/auth"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/logging"
	"github.com/localnerve/portfolio-site/internal/types"
	"github.com/localnerve/portfolio-site/internal/utils"
	"github.com/sirupsen/logrus"
)

// checkTimeout bounds one identity check.
const checkTimeout = 10 * time.Second

// Refusal messages for proposals made without a session.
const msgSignInFirst = "sign in first"

// View is the gate state as served to the admin UI.
type View struct {
	State   State  `json:"state"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
}

// Gate tracks the admin state of one browser session. Session changes arrive
// through a listener; each one starts an identity check on its own goroutine,
// tagged with a generation so that only the newest check is applied.
// Diagnostics are numbered the same way and may overlap.
type Gate struct {
	backend  Backend
	sessions auth.SessionSource
	log      *logrus.Entry

	mu           sync.Mutex
	snap         Snapshot
	session      *auth.Session
	sessVer      uint64
	message      string
	gen          uint64
	checks       int
	checkSeq     uint64
	checkApplied uint64
	pending      int
	settled      chan struct{}
	unsubscribe  func()
}

// NewGate builds a gate. Call Start before use.
func NewGate(backend Backend, sessions auth.SessionSource) *Gate {
	settled := make(chan struct{})
	close(settled)
	return &Gate{
		backend:  backend,
		sessions: sessions,
		log:      logging.Component("admin"),
		snap:     Snapshot{EnvReady: true, Checking: true},
		settled:  settled,
	}
}

// Start subscribes to session changes and runs the first evaluation. The
// listener is registered before the initial session fetch so no change in
// between is lost.
func (g *Gate) Start(ctx context.Context) {
	unsubscribe := g.sessions.Subscribe(g.onSession)
	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()
	g.Refresh(ctx)
}

// Close stops listening for session changes.
func (g *Gate) Close() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Refresh reruns diagnostics and, when they pass, re-reads the session and
// schedules a fresh identity check. Await waits for a Refresh in progress.
func (g *Gate) Refresh(ctx context.Context) {
	g.mu.Lock()
	g.begin()
	g.checks++
	g.snap.Checking = true
	g.checkSeq++
	seq := g.checkSeq
	ver := g.sessVer
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.done()
		g.mu.Unlock()
	}()

	check := g.backend.Check(ctx)

	g.mu.Lock()
	g.checks--
	g.snap.Checking = g.checks > 0
	if seq < g.checkApplied {
		// A newer diagnostic already landed
		g.mu.Unlock()
		return
	}
	g.checkApplied = seq
	g.snap.EnvReady = check.EnvReady
	g.snap.SchemaReady = check.SchemaReady
	g.message = check.Message
	ready := check.EnvReady && check.SchemaReady
	if !ready {
		// Nothing pending may overwrite this
		g.gen++
		g.snap.Resolving = false
	}
	g.mu.Unlock()

	if !ready {
		return
	}

	sess, err := g.sessions.Current(ctx)
	if err != nil {
		g.log.WithError(err).Warn("session lookup failed")
		sess = nil
	}

	g.mu.Lock()
	if g.sessVer != ver {
		// The listener saw a newer session while we read it
		sess = g.session
	}
	gen, launch := g.setSession(sess)
	g.mu.Unlock()
	if launch {
		go g.resolve(gen, *sess)
	}
}

// onSession runs on the goroutine that changed the session. It only records
// the change and schedules work elsewhere. A sign-in while diagnostics are
// failing reruns them, so a recovered backend is noticed.
func (g *Gate) onSession(sess *auth.Session) {
	g.mu.Lock()
	g.sessVer++
	gen, launch := g.setSession(sess)
	recheck := sess != nil && !launch
	if recheck {
		g.begin()
	}
	g.mu.Unlock()

	switch {
	case launch:
		go g.resolve(gen, *sess)
	case recheck:
		go g.recheck()
	}
}

func (g *Gate) recheck() {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	g.Refresh(ctx)

	g.mu.Lock()
	g.done()
	g.mu.Unlock()
}

// setSession records sess and reports whether an identity check should run.
// When it should, the check is already counted as pending. Must be called
// with g.mu held.
func (g *Gate) setSession(sess *auth.Session) (uint64, bool) {
	g.gen++
	g.session = sess
	g.snap.SignedIn = sess != nil
	g.snap.Bootstrapped = false
	g.snap.TokenConfigured = nil
	g.snap.IsAdmin = nil

	if sess == nil || !g.snap.EnvReady || !g.snap.SchemaReady {
		g.snap.Resolving = false
		return g.gen, false
	}

	g.snap.Resolving = true
	g.begin()
	return g.gen, true
}

type identity struct {
	status  gateway.BootstrapStatus
	isAdmin bool
	err     error
}

func (g *Gate) lookup(sess auth.Session) identity {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	status, err := g.backend.BootstrapStatus(ctx)
	if err != nil {
		return identity{err: err}
	}
	if !status.Bootstrapped {
		return identity{status: status}
	}
	isAdmin, err := g.backend.IsAdmin(ctx, sess.UserID)
	if err != nil {
		return identity{err: err}
	}
	return identity{status: status, isAdmin: isAdmin}
}

func (g *Gate) resolve(gen uint64, sess auth.Session) {
	id := g.lookup(sess)

	g.mu.Lock()
	defer g.mu.Unlock()
	defer g.done()

	if gen != g.gen {
		g.log.WithFields(logrus.Fields{"generation": gen, "current": g.gen}).Debug("discarding stale identity check")
		return
	}

	g.snap.Resolving = false
	if id.err != nil {
		// Fail closed
		if errors.Is(id.err, types.ErrConfigMissing) {
			g.snap.EnvReady = false
		} else {
			g.snap.SchemaReady = false
		}
		g.message = utils.SanitizeErr(id.err)
		g.log.WithError(id.err).Warn("identity check failed")
		return
	}

	g.snap.Bootstrapped = id.status.Bootstrapped
	token := id.status.TokenConfigured
	g.snap.TokenConfigured = &token
	if id.status.Bootstrapped {
		isAdmin := id.isAdmin
		g.snap.IsAdmin = &isAdmin
	}
	g.message = ""
}

// begin and done count work Await waits for. Both must be called with g.mu
// held.
func (g *Gate) begin() {
	if g.pending == 0 {
		g.settled = make(chan struct{})
	}
	g.pending++
}

func (g *Gate) done() {
	g.pending--
	if g.pending == 0 {
		close(g.settled)
	}
}

// View returns the current state without waiting.
func (g *Gate) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

func (g *Gate) viewLocked() View {
	v := View{State: Resolve(g.snap)}
	if g.session != nil && g.snap.SignedIn {
		v.Email = g.session.Email
	}
	switch v.State {
	case StateEnvMissing, StateSchemaMissing:
		v.Message = g.message
	}
	return v
}

// Await waits until no diagnostic or identity check is pending, or ctx ends, and returns
// the state at that point.
func (g *Gate) Await(ctx context.Context) View {
	for {
		g.mu.Lock()
		if g.pending == 0 {
			v := g.viewLocked()
			g.mu.Unlock()
			return v
		}
		settled := g.settled
		g.mu.Unlock()

		select {
		case <-settled:
		case <-ctx.Done():
			return g.View()
		}
	}
}

// Session returns the signed-in session, if any.
func (g *Gate) Session() *auth.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil
	}
	cp := *g.session
	return &cp
}

// Claim proposes the signed-in user as admin, then refreshes. The server
// decides; a refusal comes back as a result, not an error.
func (g *Gate) Claim(ctx context.Context) (gateway.ActionResult, View) {
	return g.propose(ctx, func(userID string) (gateway.ActionResult, error) {
		return g.backend.ClaimAdmin(ctx, userID)
	})
}

// Bootstrap proposes the signed-in user as admin with a bootstrap token.
func (g *Gate) Bootstrap(ctx context.Context, token string) (gateway.ActionResult, View) {
	return g.propose(ctx, func(userID string) (gateway.ActionResult, error) {
		return g.backend.BootstrapSetAdmin(ctx, userID, token)
	})
}

func (g *Gate) propose(ctx context.Context, call func(userID string) (gateway.ActionResult, error)) (gateway.ActionResult, View) {
	sess := g.Session()
	if sess == nil {
		return gateway.ActionResult{Error: msgSignInFirst}, g.View()
	}

	res, err := call(sess.UserID)
	if err != nil {
		g.log.WithError(err).Warn("admin proposal failed")
		res = gateway.ActionResult{Error: utils.SanitizeErr(err)}
	}

	g.Refresh(ctx)
	return res, g.Await(ctx)
}
