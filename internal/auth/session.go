// session.go
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

// Package auth holds browser sessions for the admin area. The identity
// provider is behind Provider; its tokens never leave the server.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrInvalidCredentials is returned when the provider rejects a sign-in.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Credentials is what a provider returns for a successful sign-in.
type Credentials struct {
	UserID      string
	Email       string
	AccessToken string
	ExpiresAt   time.Time
}

// Provider authenticates users against the identity service.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Credentials, error)
	Validate(ctx context.Context, accessToken string) (userID string, err error)
	SignOut(ctx context.Context, accessToken string) error
}

// Session is an authenticated browser session.
type Session struct {
	ID          string    `json:"-"`
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Listener receives session changes; nil means signed out. Listeners run on
// the goroutine that caused the change and must not block.
type Listener func(*Session)

// SessionSource is the per-browser view of the Store.
type SessionSource interface {
	Current(ctx context.Context) (*Session, error)
	Subscribe(fn Listener) (unsubscribe func())
}

// Store keeps sessions by browser session id.
type Store struct {
	provider Provider
	now      func() time.Time
	log      *logrus.Entry

	mu        sync.Mutex
	sessions  map[string]*Session
	listeners map[string]map[uint64]Listener
	nextID    uint64
}

// NewStore returns an empty Store. now may be nil.
func NewStore(provider Provider, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		provider:  provider,
		now:       now,
		log:       logrus.WithField("component", "auth"),
		sessions:  make(map[string]*Session),
		listeners: make(map[string]map[uint64]Listener),
	}
}

// SignIn authenticates with the provider and binds the result to sid.
func (s *Store) SignIn(ctx context.Context, sid, email, password string) (*Session, error) {
	creds, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	sess := &Session{
		ID:          sid,
		UserID:      creds.UserID,
		Email:       creds.Email,
		AccessToken: creds.AccessToken,
		ExpiresAt:   creds.ExpiresAt,
	}

	s.mu.Lock()
	s.sessions[sid] = sess
	s.mu.Unlock()

	s.notify(sid, sess)
	return sess, nil
}

// SignOut drops the session for sid. Provider sign-out failures are logged only.
func (s *Store) SignOut(ctx context.Context, sid string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sid]
	delete(s.sessions, sid)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	if err := s.provider.SignOut(ctx, sess.AccessToken); err != nil {
		s.log.WithError(err).Warn("provider sign-out failed")
	}
	s.notify(sid, nil)
	return nil
}

// Current returns the live session for sid, or nil. An expired session is
// dropped and listeners are told.
func (s *Store) Current(_ context.Context, sid string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sid]
	expired := ok && !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt)
	if expired {
		delete(s.sessions, sid)
	}
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}
	if expired {
		s.notify(sid, nil)
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

// Subscribe registers fn for changes to sid.
func (s *Store) Subscribe(sid string, fn Listener) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	if s.listeners[sid] == nil {
		s.listeners[sid] = make(map[uint64]Listener)
	}
	s.listeners[sid][id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners[sid], id)
		if len(s.listeners[sid]) == 0 {
			delete(s.listeners, sid)
		}
	}
}

// Scope binds the store to one browser session id.
func (s *Store) Scope(sid string) SessionSource {
	return scoped{store: s, sid: sid}
}

func (s *Store) notify(sid string, sess *Session) {
	s.mu.Lock()
	fns := make([]Listener, 0, len(s.listeners[sid]))
	for _, fn := range s.listeners[sid] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		if sess == nil {
			fn(nil)
			continue
		}
		cp := *sess
		fn(&cp)
	}
}

type scoped struct {
	store *Store
	sid   string
}

func (s scoped) Current(ctx context.Context) (*Session, error) {
	return s.store.Current(ctx, s.sid)
}

func (s scoped) Subscribe(fn Listener) func() {
	return s.store.Subscribe(s.sid, fn)
}
