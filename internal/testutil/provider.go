package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/localnerve/portfolio-site/internal/auth"
)

// FakeUser is an account known to FakeProvider.
type FakeUser struct {
	ID       string
	Email    string
	Password string
}

// FakeProvider is an in-memory auth.Provider.
type FakeProvider struct {
	mu       sync.Mutex
	users    map[string]FakeUser
	tokens   map[string]string
	signOuts int
	Now      func() time.Time
}

// NewFakeProvider knows the given users.
func NewFakeProvider(users ...FakeUser) *FakeProvider {
	p := &FakeProvider{
		users:  make(map[string]FakeUser),
		tokens: make(map[string]string),
		Now:    time.Now,
	}
	for _, u := range users {
		p.users[u.Email] = u
	}
	return p
}

func (p *FakeProvider) SignIn(_ context.Context, email, password string) (*auth.Credentials, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u, ok := p.users[email]
	if !ok || u.Password != password {
		return nil, auth.ErrInvalidCredentials
	}
	token := "token-" + u.ID
	p.tokens[token] = u.ID
	return &auth.Credentials{
		UserID:      u.ID,
		Email:       u.Email,
		AccessToken: token,
		ExpiresAt:   p.Now().Add(time.Hour),
	}, nil
}

func (p *FakeProvider) Validate(_ context.Context, accessToken string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.tokens[accessToken]
	if !ok {
		return "", auth.ErrInvalidCredentials
	}
	return id, nil
}

func (p *FakeProvider) SignOut(_ context.Context, accessToken string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.tokens, accessToken)
	p.signOuts++
	return nil
}

// SignOuts counts SignOut calls.
func (p *FakeProvider) SignOuts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.signOuts
}
