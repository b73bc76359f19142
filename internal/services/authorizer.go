package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/portfolio-site/internal/auth"
	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/utils"
	"github.com/sirupsen/logrus"
)

// AuthorizerProvider authenticates admins against an Authorizer instance.
// The client is created on first use, after the service answers a ping.
type AuthorizerProvider struct {
	url         string
	clientID    string
	redirectURL string
	now         func() time.Time
	log         *logrus.Entry

	mu     sync.Mutex
	client *authorizer.AuthorizerClient
}

var _ auth.Provider = (*AuthorizerProvider)(nil)

// NewAuthorizerProvider builds a provider from configuration.
func NewAuthorizerProvider(cfg *config.Config) *AuthorizerProvider {
	return &AuthorizerProvider{
		url:         cfg.AuthzURL,
		clientID:    cfg.AuthzClientID,
		redirectURL: cfg.SiteURL,
		now:         time.Now,
		log:         logrus.WithField("component", "authorizer"),
	}
}

// Ping checks that the Authorizer endpoint accepts connections.
func (p *AuthorizerProvider) Ping(ctx context.Context) error {
	if p.url == "" {
		return errors.New("authorizer url is not configured")
	}
	return utils.PingAuthorizer(ctx, p.url)
}

func (p *AuthorizerProvider) getClient(ctx context.Context) (*authorizer.AuthorizerClient, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}

	if err := p.Ping(ctx); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"authorizerURL": p.url,
		"clientID":      p.clientID,
		"redirectURL":   p.redirectURL,
	}).Info("initializing authorizer client")

	client, err := authorizer.NewAuthorizerClient(p.clientID, p.url, p.redirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}
	p.client = client
	return client, nil
}

// SignIn logs in with email and password.
func (p *AuthorizerProvider) SignIn(ctx context.Context, email, password string) (*auth.Credentials, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	res, err := client.Login(&authorizer.LoginInput{
		Email:    &email,
		Password: password,
	})
	if err != nil {
		if rejectedCredentials(err) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authorizer login failed: %s", utils.SanitizeErr(err))
	}
	if res == nil || res.AccessToken == nil || res.User == nil {
		return nil, auth.ErrInvalidCredentials
	}

	creds := &auth.Credentials{
		UserID:      res.User.ID,
		Email:       email,
		AccessToken: *res.AccessToken,
		ExpiresAt:   p.now().Add(time.Hour),
	}
	if res.ExpiresIn != nil && *res.ExpiresIn > 0 {
		creds.ExpiresAt = p.now().Add(time.Duration(*res.ExpiresIn) * time.Second)
	}
	return creds, nil
}

// Validate checks an access token and returns its subject.
func (p *AuthorizerProvider) Validate(ctx context.Context, accessToken string) (string, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return "", err
	}
	res, err := client.ValidateJWTToken(&authorizer.ValidateJWTTokenInput{
		TokenType: authorizer.TokenTypeAccessToken,
		Token:     accessToken,
	})
	if err != nil {
		return "", fmt.Errorf("token validation failed: %s", utils.SanitizeErr(err))
	}
	if res == nil || !res.IsValid {
		return "", errors.New("token is not valid")
	}
	sub, _ := res.Claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// SignOut ends the provider session for accessToken.
func (p *AuthorizerProvider) SignOut(ctx context.Context, accessToken string) error {
	client, err := p.getClient(ctx)
	if err != nil {
		return err
	}
	_, err = client.Logout(map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	return err
}

func rejectedCredentials(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"credentials", "password", "user not found", "not verified"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
