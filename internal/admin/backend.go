package admin

import (
	"context"

	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/services"
)

// Check is the outcome of the environment and schema diagnostics.
type Check struct {
	EnvReady    bool
	SchemaReady bool
	Message     string
}

// Backend is what the gate asks the server.
type Backend interface {
	Check(ctx context.Context) Check
	BootstrapStatus(ctx context.Context) (gateway.BootstrapStatus, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
	ClaimAdmin(ctx context.Context, userID string) (gateway.ActionResult, error)
	BootstrapSetAdmin(ctx context.Context, userID, token string) (gateway.ActionResult, error)
}

// GatewayBackend serves a gate from the configured gateway. Admin proposals
// go through the content service so its cached settings follow them.
type GatewayBackend struct {
	*gateway.Gateway
	content *services.ContentService
	cfg     *config.Config
}

// NewGatewayBackend builds a Backend over the content service's gateway.
func NewGatewayBackend(cfg *config.Config, content *services.ContentService) *GatewayBackend {
	return &GatewayBackend{Gateway: content.Gateway(), content: content, cfg: cfg}
}

// ClaimAdmin proposes userID as the first admin.
func (b *GatewayBackend) ClaimAdmin(ctx context.Context, userID string) (gateway.ActionResult, error) {
	return b.content.ClaimAdmin(ctx, userID)
}

// BootstrapSetAdmin proposes userID as admin with a bootstrap token.
func (b *GatewayBackend) BootstrapSetAdmin(ctx context.Context, userID, token string) (gateway.ActionResult, error) {
	return b.content.BootstrapSetAdmin(ctx, userID, token)
}

// Check runs configuration, database and schema diagnostics.
func (b *GatewayBackend) Check(ctx context.Context) Check {
	d := services.Diagnose(ctx, b.cfg, b.Gateway, nil)
	return Check{
		EnvReady:    d.Configured(),
		SchemaReady: d.SchemaReady(),
		Message:     d.ErrorMessage,
	}
}
