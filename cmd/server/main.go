package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/portfolio-site/internal/admin"
	"github.com/localnerve/portfolio-site/internal/auth"
	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/localnerve/portfolio-site/internal/forms"
	"github.com/localnerve/portfolio-site/internal/gateway"
	"github.com/localnerve/portfolio-site/internal/handlers"
	"github.com/localnerve/portfolio-site/internal/logging"
	"github.com/localnerve/portfolio-site/internal/middleware"
	"github.com/localnerve/portfolio-site/internal/services"

	_ "github.com/localnerve/portfolio-site/docs/api" // Swagger docs
)

// @title Portfolio Site API
// @version 1.0.0
// @description Public page documents, content API and admin content management
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/portfolio-site
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name portfolio_session

const sweepInterval = time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", "text", nil).Fatalf("Failed to load configuration: %v", err)
	}
	log := logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if cfg.SessionSecretGenerated {
		log.Warn("SESSION_SECRET is not set; sessions will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect and migrate; an incomplete configuration still serves pages
	gw, closeDB := services.OpenGateway(cfg, true)
	defer closeDB()

	if cfg.AdminBootstrapToken != "" && gw.Configured() {
		if err := installBootstrapToken(ctx, gw, cfg.AdminBootstrapToken); err != nil {
			log.WithError(err).Warn("failed to install admin bootstrap token")
		}
	}

	contentCache, closeCache := services.OpenCache(ctx, cfg.CacheRedisURL)
	defer closeCache()

	content := services.NewContentService(gw, contentCache, services.Options{
		SettingsTTL: cfg.SettingsCacheTTL,
		ProjectsTTL: cfg.ProjectsCacheTTL,
	})
	authz := services.NewAuthorizerProvider(cfg)
	store := auth.NewStore(authz, nil)
	validator := forms.MustNew()

	gates := admin.NewRegistry(admin.NewGatewayBackend(cfg, content), store, admin.DefaultIdle, nil)
	go gates.Run(ctx, sweepInterval)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup(10 * time.Minute)
			}
		}
	}()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("portfolio")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	handlers.Register(app, handlers.Routes{
		Public: &handlers.PublicHandler{Content: content, Forms: validator},
		Admin: &handlers.AdminHandler{
			Gates:   gates,
			Store:   store,
			Content: content,
			Forms:   validator,
		},
		Tokens:        auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL, nil),
		Admins:        gw,
		Limiter:       limiter,
		Health:        handlers.Health(cfg, gw, authz),
		SecureCookies: strings.HasPrefix(cfg.SiteURL, "https://"),
	})

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("Gracefully shutting down...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	// Start server
	log.WithField("port", cfg.Port).Info("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Info("Server stopped")
}

// installBootstrapToken stores the hash of the configured token while the
// site is still unclaimed.
func installBootstrapToken(ctx context.Context, gw *gateway.Gateway, token string) error {
	status, err := gw.BootstrapStatus(ctx)
	if err != nil {
		return err
	}
	if status.Bootstrapped {
		return nil
	}
	hash, err := gateway.HashBootstrapToken(token)
	if err != nil {
		return err
	}
	return gw.SetBootstrapToken(ctx, hash)
}
