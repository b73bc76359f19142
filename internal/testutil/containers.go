package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/localnerve/portfolio-site/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RequireDocker skips the test when -short is set or no Docker daemon answers.
func RequireDocker(t testing.TB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("docker client unavailable: %v", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		t.Skipf("docker daemon unavailable: %v", err)
	}
}

// StartPostgres runs a throwaway Postgres and returns a config pointing at it.
func StartPostgres(t testing.TB) *config.Config {
	t.Helper()
	ctx := context.Background()
	port := nat.Port("5432/tcp")

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{string(port)},
			Env: map[string]string{
				"POSTGRES_USER":     "portfolio",
				"POSTGRES_PASSWORD": "portfolio",
				"POSTGRES_DB":       "portfolio",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(port),
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate Postgres: %v", err)
		}
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get Postgres host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("Failed to get Postgres port: %v", err)
	}

	return &config.Config{
		DBType:            "postgres",
		DBHost:            host,
		DBPort:            mapped.Port(),
		DBDatabase:        "portfolio",
		DBUser:            "portfolio",
		DBPassword:        "portfolio",
		DBConnectionLimit: 5,
	}
}

// StartRedis runs a throwaway Redis and returns its redis:// URL.
func StartRedis(t testing.TB) string {
	t.Helper()
	ctx := context.Background()
	port := nat.Port("6379/tcp")

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{string(port)},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate Redis: %v", err)
		}
	})

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get Redis host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("Failed to get Redis port: %v", err)
	}
	return fmt.Sprintf("redis://%s:%s/0", host, mapped.Port())
}
