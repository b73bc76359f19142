package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	dbAlias    = "portfolio-db"
	dbUser     = "portfolio"
	siteDB     = "portfolio"
	authzDB    = "authorizer"
	pgPort     = nat.Port("5432/tcp")
	readyLine  = "database system is ready to accept connections"
	authzReady = "Authorizer running at PORT:"
)

// devStack is the set of containers a local server needs.
type devStack struct {
	network    *testcontainers.DockerNetwork
	db         testcontainers.Container
	authorizer testcontainers.Container
}

func (s *devStack) terminate() {
	ctx := context.Background()
	if s.authorizer != nil {
		if err := s.authorizer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate Authorizer: %v", err)
		}
	}
	if s.db != nil {
		if err := s.db.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate Postgres: %v", err)
		}
	}
	if s.network != nil {
		if err := s.network.Remove(ctx); err != nil {
			log.Printf("Failed to remove network: %v", err)
		}
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func startStack(ctx context.Context) (*devStack, map[string]string, error) {
	stack := &devStack{}
	password := getEnv("DB_PASSWORD", "portfolio")

	nw, err := network.New(ctx)
	if err != nil {
		return stack, nil, fmt.Errorf("failed to create network: %w", err)
	}
	stack.network = nw

	stack.db, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnv("DB_IMAGE", "postgres:16-alpine"),
			ExposedPorts: []string{string(pgPort)},
			Env: map[string]string{
				"POSTGRES_USER":     dbUser,
				"POSTGRES_PASSWORD": password,
				"POSTGRES_DB":       siteDB,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(pgPort),
				wait.ForLog(readyLine).WithOccurrence(2),
			).WithDeadline(60 * time.Second),
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {dbAlias}},
		},
		Started: true,
	})
	if err != nil {
		return stack, nil, fmt.Errorf("failed to start Postgres: %w", err)
	}

	code, _, err := stack.db.Exec(ctx, []string{"psql", "-U", dbUser, "-d", siteDB, "-c", "CREATE DATABASE " + authzDB})
	if err != nil || code != 0 {
		return stack, nil, fmt.Errorf("failed to create %s database (exit %d): %v", authzDB, code, err)
	}

	clientID := getEnv("AUTHZ_CLIENT_ID", uuid.NewString())
	authzPort, err := nat.NewPort("tcp", getEnv("AUTHZ_PORT", "8080"))
	if err != nil {
		return stack, nil, fmt.Errorf("invalid AUTHZ_PORT: %w", err)
	}
	stack.authorizer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        getEnv("AUTHZ_IMAGE", "lakhansamani/authorizer:latest"),
			ExposedPorts: []string{string(authzPort)},
			Env: map[string]string{
				"ENV":           "production",
				"CLIENT_ID":     clientID,
				"PORT":          authzPort.Port(),
				"DATABASE_TYPE": "postgres",
				"DATABASE_NAME": authzDB,
				"DATABASE_URL":  fmt.Sprintf("postgres://%s:%s@%s:5432/%s?sslmode=disable", dbUser, password, dbAlias, authzDB),
				"ADMIN_SECRET":  getEnv("AUTHZ_ADMIN_SECRET", "admin-secret"),
				"ROLES":         "admin,user",
				"DEFAULT_ROLES": "user",
				"LOG_LEVEL":     getEnv("AUTHZ_LOG_LEVEL", "info"),
			},
			WaitingFor: wait.ForLog(authzReady).WithStartupTimeout(30 * time.Second),
			Networks:   []string{nw.Name},
		},
		Started: true,
	})
	if err != nil {
		return stack, nil, fmt.Errorf("failed to start Authorizer: %w", err)
	}

	dbHost, err := stack.db.Host(ctx)
	if err != nil {
		return stack, nil, err
	}
	dbPort, err := stack.db.MappedPort(ctx, pgPort)
	if err != nil {
		return stack, nil, err
	}
	authzHost, err := stack.authorizer.Host(ctx)
	if err != nil {
		return stack, nil, err
	}
	authzMapped, err := stack.authorizer.MappedPort(ctx, authzPort)
	if err != nil {
		return stack, nil, err
	}

	env := map[string]string{
		"DB_TYPE":         "postgres",
		"DB_HOST":         dbHost,
		"DB_PORT":         dbPort.Port(),
		"DB_DATABASE":     siteDB,
		"DB_USER":         dbUser,
		"DB_PASSWORD":     password,
		"AUTHZ_URL":       fmt.Sprintf("http://%s:%s", authzHost, authzMapped.Port()),
		"AUTHZ_CLIENT_ID": clientID,
	}
	return stack, env, nil
}

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	var outFilename string
	flag.StringVar(&outFilename, "o", "", "write the server environment to this file")
	flag.Parse()

	usage := `
Run Postgres and Authorizer containers for local portfolio-site development.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH] [-o OUT_ENV_FILE]

ENV_FILE_PATH: optional .env file with DB_IMAGE, DB_PASSWORD, AUTHZ_IMAGE,
               AUTHZ_PORT, AUTHZ_CLIENT_ID, AUTHZ_ADMIN_SECRET
OUT_ENV_FILE:  where to write the DB_* and AUTHZ_* values for the server

example
  testcontainers -f dev.env -o .env
`
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	stack, env, err := startStack(ctx)
	if err != nil {
		stack.terminate()
		log.Fatalf("%v\n", err)
	}

	if outFilename != "" {
		if err := godotenv.Write(env, outFilename); err != nil {
			log.Printf("Failed to write %s: %v\n", outFilename, err)
		} else {
			log.Printf("Wrote server environment to %s\n", outFilename)
		}
	} else {
		out, _ := godotenv.Marshal(env)
		fmt.Println(out)
	}

	log.Printf("Containers running; press Ctrl-C to stop\n")
	<-ctx.Done()
	log.Printf("Terminating containers...\n")
	stack.terminate()
}
