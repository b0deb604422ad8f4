package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/applicant-tracker/internal/config"
	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/observability"
	"github.com/spec-kit/applicant-tracker/internal/persistence"
	"github.com/spec-kit/applicant-tracker/internal/repository"
	"github.com/spec-kit/applicant-tracker/internal/service"
)

const usage = `usage: admin create-user --email EMAIL --name NAME --role Reclutador_RH|Gerente_Area [--password PASSWORD]

The password is read from ADMIN_USER_PASSWORD when the flag is omitted.`

func main() {
	if len(os.Args) < 2 || os.Args[1] != "create-user" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	var (
		email    = fs.String("email", "", "login e-mail (required)")
		name     = fs.String("name", "", "full name (required)")
		role     = fs.String("role", string(domain.RoleAreaManager), "Reclutador_RH or Gerente_Area")
		password = fs.String("password", "", "initial password (defaults to ADMIN_USER_PASSWORD)")
	)
	_ = fs.Parse(os.Args[2:])

	pw := *password
	if pw == "" {
		pw = os.Getenv("ADMIN_USER_PASSWORD")
	}
	if strings.TrimSpace(*email) == "" || strings.TrimSpace(*name) == "" || pw == "" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		log.Fatal("POSTGRES_DSN is required to create users")
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("run migrations", zap.Error(err))
		}
	}

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: repository.NewUserRepository(pg.Pool),
		Logger:   logger,
	})
	user, err := authService.CreateUser(ctx, service.CreateUserInput{
		FullName: *name,
		Email:    *email,
		Password: pw,
		Role:     domain.Role(*role),
	})
	if err != nil {
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("created %s %s (%s)\n", user.Role, user.Email, user.ID)
}
