package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/applicant-tracker/internal/api/http"
	"github.com/spec-kit/applicant-tracker/internal/api/http/handlers"
	"github.com/spec-kit/applicant-tracker/internal/auth"
	"github.com/spec-kit/applicant-tracker/internal/config"
	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/events"
	"github.com/spec-kit/applicant-tracker/internal/notify"
	"github.com/spec-kit/applicant-tracker/internal/observability"
	"github.com/spec-kit/applicant-tracker/internal/persistence"
	"github.com/spec-kit/applicant-tracker/internal/pipeline"
	"github.com/spec-kit/applicant-tracker/internal/repository"
	"github.com/spec-kit/applicant-tracker/internal/repository/memory"
	"github.com/spec-kit/applicant-tracker/internal/service"
	"github.com/spec-kit/applicant-tracker/internal/storage"
	"github.com/spec-kit/applicant-tracker/internal/worker"
	apperrors "github.com/spec-kit/applicant-tracker/pkg/util/errorutil"
)

type repositories struct {
	users      repository.UserRepository
	positions  repository.PositionRepository
	candidates repository.CandidateRepository
	history    repository.StageHistoryRepository
	comments   repository.CommentRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	mode, err := pipeline.ParseMode(cfg.Pipeline.Mode)
	if err != nil {
		logger.Fatal("invalid pipeline mode", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	repos := buildRepositories(pg)

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store, memoryStore, err := buildResumeStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init resume storage", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notifier := notify.New(cfg.Notification, logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: repos.users,
		Logger:   logger,
	})
	positionService := service.NewPositionService(service.PositionDependencies{
		PositionRepo: repos.positions,
		UserRepo:     repos.users,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	applicationService := service.NewApplicationService(service.ApplicationDependencies{
		PositionRepo:   repos.positions,
		CandidateRepo:  repos.candidates,
		Store:          store,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	candidateService := service.NewCandidateService(service.CandidateDependencies{
		CandidateRepo: repos.candidates,
		HistoryRepo:   repos.history,
		CommentRepo:   repos.comments,
		Store:         store,
		Machine:       pipeline.NewMachine(mode),
		Dispatcher:    dispatcher,
		Metrics:       metrics,
		Logger:        logger,
		ResumeURLTTL:  cfg.Storage.ResumeURLTTL(),
	})
	notifications := service.NewNotificationService(dispatcher, notifier, metrics, logger)
	worker.StartNotificationWorker(notifications, logger)

	bootstrapRecruiter(ctx, cfg.Auth, authService, logger)

	app := httptransport.New(httptransport.AppConfig{
		Name:           cfg.App.Name,
		BodyLimit:      int(cfg.Storage.MaxUploadBytes) + 1024*1024,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	})

	var resumesHandler *handlers.ResumesHandler
	if memoryStore != nil {
		resumesHandler = handlers.NewResumesHandler(memoryStore)
	}
	var limiter httptransport.Limiter
	if redisLimiter := httptransport.NewRedisLimiter(redis.Client, cfg.Intake.RateLimit, cfg.Intake.RateWindow()); redisLimiter != nil {
		limiter = redisLimiter
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
			"storage":  store,
		}),
		Pages: handlers.NewPagesHandler(handlers.PagesDependencies{
			Positions:    positionService,
			Applications: applicationService,
			Candidates:   candidateService,
			Auth:         authService,
			Cookie:       handlers.SessionCookie{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure},
		}),
		Auth:           handlers.NewAuthHandler(authService),
		Positions:      handlers.NewPositionsHandler(positionService),
		Applications:   handlers.NewApplicationsHandler(applicationService),
		Candidates:     handlers.NewCandidatesHandler(candidateService),
		Resumes:        resumesHandler,
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.users, cfg.Auth.CookieName),
		IntakeLimiter:  httptransport.IntakeRateLimit(limiter, metrics, logger),
		Metrics:        metrics.Handler(),
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("pipeline_mode", string(mode)))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notifications.Wait()
}

func buildRepositories(pg *persistence.Postgres) repositories {
	if !pg.Enabled() {
		db := memory.NewStore()
		return repositories{
			users:      db.Users(),
			positions:  db.Positions(),
			candidates: db.Candidates(),
			history:    db.History(),
			comments:   db.Comments(),
		}
	}
	return repositories{
		users:      repository.NewUserRepository(pg.Pool),
		positions:  repository.NewPositionRepository(pg.Pool),
		candidates: repository.NewCandidateRepository(pg.Pool),
		history:    repository.NewStageHistoryRepository(pg.Pool),
		comments:   repository.NewCommentRepository(pg.Pool),
	}
}

// buildResumeStore returns MinIO when an endpoint is configured. The memory
// store is also returned on its own so its links can be served.
func buildResumeStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.ResumeStore, *storage.MemoryStore, error) {
	if cfg.Endpoint == "" {
		logger.Warn("STORAGE_ENDPOINT not provided; résumés are kept in memory")
		mem := storage.NewMemoryStore("/resumes")
		return mem, mem, nil
	}
	store, err := storage.NewMinioStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to object storage", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket))
	return store, nil, nil
}

func bootstrapRecruiter(ctx context.Context, cfg config.AuthConfig, authService *service.AuthService, logger *zap.Logger) {
	if cfg.BootstrapEmail == "" || cfg.BootstrapPassword == "" {
		return
	}
	user, err := authService.CreateUser(ctx, service.CreateUserInput{
		FullName: "Administrador",
		Email:    cfg.BootstrapEmail,
		Password: cfg.BootstrapPassword,
		Role:     domain.RoleRecruiter,
	})
	var domainErr *apperrors.DomainError
	switch {
	case err == nil:
		logger.Info("bootstrap recruiter created", zap.String("user_id", user.ID))
	case errors.As(err, &domainErr) && domainErr.Code == apperrors.CodeValidation && domainErr.Details["email"] == "duplicado":
		logger.Debug("bootstrap recruiter already present")
	default:
		logger.Warn("bootstrap recruiter not created", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
