package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/courtline/tennis-data-api/external/apitennis"
	"github.com/courtline/tennis-data-api/internal/config"
	"github.com/courtline/tennis-data-api/internal/infrastructure/notify"
	"github.com/courtline/tennis-data-api/internal/infrastructure/repository/postgres"
	"github.com/courtline/tennis-data-api/internal/interfaces/httpapi"
	"github.com/courtline/tennis-data-api/internal/platform/logging"
	"github.com/courtline/tennis-data-api/internal/platform/pacing"
	"github.com/courtline/tennis-data-api/internal/platform/resilience"
	"github.com/courtline/tennis-data-api/internal/platform/schedule"
	"github.com/courtline/tennis-data-api/internal/usecase"
)

// App owns the long-lived pieces of the process: the HTTP server, the
// optional cron scheduler, and the DB handle behind both.
type App struct {
	Server    *http.Server
	Scheduler *schedule.Scheduler

	db     *sqlx.DB
	logger *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	eventRepo := postgres.NewEventRepository(db)
	tournamentRepo := postgres.NewTournamentRepository(db)
	fixtureRepo := postgres.NewFixtureRepository(db)
	playerRepo := postgres.NewPlayerRepository(db)
	oddsRepo := postgres.NewOddsRepository(db)
	h2hRepo := postgres.NewH2HRepository(db)

	provider := apitennis.NewClient(apitennis.ClientConfig{
		BaseURL:    cfg.APITennisBaseURL,
		APIKey:     cfg.APITennisAPIKey,
		Timeout:    cfg.APITennisTimeout,
		MaxRetries: cfg.APITennisMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.APITennisCircuitEnabled,
			FailureThreshold: cfg.APITennisCircuitFailureCount,
			OpenTimeout:      cfg.APITennisCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.APITennisCircuitHalfOpenMaxReq,
		},
	})

	var notifier usecase.IngestionNotifier
	if cfg.WebhookEnabled {
		notifier = notify.NewWebhookPublisher(notify.WebhookPublisherConfig{
			URL:         cfg.WebhookURL,
			BearerToken: cfg.WebhookToken,
			Timeout:     cfg.WebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenMaxReq,
			},
		}, logger)
	}

	ingestionSvc := usecase.NewIngestionService(usecase.IngestionServiceDeps{
		Provider:    provider,
		Events:      eventRepo,
		Tournaments: tournamentRepo,
		Fixtures:    fixtureRepo,
		Players:     playerRepo,
		Odds:        oddsRepo,
		Pacer:       pacing.FixedDelay(cfg.IngestPacingDelay),
		Notifier:    notifier,
		Logger:      logger,
	})
	h2hSvc := usecase.NewH2HService(provider, h2hRepo, logger)
	dataSvc := usecase.NewDataService(usecase.DataServiceDeps{
		Events:      eventRepo,
		Tournaments: tournamentRepo,
		Fixtures:    fixtureRepo,
		Players:     playerRepo,
		Odds:        oddsRepo,
		Logger:      logger,
	})
	verificationSvc := usecase.NewVerificationService(fixtureRepo, logger, cfg.VerifyWorkers)

	handler := httpapi.NewHandler(ingestionSvc, h2hSvc, dataSvc, verificationSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	scheduler, err := buildScheduler(ctx, cfg, logger, ingestionSvc)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		Server:    server,
		Scheduler: scheduler,
		db:        db,
		logger:    logger,
	}, nil
}

// Close stops the scheduler and releases the DB handle. The HTTP
// server is shut down by the caller so it controls the drain timeout.
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func buildScheduler(
	ctx context.Context,
	cfg config.Config,
	logger *logging.Logger,
	ingestionSvc *usecase.IngestionService,
) (*schedule.Scheduler, error) {
	if !cfg.ScheduleEnabled {
		return nil, nil
	}

	scheduler := schedule.New(logger, ctx)
	windowDays := cfg.ScheduleWindowDays

	if _, err := scheduler.Add("ingest-fixtures", cfg.ScheduleFixturesCron, func(ctx context.Context) {
		start, end := scheduleWindow(time.Now(), windowDays)
		result := ingestionSvc.IngestFixturesBatched(ctx, start, end)
		logScheduledResult(ctx, logger, "ingest-fixtures", result)
	}); err != nil {
		return nil, fmt.Errorf("register fixtures job: %w", err)
	}

	if _, err := scheduler.Add("ingest-odds", cfg.ScheduleOddsCron, func(ctx context.Context) {
		start, end := scheduleWindow(time.Now(), windowDays)
		result := ingestionSvc.IngestOddsBatched(ctx, start, end)
		logScheduledResult(ctx, logger, "ingest-odds", result)
	}); err != nil {
		return nil, fmt.Errorf("register odds job: %w", err)
	}

	return scheduler, nil
}

// scheduleWindow covers today plus the configured number of upcoming
// days, in UTC day precision.
func scheduleWindow(now time.Time, windowDays int) (time.Time, time.Time) {
	day := now.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, windowDays-1)
}

func logScheduledResult(ctx context.Context, logger *logging.Logger, job string, result usecase.IngestionResult) {
	if result.Status == usecase.IngestionFailure {
		logger.ErrorContext(ctx, "scheduled ingestion failed",
			"job", job, "error_type", result.ErrorType, "message", result.Message)
		return
	}
	logger.InfoContext(ctx, "scheduled ingestion finished",
		"job", job, "status", string(result.Status), "count", result.Count)
}
