// Package server wires the compliance services to PostgreSQL, mail, object
// storage and the HTTP and gRPC transports, and runs them until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/clock"
	"github.com/dmitrijs2005/ageguard/internal/logging"
	"github.com/dmitrijs2005/ageguard/internal/server/archive"
	"github.com/dmitrijs2005/ageguard/internal/server/auth"
	"github.com/dmitrijs2005/ageguard/internal/server/config"
	"github.com/dmitrijs2005/ageguard/internal/server/httpapi"
	"github.com/dmitrijs2005/ageguard/internal/server/notify"
	"github.com/dmitrijs2005/ageguard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ageguard/internal/server/services"

	gs "github.com/dmitrijs2005/ageguard/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	compliance *services.Compliance
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, parseLevel(c.LogLevel))

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewConsentTokens([]byte(c.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("consent token keys: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	archiver, err := newArchiver(ctx, c)
	if err != nil {
		db.Close()
		return nil, err
	}

	compliance := services.NewCompliance(services.Deps{
		DB:       db,
		Repos:    repos,
		Clock:    clock.Real(),
		Location: loc,
		Logger:   logger.With("module", "compliance"),
	}, services.ComplianceOptions{
		Tokens:   tokens,
		Notifier: newNotifier(c, loc, logger),
		Archiver: archiver,
		Consent: services.ConsentSettings{
			TokenValidity: c.ConsentTokenValidity,
			LinkBaseURL:   c.ConsentLinkBaseURL,
		},
		BreakSuggestion: c.BreakSuggestion,
	})

	return &App{config: c, logger: logger, db: db, compliance: compliance}, nil
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func newNotifier(c *config.Config, loc *time.Location, logger logging.Logger) services.ParentNotifier {
	if c.SMTPAddr == "" {
		return notify.NewLogNotifier(logger.With("module", "notify"))
	}
	return notify.NewSMTPNotifier(notify.SMTPConfig{
		Addr:     c.SMTPAddr,
		User:     c.SMTPUser,
		Password: c.SMTPPassword,
		From:     c.MailFrom,
		Location: loc,
	})
}

// newArchiver returns nil when no bucket is configured; consent then
// commits without an archived evidence document.
func newArchiver(ctx context.Context, c *config.Config) (services.EvidenceArchiver, error) {
	if c.S3Bucket == "" {
		return nil, nil
	}
	a, err := archive.NewS3Archiver(ctx, archive.Config{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("archive init error: %w", err)
	}
	return a, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger,
		app.compliance.Consent, app.compliance.Restrictions, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, []byte(app.config.SecretKey),
		httpapi.FromCompliance(app.compliance), app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until a signal arrives or either server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
