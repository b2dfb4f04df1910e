// Package httpapi is the public HTTP surface of ageguard, served with fiber
// under /age-restrictions.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/ageguard/internal/logging"
	"github.com/gofiber/fiber/v3"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	addr   string
	secret []byte
	svc    Services
	log    logging.Logger
	app    *fiber.App
}

func NewServer(addr string, secret []byte, svc Services, log logging.Logger) *Server {
	s := &Server{
		addr:   addr,
		secret: secret,
		svc:    svc,
		log:    log.With("module", "http"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "ageguard",
		ErrorHandler: s.errorHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	s.app.Use(s.logRequests)
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/age-restrictions")

	api.Get("/calculate-age", s.calculateAge)
	api.Post("/process-parental-consent", s.processConsent)

	api.Get("/check", s.requireUser, s.check)
	api.Get("/spending-check", s.requireUser, s.spendingCheck)
	api.Get("/time-check", s.requireUser, s.timeCheck)
	api.Get("/usage-check", s.requireUser, s.usageCheck)
	api.Get("/my-restrictions", s.requireUser, s.myRestrictions)
	api.Get("/account-status", s.requireUser, s.accountStatus)
	api.Post("/record-spending", s.requireUser, s.recordSpending)
	api.Post("/start-session", s.requireUser, s.startSession)
	api.Post("/end-session/:sessionId", s.requireUser, s.endSession)
	api.Post("/request-parental-consent", s.requireUser, s.requestConsent)
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "starting HTTP server", "addr", s.addr)
		errCh <- s.app.Listen(s.addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info(ctx, "shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
