package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/queue/scheduler"
)

// Server ties the HTTP listener and the job scheduler into one lifecycle:
// both start together and, on a shutdown signal, both stop within the
// configured graceful timeout.
type Server struct {
	configProvider *config.Provider
	handler        http.Handler
	scheduler      *scheduler.Scheduler
	logger         *slog.Logger
}

func NewServer(configProvider *config.Provider, handler http.Handler, scheduler *scheduler.Scheduler, logger *slog.Logger) *Server {
	return &Server{
		configProvider: configProvider,
		handler:        handler,
		scheduler:      scheduler,
		logger:         logger,
	}
}

// Run blocks until a shutdown signal arrives or the listener fails, then
// shuts the HTTP server and the scheduler down gracefully.
func (s *Server) Run() error {
	cfg := s.configProvider.Get().Server

	s.logger.Info("server configuration",
		"addr", cfg.Addr,
		"read_timeout", cfg.ReadTimeout.Duration,
		"read_header_timeout", cfg.ReadHeaderTimeout.Duration,
		"write_timeout", cfg.WriteTimeout.Duration,
		"idle_timeout", cfg.IdleTimeout.Duration,
		"shutdown_timeout", cfg.ShutdownGracefulTimeout.Duration,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      cfg.WriteTimeout.Duration,
		IdleTimeout:       cfg.IdleTimeout.Duration,
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	s.scheduler.Start()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer stop()

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("received shutdown signal, shutting down gracefully")
	case err := <-serverError:
		s.logger.Error("http server error, initiating shutdown", "error", err)
		runErr = err
	}

	// Restore default signal behavior so a second signal kills immediately.
	stop()

	gracefulCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownGracefulTimeout.Duration)
	defer cancelShutdown()

	shutdownGroup, _ := errgroup.WithContext(gracefulCtx)

	shutdownGroup.Go(func() error {
		s.logger.Info("shutting down http server")
		if err := srv.Shutdown(gracefulCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
			return err
		}
		return nil
	})

	shutdownGroup.Go(func() error {
		s.logger.Info("shutting down scheduler")
		if err := s.scheduler.Stop(gracefulCtx); err != nil {
			s.logger.Error("scheduler shutdown error", "error", err)
			return err
		}
		return nil
	})

	if err := shutdownGroup.Wait(); err != nil {
		if runErr == nil {
			runErr = err
		}
		return runErr
	}

	s.logger.Info("all systems stopped gracefully")
	return runErr
}
