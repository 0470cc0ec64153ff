package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isometry/convai-webhook/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func cmdService() *cobra.Command {
	return &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		Short:   "Serve the webhook over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.Global.Mode = config.ModeService
			logger = logger.With("mode", config.ModeService)
			return runService(cmd)
		},
	}
}

func runService(cmd *cobra.Command) error {
	logger.Info("spawning...")
	rt, err := setup(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to setup service")
	}

	logger.Debug("creating HTTP server...")
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.Healthz)
	mux.Handle(config.Service.Path, rt)

	s := &http.Server{
		Handler:           mux,
		Addr:              net.JoinHostPort(config.Service.Addr, config.Service.Port),
		WriteTimeout:      config.Service.Timeout,
		ReadTimeout:       config.Service.Timeout,
		ReadHeaderTimeout: config.Service.Timeout,
		IdleTimeout:       config.Service.Timeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving...", "address", s.Addr, "path", config.Service.Path, "timeout", config.Service.Timeout.String())
		errCh <- s.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = s.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down gracefully")
	}
	return nil
}
