package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adiwijaya/mitra/pkg/session"
	"github.com/adiwijaya/mitra/pkg/template"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the metrics endpoint and background maintenance",
	Long: `Run in the foreground: expose Prometheus metrics over HTTP, sweep
stale sessions on the configured schedule, and hot-reload the template
configuration file when it changes. Stops on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":9464", "metrics listen address")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	zl := a.log.GetZerolog()

	janitor, err := session.NewJanitor(session.JanitorConfig{
		Table:    a.sessions,
		MaxAge:   time.Duration(a.cfg.Sessions.MaxAgeHours) * time.Hour,
		Schedule: a.cfg.Sessions.JanitorSchedule,
		Logger:   zl,
		OnEvict: func(removed int) {
			a.metrics.SessionsEvicted.Add(float64(removed))
			a.metrics.SessionsActive.Set(float64(a.sessions.Len()))
		},
	})
	if err != nil {
		return err
	}
	if err := janitor.Start(); err != nil {
		return err
	}
	defer janitor.Stop()

	if a.cfg.Templates.Watch && a.cfg.Templates.Path != "" {
		watcher, err := template.NewWatcher(a.templates, zl)
		if err != nil {
			zl.Warn().Err(err).Msg("Template watcher unavailable")
		} else {
			defer watcher.Stop()
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())

	server := &http.Server{
		Addr:    serveAddr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info().Str("addr", serveAddr).Msg("Metrics endpoint listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server failed: %w", err)
	case sig := <-sigCh:
		zl.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
