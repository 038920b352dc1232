// Package server exposes the dashboard's KPI engine over HTTP: report
// parsing, period-parameterized aggregations, summaries, CSV exports
// and snapshot history.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	kpimiddleware "kpideck/internal/server/middleware"
	"kpideck/internal/snapshot"
)

// WebAPI is the HTTP front of the dashboard backend.
type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

// Dependencies carries the collaborators the handlers need.
type Dependencies struct {
	Feed      Source
	Snapshots *snapshot.Store
}

// Config holds the server settings.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// NewWebAPI wires the router. Every endpoint lives under /api/v1.
func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	h := NewHandler(config.Dependencies.Feed, config.Dependencies.Snapshots)

	router := chi.NewRouter()
	router.Use(kpimiddleware.Logger(&logger))
	router.Use(chimiddleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/reports/{type}", h.ParseReport)

		r.Get("/payment/weekly", h.PaymentWeekly)
		r.Get("/payment/monthly", h.PaymentMonthly)
		r.Get("/collection/monthly", h.CollectionMonthly)
		r.Get("/collection/yearly", h.CollectionYearly)

		r.Get("/performance", h.Performance)
		r.Get("/activity", h.Activity)
		r.Get("/manual", h.Manual)
		r.Post("/target", h.SaveTarget)

		r.Get("/summary/{type}", h.Summary)

		r.Get("/export/weekly", h.ExportWeekly)
		r.Get("/export/monthly", h.ExportMonthly)

		r.Get("/snapshots", h.ListSnapshots)
		r.Post("/snapshots", h.SaveSnapshot)
		r.Get("/snapshots/{date}", h.GetSnapshot)
		r.Delete("/snapshots/{date}", h.DeleteSnapshot)
	})

	timeout := config.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: timeout,
	}
}

// Router returns the mux, mainly for tests.
func (w *WebAPI) Router() http.Handler {
	return w.router
}

// Start runs the server until a terminate signal arrives, then shuts
// down gracefully.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
