package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	handlers "github.com/nutri-tools/nutri/pkg/handlers/nutrition"
	"github.com/nutri-tools/nutri/pkg/models/domain"
	nutrimiddleware "github.com/nutri-tools/nutri/pkg/server/middleware"
	"github.com/nutri-tools/nutri/pkg/services/profile"
	"github.com/nutri-tools/nutri/pkg/services/session"
	"github.com/nutri-tools/nutri/pkg/services/tracker"
)

type Dependencies struct {
	Analyzer      handlers.Analyzer
	Tracker       *tracker.Controller
	Profiles      *profile.Service
	Sessions      *session.Manager
	DefaultLocale domain.Locale
	Logger        zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// ConfigureRouter builds the API routes over the injected dependencies.
func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	handler := handlers.NewHandler(deps.Analyzer, deps.Tracker, deps.Profiles, deps.Sessions, deps.DefaultLocale)

	router := chi.NewRouter()
	router.Use(nutrimiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analysis", handler.SubmitAnalysis)
		r.Get("/analysis/current", handler.CurrentAnalysis)
		r.Post("/recipes", handler.SubmitRecipe)
		r.Get("/recipes/current", handler.CurrentRecipe)
		r.Get("/history", handler.ListHistory)
		r.Delete("/history/{id}", handler.DeleteRecord)
		r.Delete("/history", handler.ClearHistory)
		r.Get("/summary/today", handler.TodaySummary)
		r.Get("/report", handler.GetReport)
		r.Get("/profile", handler.GetProfile)
		r.Put("/profile", handler.UpdateProfile)
		r.Post("/water", handler.AdjustWater)
	})

	return router
}

type WebAPI struct {
	logger *zerolog.Logger
	server *http.Server

	shutdownTimeout time.Duration
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	config.Dependencies.Logger = logger
	router := ConfigureRouter(config)

	timeout := config.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &WebAPI{
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: timeout,
	}
}

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

		// Give outstanding requests a deadline for completion.
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
