package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/patient-reminder-service/internal/config"
	"github.com/sangkips/patient-reminder-service/internal/db"
	"github.com/sangkips/patient-reminder-service/internal/domains/appointments"
	"github.com/sangkips/patient-reminder-service/internal/domains/campaigns"
	"github.com/sangkips/patient-reminder-service/internal/domains/messages"
	"github.com/sangkips/patient-reminder-service/internal/domains/patients"
	"github.com/sangkips/patient-reminder-service/internal/domains/templates"
	"github.com/sangkips/patient-reminder-service/internal/health"
	"github.com/sangkips/patient-reminder-service/internal/logging"
	"github.com/sangkips/patient-reminder-service/internal/queue"
	"github.com/sangkips/patient-reminder-service/internal/templating"
	"github.com/sangkips/patient-reminder-service/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	db, err := db.ConnectAndMigrate(cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize RabbitMQ
	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rabbitMQ.Close()

	engine := templating.New(templating.WithLogger(logging.Component("templating")))
	loader := patients.NewDBLoader(db, cfg.Clinic.TemplateClinic())

	if cfg.SeedSystemTemplates {
		seeder := templates.NewService(templates.NewRepository(db), engine, loader)
		n, err := seeder.SeedSystemTemplates(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed system templates")
		}
		log.Info().Int("count", n).Msg("system templates seeded")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	patientHandler := patients.NewHandler(db)
	r.Route("/patients", func(r chi.Router) {
		patientHandler.RegisterPatientRoutes(r)
	})

	appointmentHandler := appointments.NewHandler(db)
	r.Route("/appointments", func(r chi.Router) {
		appointmentHandler.RegisterAppointmentRoutes(r)
	})

	templateHandler := templates.NewHandler(db, engine, loader)
	r.Route("/templates", func(r chi.Router) {
		templateHandler.RegisterTemplateRoutes(r)
	})

	campaignHandler := campaigns.NewHandler(db, engine, loader, rabbitMQ)
	r.Route("/campaigns", func(r chi.Router) {
		campaignHandler.RegisterCampaignRoutes(r)
	})

	messageHandler := messages.NewHandler(db)
	r.Route("/messages", func(r chi.Router) {
		messageHandler.RegisterMessageRoutes(r)
	})

	healthHandler := health.NewHandler(db, rabbitMQ, engine)
	r.Get("/health", healthHandler.Health)

	// Initialize repositories for scheduler
	campaignRepo := campaigns.NewRepository(db)
	messagesRepo := messages.NewRepository(db)

	// Start Scheduler
	scheduler := worker.NewScheduler(campaignRepo, messagesRepo, rabbitMQ, cfg.SchedulerInterval)
	go scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Msg("server starting on :" + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("received signal, shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
