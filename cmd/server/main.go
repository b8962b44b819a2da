// @title                       Salon Booking API
// @version                     1.0
// @description                 Appointment booking for a beauty salon: clients book services, the administrator confirms or cancels.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/estetica/salon-booking/docs"
	"github.com/estetica/salon-booking/internal/api"
	"github.com/estetica/salon-booking/internal/api/handler"
	"github.com/estetica/salon-booking/internal/api/middleware"
	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
	"github.com/estetica/salon-booking/internal/core/service"
	"github.com/estetica/salon-booking/internal/infrastructure/notify"
	"github.com/estetica/salon-booking/internal/infrastructure/queue"
	"github.com/estetica/salon-booking/internal/infrastructure/storage"
	"github.com/estetica/salon-booking/internal/pkg/config"
	"github.com/estetica/salon-booking/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
		Env:    cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg, logger.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}

	var publisher ports.EventPublisher
	if cfg.AMQP.URL != "" {
		rabbit, err := notify.NewRabbitPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		defer rabbit.Close()
		publisher = rabbit
		log.Info().Str("queue", cfg.AMQP.Queue).Msg("publishing status changes to rabbitmq")
	}

	// --- Event pipeline ---
	eventService := service.NewEventService(backend.Events, backend.Dedup, publisher, logger.Component("events"))

	var (
		sink       ports.StatusChangeSink
		dispatcher *queue.Dispatcher
	)
	if cfg.EventWorkers > 0 {
		dispatcher = queue.NewDispatcher(cfg.EventWorkers, eventService, logger.Component("dispatcher"))
		dispatcher.Start(context.Background())
		sink = dispatcher
	} else {
		sink = queue.Inline{Service: eventService, Log: logger.Component("events")}
	}

	// --- Use cases ---
	catalog := domain.DefaultCatalog()
	identity := service.NewAuthService(backend.Users, service.AdminAccount{
		ID:       cfg.Admin.ID,
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	appointments := service.NewAppointmentService(backend.Appointments, backend.Users, backend.Events, sink, catalog, logger.Component("appointments"))

	deps := make(map[string]handler.Pinger, len(backend.Pingers))
	for name, p := range backend.Pingers {
		deps[name] = p
	}

	e := api.NewRouter(api.Options{
		Identity:      identity,
		Appointments:  appointments,
		Catalog:       catalog,
		JWTSecret:     cfg.JWTSecret,
		AuthLimiter:   middleware.NewRateLimiter(cfg.Auth.RPS, cfg.Auth.Burst),
		StorageDriver: backend.Driver,
		Dependencies:  deps,
		Logger:        logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", backend.Driver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	// drain queued status changes before the stores go away
	if dispatcher != nil {
		dispatcher.Close()
	}
	if err := backend.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to close storage")
	}
	log.Info().Msg("server exited properly")
}
