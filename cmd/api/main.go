// Command api serves the barbershop booking HTTP API.
//
//	@title						Barbershop Booking API
//	@version					1.0
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/zetas/barbershop/docs"
	"github.com/zetas/barbershop/internal/api"
	"github.com/zetas/barbershop/internal/api/handler"
	"github.com/zetas/barbershop/internal/core/ports"
	"github.com/zetas/barbershop/internal/core/service"
	"github.com/zetas/barbershop/internal/infrastructure/config"
	"github.com/zetas/barbershop/internal/infrastructure/db/filestore"
	"github.com/zetas/barbershop/internal/infrastructure/db/mongo"
	"github.com/zetas/barbershop/internal/infrastructure/db/redis"
	"github.com/zetas/barbershop/internal/infrastructure/queue"
	"github.com/zetas/barbershop/internal/infrastructure/repository"
	"github.com/zetas/barbershop/internal/infrastructure/sms"
	"github.com/zetas/barbershop/internal/infrastructure/uploads"
	"github.com/zetas/barbershop/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Service: "barbershop-api"})
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "barbershop-api",
	})

	store, checks, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("record store unavailable")
	}
	defer closeStore()

	images, err := uploads.New(cfg.Uploads.PublicDir, cfg.Uploads.Subdir)
	if err != nil {
		log.Fatal().Err(err).Msg("uploads directory unavailable")
	}

	cleanup := queue.NewCleanup(cfg.Uploads.CleanupWorkers, images, logger.Component("image-cleanup"))
	cleanup.Start(ctx)

	public, err := cfg.Schedule.Public()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid public schedule")
	}
	admin, err := cfg.Schedule.Admin()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid admin schedule")
	}

	appointmentRepo := repository.NewAppointmentRepository(store, logger.Component("appointment-repository"))
	serviceRepo := repository.NewServiceRepository(store, logger.Component("service-repository"))

	appointments := service.NewAppointmentService(appointmentRepo, service.AppointmentConfig{
		Public:   public,
		Admin:    admin,
		Duration: cfg.Schedule.AppointmentDuration,
	}, logger.Component("appointments"))
	catalog := service.NewCatalogService(serviceRepo, images, cleanup, logger.Component("catalog"))
	auth := service.NewAuthService(service.AdminCredentials{
		Password:     cfg.Admin.Password,
		PasswordHash: cfg.Admin.PasswordHash,
	}, cfg.Admin.JWTSecret, cfg.Admin.SessionTTL)
	gateway := sms.NewTwilioGateway(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber, cfg.Twilio.BaseURL, logger.Component("twilio"))

	if cfg.Admin.JWTSecret == "" || (cfg.Admin.Password == "" && cfg.Admin.PasswordHash == "") {
		log.Warn().Msg("admin login disabled: set ADMIN_PASSWORD and JWT_SECRET")
	}
	if !gateway.Configured() {
		log.Warn().Msg("sms relay disabled: Twilio credentials missing")
	}

	e := api.NewRouter(api.Deps{
		Appointments:     appointments,
		Catalog:          catalog,
		Auth:             auth,
		Sessions:         auth,
		SMS:              gateway,
		Checks:           checks,
		UploadsURLPrefix: images.URLPrefix(),
		UploadsDir:       images.Root(),
		CORSOrigins:      cfg.Origins(),
		BodyLimit:        cfg.BodyLimit,
		Logger:           logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Store.Backend).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	// Requests drained above may have released images; remove them before exit.
	cleanup.Close()
}

// openStore connects the configured record store backend and returns the
// readiness checks that go with it.
func openStore(ctx context.Context, cfg *config.Config) (ports.RecordStore, map[string]handler.DependencyCheck, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, nil, nil, err
		}
		store := redis.NewRecordStore(client)
		closeFn := func() { _ = client.Close() }
		return store, map[string]handler.DependencyCheck{"redis": store.Ping}, closeFn, nil

	case config.BackendMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, nil, err
		}
		store := mongo.NewRecordStore(db)
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		}
		return store, map[string]handler.DependencyCheck{"mongo": store.Ping}, closeFn, nil

	default:
		store := filestore.New(cfg.Store.DataDir)
		return store, map[string]handler.DependencyCheck{"filestore": store.Ping}, func() {}, nil
	}
}
