package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	deliveryHTTP "github.com/frontandrew/caretrip/internal/delivery/http"
	"github.com/frontandrew/caretrip/internal/infrastructure/events"
	"github.com/frontandrew/caretrip/internal/pkg/config"
	"github.com/frontandrew/caretrip/internal/pkg/database"
	"github.com/frontandrew/caretrip/internal/pkg/hash"
	"github.com/frontandrew/caretrip/internal/pkg/jwt"
	"github.com/frontandrew/caretrip/internal/pkg/logger"
	"github.com/frontandrew/caretrip/internal/pkg/redis"
	"github.com/frontandrew/caretrip/internal/pkg/scheduler"
	"github.com/frontandrew/caretrip/internal/repository/cached"
	"github.com/frontandrew/caretrip/internal/repository/postgres"
	"github.com/frontandrew/caretrip/internal/repository/redisstore"
	"github.com/frontandrew/caretrip/internal/usecase/auth"
	"github.com/frontandrew/caretrip/internal/usecase/driver"
	"github.com/frontandrew/caretrip/internal/usecase/organization"
	"github.com/frontandrew/caretrip/internal/usecase/record"
	"github.com/frontandrew/caretrip/internal/usecase/report"
	"github.com/frontandrew/caretrip/internal/usecase/rider"
	"github.com/frontandrew/caretrip/internal/usecase/route"
	"github.com/frontandrew/caretrip/internal/usecase/vehicle"
)

func main() {
	// =========================================================================
	// Загрузка конфигурации
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// =========================================================================
	// Инициализация logger
	// =========================================================================

	location := cfg.App.Location()
	log := logger.New(logger.Options{
		Service:    "caretrip",
		Env:        cfg.App.Env,
		Location:   location,
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	logger.SetGlobalLogger(log)

	log.Info("Starting CareTrip API server", map[string]interface{}{
		"env":      cfg.App.Env,
		"timezone": location.String(),
	})

	// =========================================================================
	// Подключение к PostgreSQL
	// =========================================================================

	ctx := context.Background()
	db, err := database.Connect(ctx, &cfg.Database, location)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer database.Close(db)

	log.Info("Connected to PostgreSQL", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
	})

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("Failed to apply migrations", map[string]interface{}{
				"error": err.Error(),
			})
		}
		log.Info("Database schema is up to date")
	}

	// =========================================================================
	// Подключение к Redis
	// =========================================================================

	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redisClient.Close()

	log.Info("Connected to Redis", map[string]interface{}{
		"address": cfg.Redis.Address(),
	})

	// =========================================================================
	// Публикация событий
	// =========================================================================

	publisher, err := events.New(cfg.NATS, log)
	if err != nil {
		log.Fatal("Failed to connect to NATS", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer publisher.Close()

	// =========================================================================
	// Создание repositories
	// =========================================================================

	adminRepo := postgres.NewAdminRepository(db)
	orgRepo := postgres.NewOrganizationRepository(db)
	codeRepo := cached.NewManagementCodeRepository(postgres.NewManagementCodeRepository(db), redisClient, log)
	driverRepo := postgres.NewDriverRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	routeRepo := postgres.NewRouteRepository(db)
	riderRepo := postgres.NewRiderRepository(db)
	recordRepo := postgres.NewRecordRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	sessionRepo := redisstore.NewSessionRepository(redisClient)

	log.Info("Repositories initialized")

	// =========================================================================
	// Создание JWT token service
	// =========================================================================

	tokenService := jwt.NewTokenService(
		cfg.JWT.SecretKey,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	hasher := hash.NewHasher(hash.DefaultCost)

	// =========================================================================
	// Создание use case services
	// =========================================================================

	orgService := organization.NewService(orgRepo, codeRepo, log)
	authService := auth.NewService(auth.Repositories{
		Admins:   adminRepo,
		Tokens:   refreshTokenRepo,
		Codes:    codeRepo,
		Drivers:  driverRepo,
		Vehicles: vehicleRepo,
		Riders:   riderRepo,
		Routes:   routeRepo,
		Records:  recordRepo,
		Sessions: sessionRepo,
	}, orgService, tokenService, hasher, location, log)
	driverService := driver.NewService(driverRepo, refreshTokenRepo, hasher, log)
	vehicleService := vehicle.NewService(vehicleRepo, log)
	routeService := route.NewService(routeRepo, log)
	riderService := rider.NewService(riderRepo, log)
	recordService := record.NewService(record.Repositories{
		Records:  recordRepo,
		Drivers:  driverRepo,
		Vehicles: vehicleRepo,
		Routes:   routeRepo,
		Riders:   riderRepo,
		Sessions: sessionRepo,
	}, publisher, location, log)
	reportService := report.NewService(recordRepo, vehicleRepo, location, log)

	created, err := authService.BootstrapSuperAdmin(ctx, cfg.App.SuperAdminEmail, cfg.App.SuperAdminPassword)
	if err != nil {
		log.Fatal("Failed to bootstrap super admin", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if created {
		log.Info("Super admin created", map[string]interface{}{
			"email": cfg.App.SuperAdminEmail,
		})
	}

	log.Info("Use case services initialized")

	// =========================================================================
	// Фоновые задачи
	// =========================================================================

	jobs := scheduler.New(log)
	err = jobs.Register(scheduler.Job{
		Name:     "delete_expired_refresh_tokens",
		Interval: cfg.Scheduler.CleanupInterval,
		Run: func(ctx context.Context) error {
			deleted, err := refreshTokenRepo.DeleteExpired(ctx, time.Now())
			if err != nil {
				return err
			}
			if deleted > 0 {
				log.Info("Expired refresh tokens deleted", map[string]interface{}{
					"count": deleted,
				})
			}
			return nil
		},
	})
	if err != nil {
		log.Fatal("Failed to schedule token cleanup", map[string]interface{}{
			"error": err.Error(),
		})
	}
	jobs.Start()
	defer jobs.Stop()

	// =========================================================================
	// Создание и настройка HTTP router
	// =========================================================================

	router := deliveryHTTP.NewRouter(deliveryHTTP.Handlers{
		Auth:         deliveryHTTP.NewAuthHandler(authService, log),
		Organization: deliveryHTTP.NewOrganizationHandler(orgService, authService, log),
		Driver:       deliveryHTTP.NewDriverHandler(driverService, log),
		Vehicle:      deliveryHTTP.NewVehicleHandler(vehicleService, log),
		Route:        deliveryHTTP.NewRouteHandler(routeService, log),
		Rider:        deliveryHTTP.NewRiderHandler(riderService, log),
		Record:       deliveryHTTP.NewRecordHandler(recordService, log),
		Report:       deliveryHTTP.NewReportHandler(reportService, log),
	}, tokenService, cfg, log)

	handler := router.Setup()

	log.Info("HTTP router configured")

	// =========================================================================
	// Создание HTTP сервера
	// =========================================================================

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info("API server listening", map[string]interface{}{
			"address": srv.Addr,
		})
		serverErrors <- srv.ListenAndServe()
	}()

	// =========================================================================
	// Graceful shutdown
	// =========================================================================

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Error("Server error", map[string]interface{}{
			"error": err.Error(),
		})

	case sig := <-shutdown:
		log.Info("Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})

		// Даем серверу 30 секунд на graceful shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})

			if err := srv.Close(); err != nil {
				log.Error("Failed to close server", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		log.Info("Server stopped gracefully")
	}
}
