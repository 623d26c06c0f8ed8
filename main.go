// File: /main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carrental-api/config"
	"carrental-api/database"
	"carrental-api/jobs"
	"carrental-api/repositories"
	"carrental-api/routes"
	"carrental-api/services"
	"carrental-api/utils"
	"github.com/gin-gonic/gin"
)

type stores struct {
	users    services.UserStore
	cars     services.CarStore
	bookings services.BookingStore
}

func main() {
	cfg := config.Load()
	utils.ConfigureLogger(cfg.LogLevel, cfg.IsProduction())
	log := utils.Logger

	if cfg.UsesDefaultSecret() {
		if cfg.IsProduction() {
			log.Fatal("JWT_SECRET must be set in production")
		}
		log.Warn("JWT_SECRET is not set, using the development default")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	st, err := openStores(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize storage")
	}

	locker, err := newLocker(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize booking locks")
	}

	images, err := services.NewMinioImageStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize image storage")
	}
	bucketCtx, cancelBucket := context.WithTimeout(context.Background(), 10*time.Second)
	if err := images.EnsureBucket(bucketCtx); err != nil {
		log.WithError(err).Warn("image bucket is not reachable, uploads will fail")
	}
	cancelBucket()

	notifier := services.NewNotifier(cfg)
	if cfg.SMTPHost == "" {
		log.Warn("SMTP_HOST is not set, booking emails are disabled")
	}

	authService := services.NewAuthService(st.users, cfg.JWTSecret, cfg.TokenTTL)
	bookingService := services.NewBookingService(st.users, st.cars, st.bookings, locker, notifier)

	router := routes.NewRouter(cfg, routes.Services{
		Auth:     authService,
		Cars:     services.NewCarService(st.cars),
		Bookings: bookingService,
		Owner:    services.NewOwnerService(st.users, st.cars, st.bookings, images),
		Users:    st.users,
	})

	expiryJob := jobs.NewBookingExpiryJob(bookingService, cfg.BookingExpirySchedule)
	if err := expiryJob.Start(); err != nil {
		log.WithError(err).Fatal("failed to start booking expiry job")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("port", cfg.Port).Info("starting car rental API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	expiryJob.Stop()
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.DatabaseDriver == "memory" {
		utils.Logger.Warn("using in-memory storage, data is lost on restart")
		mem := repositories.NewMemoryStore()
		return &stores{users: mem.Users(), cars: mem.Cars(), bookings: mem.Bookings()}, nil
	}

	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if cfg.SeedDemoData {
		if err := database.SeedData(db); err != nil {
			utils.Logger.WithError(err).Warn("failed to seed database")
		}
	}

	return &stores{
		users:    repositories.NewUserRepository(db),
		cars:     repositories.NewCarRepository(db),
		bookings: repositories.NewBookingRepository(db),
	}, nil
}

// newLocker shares car locks through Redis when REDIS_URL is set.
func newLocker(cfg *config.Config) (services.Locker, error) {
	if cfg.RedisURL == "" {
		return services.NewKeyedMutex(), nil
	}

	client, err := services.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	utils.Logger.Info("using redis for booking locks")
	return services.NewRedisLocker(client), nil
}
