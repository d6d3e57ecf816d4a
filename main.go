package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/parlour/config"
	redisclient "github.com/joy095/parlour/config/redis"
	"github.com/joy095/parlour/events"
	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/routes"
	"github.com/joy095/parlour/services/auth_service"
	"github.com/joy095/parlour/services/booking_service"
	"github.com/joy095/parlour/services/expiry_sweeper"
	"github.com/joy095/parlour/store"
	"github.com/joy095/parlour/utils/mail"
)

func init() {
	config.LoadEnv()
}

func main() {
	if err := run(); err != nil {
		logger.ErrorLogger.Error(err)
		os.Exit(1)
	}
}

// run wires the server and blocks until SIGINT or SIGTERM. Resources opened
// here are closed by their defers before it returns.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger.InitLoggers(cfg.LogDir)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.StorageDriver, cfg.DatabaseURL, cfg.AutoMigrate)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.StorageDriver, err)
	}
	defer st.Close()

	rdb, err := redisclient.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.WarnLogger.Warnf("Redis unavailable, rate limits are per instance: %v", err)
		rdb = nil
	}
	defer redisclient.Close(rdb)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return fmt.Errorf("failed to create kafka publisher: %w", err)
		}
		publisher = kp
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.ErrorLogger.Errorf("Failed to close event publisher: %v", err)
		}
	}()

	smtpCfg := mail.SMTPConfig{
		Host:          cfg.SMTPHost,
		Port:          cfg.SMTPPort,
		Username:      cfg.SMTPUsername,
		Password:      cfg.SMTPPassword,
		FromEmail:     cfg.FromEmail,
		FromName:      cfg.FromName,
		BusinessEmail: cfg.BusinessEmail,
	}
	if !cfg.SMTPConfigured() {
		smtpCfg.Host = ""
	}
	mailer := mail.NewMailer(smtpCfg)

	authSvc, err := auth_service.NewAuthService(st, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create auth service: %w", err)
	}
	if cfg.StorageDriver == config.DriverMemory && cfg.AdminUsername != "" {
		if _, err := authSvc.ProvisionAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			return fmt.Errorf("failed to seed admin %s: %w", cfg.AdminUsername, err)
		}
	}

	bookings := booking_service.NewBookingService(st, mailer, publisher, cfg.BookingFee)

	sweeper := expiry_sweeper.NewSweeper(st, cfg.SweepInterval, cfg.PendingRetention)
	sweeper.Start(ctx)

	r := routes.SetupRouter(routes.Dependencies{
		Config:   cfg,
		Bookings: bookings,
		Auth:     authSvc,
		Store:    st,
		Redis:    rdb,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.InfoLogger.Infof("Parlour booking server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("server failed to listen: %w", err)
			stop()
		}
		close(serveErr)
	}()

	<-ctx.Done()
	logger.InfoLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}

	sweeper.Stop()
	bookings.Wait()

	if err := <-serveErr; err != nil {
		return err
	}
	logger.InfoLogger.Info("Server exited gracefully.")
	return nil
}
