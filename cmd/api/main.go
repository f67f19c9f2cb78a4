package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/go-shop-api/internal/config"
	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/infrastructure/awscfg"
	"github.com/go-shop-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-shop-api/internal/infrastructure/jwt"
	"github.com/go-shop-api/internal/infrastructure/postgres"
	s3infra "github.com/go-shop-api/internal/infrastructure/s3"
	"github.com/go-shop-api/internal/infrastructure/smtp"
	"github.com/go-shop-api/internal/infrastructure/sns"
	"github.com/go-shop-api/internal/observability/metrics"
	"github.com/go-shop-api/internal/pkg/logger"
	transporthttp "github.com/go-shop-api/internal/transport/http"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.IsProduction())
	if envErr != nil {
		log.Debug("no .env file found, reading from environment")
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awscfg.Load(ctx, cfg, cfg.AWSRegion)
	if err != nil {
		return err
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables, log)

	db, err := postgres.Open(cfg.DatabaseURL, cfg.LogSQL, log)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(db); err != nil {
		return err
	}
	store := postgres.New(db)

	mailer, err := smtp.NewMailer(cfg)
	if err != nil {
		return err
	}

	var smsSender sns.SMSSender
	if cfg.SMSEnabled {
		snsCfg, err := awscfg.Load(ctx, cfg, cfg.SNSRegion)
		if err != nil {
			return err
		}
		smsSender = sns.NewSender(snsCfg, cfg.AWSEndpointURL)
	}

	deps := &transporthttp.Deps{
		AdminRepo:    dynamo.NewAdminRepo(dynamoClient, cfg.DynamoTables.Admins),
		CustomerRepo: dynamo.NewCustomerRepo(dynamoClient, cfg.DynamoTables.Customers),
		OTPRepo:      dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OneTimeCodes, cfg.DynamoTables.Customers),
		Store:        store,
		ProductRepo:  postgres.NewProductRepo(store),
		DetailRepo:   postgres.NewProductDetailRepo(store),
		RatingRepo:   postgres.NewRatingRepo(store),
		OrderRepo:    postgres.NewOrderRepo(store),
		WishlistRepo: postgres.NewWishlistRepo(store),
		S3Store:      s3infra.NewStore(s3infra.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.S3BucketName, cfg.S3PublicURL),
		Mailer:       mailer,
		SMSSender:    smsSender,
		JWTProvider:  jwtinfra.NewProvider(cfg.JWT),
		Metrics:      metrics.New("shop-api"),
		Logger:       log,
	}
	svcs := transporthttp.NewServices(cfg, deps)

	if cfg.CreatorEmail != "" {
		err := svcs.Auth.EnsureCreator(ctx, domain.CreateAdminRequest{
			FullName:        cfg.CreatorName,
			Email:           cfg.CreatorEmail,
			Password:        cfg.CreatorPassword,
			ConfirmPassword: cfg.CreatorPassword,
		})
		if err != nil {
			return fmt.Errorf("seed creator admin: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.AppPort),
		Handler:           transporthttp.NewRouter(ctx, cfg, deps, svcs),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.AppPort, "env": cfg.AppEnv}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
	return nil
}
