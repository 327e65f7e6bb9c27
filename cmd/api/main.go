package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/madadgarapp/listings-api/internal/application/notification"
	"github.com/madadgarapp/listings-api/internal/application/push"
	"github.com/madadgarapp/listings-api/internal/config"
	"github.com/madadgarapp/listings-api/internal/infrastructure/dynamo"
	"github.com/madadgarapp/listings-api/internal/infrastructure/fcm"
	jwtinfra "github.com/madadgarapp/listings-api/internal/infrastructure/jwt"
	s3infra "github.com/madadgarapp/listings-api/internal/infrastructure/s3"
	snsinfra "github.com/madadgarapp/listings-api/internal/infrastructure/sns"
	transporthttp "github.com/madadgarapp/listings-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	logger := slog.Default()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 media stores.
	s3Client := s3infra.NewClient(cfg)
	imageStore := s3infra.NewStore(s3Client, cfg.S3ImageBucket, cfg.S3PublicBase)
	videoStore := s3infra.NewStore(s3Client, cfg.S3VideoBucket, cfg.S3PublicBase)

	// Push gateway. A selected-but-unusable gateway is a startup failure;
	// silently dropping every push would be worse.
	var gateway push.Gateway
	switch cfg.PushGateway {
	case config.GatewaySNS:
		p, err := snsinfra.NewPublisher(cfg)
		if err != nil {
			log.Fatalf("SNS push gateway: %v", err)
		}
		gateway = p
	default:
		c, err := fcm.NewClient(cfg)
		if err != nil {
			log.Fatalf("FCM push gateway: %v", err)
		}
		gateway = c
	}

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	tokenRepo := dynamo.NewDeviceTokenRepo(dynamoClient, cfg.DynamoTables.DeviceTokens)
	notifRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)
	sendLogRepo := dynamo.NewSendLogRepo(dynamoClient, cfg.DynamoTables.SendLog)

	dispatcher := push.NewDispatcher(push.Deps{
		TokenRepo: tokenRepo,
		LogRepo:   sendLogRepo,
		Gateway:   gateway,
		ChannelID: cfg.PushChannelID,
		Logger:    logger,
	})
	notifSvc := notification.NewService(notification.ServiceDeps{
		NotificationRepo: notifRepo,
		DeviceRepo:       tokenRepo,
		UserRepo:         userRepo,
		Logger:           logger,
	})
	events := notification.NewEvents(notifSvc, dispatcher, logger)
	outbox := notification.NewOutbox(events, cfg.OutboxCapacity, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go outbox.Run(workerCtx)

	deps := &transporthttp.Deps{
		UserRepo:         userRepo,
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		ItemRepo:         dynamo.NewItemRepo(dynamoClient, cfg.DynamoTables.Items),
		NotificationRepo: notifRepo,
		DeviceTokenRepo:  tokenRepo,
		SendLogRepo:      sendLogRepo,
		ImageStore:       imageStore,
		VideoStore:       videoStore,
		Dispatcher:       dispatcher,
		Events:           events,
		Outbox:           outbox,
		JWTProvider:      jwtProvider,
		Logger:           logger,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, push=%s)", cfg.AppPort, cfg.AppEnv, cfg.PushGateway)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	stopWorker()
	log.Println("Server stopped")
}
