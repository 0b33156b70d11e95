package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dispatchmap/internal/api"
	"dispatchmap/internal/api/handlers"
	"dispatchmap/internal/api/middleware"
	"dispatchmap/internal/config"
	"dispatchmap/internal/events"
	"dispatchmap/internal/geocode"
	"dispatchmap/internal/logger"
	"dispatchmap/internal/orders"
	"dispatchmap/internal/repository/memory"
	"dispatchmap/internal/routing"
	"dispatchmap/internal/services"
	"dispatchmap/internal/stream"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize repositories
	agentRepo := memory.NewAgentRepository()
	positionRepo := memory.NewPositionRepository()
	snapshotRepo := memory.NewSnapshotRepository()

	// External clients
	orderClient := orders.NewClient(cfg.Backend.BaseURL, cfg.Backend.Token, cfg.Backend.Timeout)
	routeClient := routing.NewClient(cfg.Backend.BaseURL, cfg.Backend.Token, cfg.Backend.Timeout, zlog)

	var resolver geocode.Resolver = geocode.Disabled()
	if cfg.Geocode.BaseURL != "" {
		resolver = geocode.NewHTTPResolver(cfg.Geocode.BaseURL, cfg.Geocode.UserAgent, cfg.Geocode.Timeout, zlog)
	}

	var publisher events.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafka.Close()
		publisher = kafka
		zlog.Info("publishing notices to kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	hub := stream.NewHub(zlog)

	// Initialize services
	positionService := services.NewPositionService(agentRepo, positionRepo, cfg.Position.MaxAge, zlog)
	noticeService := services.NewNoticeService(publisher, zlog)
	mapService := services.NewMapService(cfg, positionService, orderClient, resolver, routeClient,
		noticeService, snapshotRepo, hub, zlog)
	trackingService := services.NewTrackingService(orderClient, positionService, resolver, routeClient,
		cfg.Routing.Timeout, zlog)
	poller := services.NewPoller(cfg.Refresh.PollInterval, positionService, mapService, zlog)

	// Initialize handlers
	positionHandler := handlers.NewPositionHandler(positionService)
	mapHandler := handlers.NewMapHandler(mapService, hub)
	trackingHandler := handlers.NewTrackingHandler(trackingService)

	// Setup router
	router := api.NewRouter(positionHandler, mapHandler, trackingHandler)

	if cfg.Log.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.Recovery(zlog), middleware.RequestLogger(zlog))
	router.Setup(engine)

	srv := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     engine,
		ReadTimeout: cfg.Server.ReadTimeout,
		// No WriteTimeout: it would cut long-lived map streams.
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go poller.Run(ctx)

	go func() {
		zlog.Info("starting dispatchmap server", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
