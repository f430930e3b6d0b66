package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Leganyst/temple-booking/internal/auth"
	"github.com/Leganyst/temple-booking/internal/cache"
	"github.com/Leganyst/temple-booking/internal/config"
	"github.com/Leganyst/temple-booking/internal/db"
	"github.com/Leganyst/temple-booking/internal/model"
	"github.com/Leganyst/temple-booking/internal/obs"
	"github.com/Leganyst/temple-booking/internal/outbox"
	"github.com/Leganyst/temple-booking/internal/repository"
	"github.com/Leganyst/temple-booking/internal/service"
	grpcapi "github.com/Leganyst/temple-booking/internal/transport/grpc"
	httpapi "github.com/Leganyst/temple-booking/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Конфиг из env (и .env, если есть).
	config.LoadEnvFile()
	appCfg, err := config.Load()
	if err != nil {
		return err
	}
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return err
	}

	logger := obs.NewLogger(appCfg.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. БД и миграции.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("sql DB: %w", err)
	}
	defer sqlDB.Close()

	store := repository.NewStore(gormDB)

	// 3. Кэш занятых слотов (необязательный).
	var slotCache service.BookedTimesCache
	var redisCache *cache.BookedTimes
	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: appCfg.RedisAddr, DB: appCfg.RedisDB})
		defer rdb.Close()
		redisCache = cache.NewBookedTimes(rdb, appCfg.SlotCacheTTL)
		slotCache = redisCache
		logger.Info("slot cache enabled", "addr", appCfg.RedisAddr, "ttl", appCfg.SlotCacheTTL)
	}

	// 4. Сервисы ядра.
	availability := service.NewAvailabilityService(store, slotCache, appCfg.SlotGranularity, logger)
	bookings := service.NewBookingService(store, slotCache, appCfg.SlotGranularity, logger)
	basket := service.NewBasketService(store, appCfg.SlotGranularity, logger)
	checkout := service.NewCheckoutService(store, slotCache, appCfg.SlotGranularity, logger)

	// 5. Ретрансляция outbox в Kafka (необязательная).
	if len(appCfg.KafkaBrokers) > 0 {
		pub, err := outbox.NewKafkaPublisher(appCfg.KafkaBrokers, appCfg.KafkaTopic, nil)
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		defer pub.Close()
		relay := &outbox.Relay{
			Events:    store.Events,
			Publisher: pub,
			Interval:  appCfg.OutboxPollInterval,
			Batch:     appCfg.OutboxBatch,
			Logger:    logger,
		}
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox relay stopped", "error", err)
			}
		}()
		logger.Info("outbox relay started", "topic", appCfg.KafkaTopic)
	}

	// 6. gRPC: health + reflection.
	grpcSrv := grpcapi.NewServer()
	lis, err := net.Listen("tcp", appCfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", appCfg.GRPCAddr, err)
	}
	go grpcSrv.Watch(ctx, store, appCfg.HealthPollInterval, logger)
	go func() {
		logger.Info("gRPC server listening", "addr", appCfg.GRPCAddr)
		if err := grpcSrv.GRPC.Serve(lis); err != nil {
			logger.Error("grpc serve", "error", err)
		}
	}()

	// 7. HTTP API.
	ready := func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("db: %w", err)
		}
		if redisCache != nil {
			if err := redisCache.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	}
	router := httpapi.NewRouter(httpapi.Deps{
		Env:            appCfg.Env,
		AllowedOrigins: appCfg.AllowedOrigins,
		Logger:         logger,
		Bookings:       &httpapi.BookingHandler{Availability: availability, Bookings: bookings, Logger: logger},
		Basket:         &httpapi.BasketHandler{Basket: basket, Checkout: checkout, Logger: logger},
		Health:         httpapi.Health{Ready: ready},
		RequireUser:    httpapi.RequireUser(auth.NewTokens(appCfg.JWTSecret), store.Users, logger),
	})
	httpSrv := httpapi.NewServer(appCfg.HTTPAddr, router)
	go func() {
		logger.Info("HTTP server listening", "addr", appCfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	// 8. Грейсфул-шатдаун по сигналу.
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	grpcSrv.Stop()
	return nil
}
