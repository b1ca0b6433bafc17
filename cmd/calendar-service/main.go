package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"web-calendar/internal/calendar/calendar_api"
	"web-calendar/internal/calendar/db"
	calendar "web-calendar/internal/calendar/service"
	"web-calendar/internal/config"
	"web-calendar/internal/database"
	"web-calendar/internal/database/migrations"
	"web-calendar/internal/kafka"
	"web-calendar/internal/logger"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logger.NewLogger(cfg.Log.Dir, cfg.Log.Color)
	defer logger.Close()

	logger.Info("APP", "Starting calendar service initialization")
	if envErr != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	if err := cfg.ApplyListenArg(os.Args[1:]); err != nil {
		logger.Fatal("CONFIG", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("CONFIG", err.Error())
	}

	ctx := context.Background()

	bunDB, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{Driver: cfg.Database.Driver}, logger)
		if err := runner.RunMigrations(); err != nil {
			logger.Fatal("MIGRATE", err.Error())
		}
		if err := runner.Close(); err != nil {
			logger.Warn("MIGRATE", fmt.Sprintf("Failed to release migration runner: %v", err))
		}
	}

	eventDB := &db.DB{Bun: bunDB}
	if count, err := eventDB.CountEvents(ctx); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("calendar table is not usable: %v", err))
	} else {
		logger.LogDatabase("COUNT", "calendar", fmt.Sprintf("%d events stored", count))
	}

	var notifier calendar.Notifier
	if cfg.Kafka.Enabled {
		topics := []string{cfg.Kafka.Topics.EventCreated, cfg.Kafka.Topics.EventDeleted}
		if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, topics, logger); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, logger)
		defer producer.Close()
		notifier = producer
		logger.Info("KAFKA", fmt.Sprintf("Publishing calendar changes to %v", cfg.Kafka.Brokers))
	}

	eventService := calendar.NewEventService(eventDB, notifier, logger)
	handler := calendar_api.NewHandler(eventService, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      calendar_api.NewRouter(handler, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Calendar service running on %s", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Calendar service shutdown complete")
	}
}
