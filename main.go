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

	"github.com/bierdeckel/bierdeckel-api/broker"
	"github.com/bierdeckel/bierdeckel-api/config"
	"github.com/bierdeckel/bierdeckel-api/database"
	"github.com/bierdeckel/bierdeckel-api/events"
	"github.com/bierdeckel/bierdeckel-api/hub"
	"github.com/bierdeckel/bierdeckel-api/router"
	"github.com/bierdeckel/bierdeckel-api/services"
	"github.com/bierdeckel/bierdeckel-api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	utils.InitLogger(cfg.LogLevel, cfg.IsRelease())
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}

	staffHub := hub.New()
	notifier := events.Multi{staffHub}
	if cfg.AMQPURL != "" {
		publisher, err := broker.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to broker: %v", err)
		}
		defer publisher.Close()
		notifier = append(notifier, publisher)
		utils.InfoLogger.Infof("Publishing events to exchange %s", cfg.AMQPExchange)
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	svc := services.New(db, notifier, tokens, cfg.PublicBaseURL)
	r := router.SetupRouter(cfg, db, svc, staffHub)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Infof("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.InfoLogger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.ErrorLogger.Errorf("shutdown: %v", err)
	}
}
