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

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avagyan/atelier_orders/internal/config"
	"github.com/avagyan/atelier_orders/internal/handlers"
	"github.com/avagyan/atelier_orders/internal/logging"
	loggingmw "github.com/avagyan/atelier_orders/internal/middleware/logging"
	"github.com/avagyan/atelier_orders/internal/mykafka"
	"github.com/avagyan/atelier_orders/internal/telegram"
	httpserver "github.com/avagyan/atelier_orders/internal/transport/http"
)

func main() {
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	jwtSecret := []byte(configuration.JWT_SECRET)

	prod := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})

	bot, err := telegram.NewBot(configuration.TELEGRAM_BOT_TOKEN)
	if err != nil {
		log.Fatal(err)
	}

	notifier := &telegram.Notifier{Bot: bot, ChatID: configuration.ADMIN_CHAT_ID}

	botCtx, stopBot := context.WithCancel(context.Background())
	callbackHandler := &telegram.Handler{
		DB:       db,
		Notifier: notifier,
		Producer: prod,
		Log:      logger,
	}
	updCfg := tgbotapi.NewUpdate(0)
	updCfg.Timeout = 60
	go callbackHandler.Run(botCtx, bot.GetUpdatesChan(updCfg))

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:           db,
		AuthHandler:  &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, Producer: prod},
		OrderHandler: &handlers.OrderHandler{DB: db, Producer: prod, Notifier: notifier, UploadDir: configuration.UPLOAD_DIR},
		JWTSecret:    jwtSecret,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	bot.StopReceivingUpdates()
	stopBot()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
