package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"klikpos/internal/config"
	"klikpos/internal/infra"
	"klikpos/internal/model"
	"klikpos/internal/repository"
	"klikpos/internal/router"
	"klikpos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL, cfg.WorkerPoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker handlers are wired here (composition root) so the pool has
	// access to every infrastructure dependency.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	invoiceRepo := repository.NewInvoiceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	dispatcher := worker.NewDispatcher(rdb)
	whatsappCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())

	handlers := worker.Handlers{}
	channels := map[string]worker.Redeliverer{}

	if cfg.WhatsAppEnabled {
		client := infra.NewWhatsAppClient(infra.WhatsAppConfig{
			BaseURL:       cfg.WhatsAppURL,
			Version:       cfg.WhatsAppVersion,
			PhoneNumberID: cfg.WhatsAppPhoneID,
			Token:         cfg.WhatsAppToken,
			Template:      cfg.WhatsAppTemplate,
			Language:      cfg.WhatsAppLanguage,
		})
		if !client.Configured() {
			log.Warn().Msg("WHATSAPP_ENABLED is set but the WhatsApp credentials are incomplete")
		}
		w := worker.NewWhatsAppWorker(client, whatsappCB, invoiceRepo, notificationRepo, rdb)
		handlers[worker.QueueWhatsApp] = w
		channels[model.ChannelWhatsApp] = w
	}

	mailer := infra.NewMailer(infra.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	})
	if mailer.Configured() {
		w := worker.NewEmailWorker(mailer, invoiceRepo, notificationRepo, rdb, cfg.CompanyName, cfg.PDFStoragePath)
		handlers[worker.QueueEmail] = w
		channels[model.ChannelEmail] = w
	}

	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)
	if len(channels) > 0 {
		worker.StartRetryCron(ctx, worker.RetryCronConfig{
			Notifications: notificationRepo,
			Channels:      channels,
			CB:            whatsappCB,
		})
	}

	r := router.New(ctx, cfg, router.Deps{
		DB:           db,
		Redis:        rdb,
		Queue:        dispatcher,
		WhatsAppCB:   whatsappCB,
		EmailEnabled: mailer.Configured(),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("KlikPOS backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
