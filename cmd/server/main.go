package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mapshare/internal/config"
	"mapshare/internal/db"
	"mapshare/internal/events"
	"mapshare/internal/handlers"
	"mapshare/internal/logging"
	"mapshare/internal/mapsync"
	"mapshare/internal/realtime"
	"mapshare/internal/services"
	"mapshare/internal/storage"
	"mapshare/internal/store"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("invalid logging config", "error", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	files, err := storage.Open(ctx, cfg.StorageURL, cfg.PublicStorageURL)
	if err != nil {
		return err
	}
	defer files.Close()

	hub := realtime.NewHub()
	var feed realtime.Publisher = hub
	if cfg.RedisURL != "" {
		client, err := realtime.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		bridge := realtime.NewRedisBridge(hub, client, logger)
		go bridge.Run(ctx)
		feed = bridge
		logger.Info("realtime fan-out over redis enabled")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		logger.Info("message events over amqp enabled")
	}

	users := store.NewUserStore(database)
	profiles := store.NewProfileStore(database)
	wallets := store.NewWalletStore(database)
	transactions := store.NewTransactionStore(database)
	paymentRequests := store.NewPaymentRequestStore(database)
	messages := store.NewMessageStore(database)
	locations := store.NewLocationStore(database)
	deals := store.NewHotDealStore(database)
	treasures := store.NewTreasureStore(database)
	businesses := store.NewBusinessProfileStore(database)
	txRunner := db.NewTxRunner(database)

	wallet := services.NewWalletService(txRunner, wallets, transactions, feed)
	messageService, err := services.NewMessageService(txRunner, wallet, messages, paymentRequests, files, feed, publisher, logger, cfg.MessageFee, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	synchronizer := mapsync.New(locations, deals, logger)
	changes, unsubscribe := hub.Listen(64, mapsync.Tables...)
	defer unsubscribe()
	go synchronizer.Run(ctx, changes)

	handler := handlers.New(cfg, logger, handlers.Deps{
		TxRunner:   txRunner,
		Users:      users,
		Profiles:   profiles,
		Wallet:     wallet,
		Messages:   messageService,
		Locations:  services.NewLocationService(locations, feed),
		HotDeals:   services.NewHotDealService(deals, files, feed, logger, cfg.MaxUploadBytes),
		Treasures:  services.NewTreasureService(txRunner, wallet, treasures, feed, cfg.PublicBaseURL),
		Businesses: services.NewBusinessService(businesses, files, logger, cfg.MaxUploadBytes),
		Map:        synchronizer,
		Files:      files,
		Hub:        hub,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("mapshare API listening", "addr", server.Addr, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
