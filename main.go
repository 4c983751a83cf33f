package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"restaurant-telegram/admin"
	"restaurant-telegram/bot"
	"restaurant-telegram/config"
	"restaurant-telegram/db"
	"restaurant-telegram/events"
	"restaurant-telegram/migrations"
	"restaurant-telegram/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Init(ctx, cfg.DB); err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// migrate subcommand: apply migrations and exit
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := db.ApplyMigrations(ctx, db.Pool, migrations.FS, log); err != nil {
			log.Error("migrate failed", "error", err)
			os.Exit(1)
		}
		return
	}
	if cfg.AutoMigrate {
		if err := db.ApplyMigrations(ctx, db.Pool, migrations.FS, log); err != nil {
			log.Error("auto migrate failed", "error", err)
			os.Exit(1)
		}
	}

	store := services.NewStore(db.Pool)

	var notifiers admin.Notifiers
	if cfg.Telegram.Token == "" {
		log.Info("TOKEN not set, guest notifications disabled")
	} else {
		n, err := bot.New(cfg.Telegram.Token, store, log)
		if err != nil {
			log.Error("telegram notifier unavailable", "error", err)
			os.Exit(1)
		}
		notifiers = append(notifiers, n)
	}
	if cfg.AMQP.URL == "" {
		log.Info("AMQP_URL not set, domain events disabled")
	} else {
		pub, err := events.Dial(cfg.AMQP.URL, log)
		if err != nil {
			log.Error("event publisher unavailable", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		notifiers = append(notifiers, pub)
	}

	site, err := admin.New(store, notifiers, log, cfg.Admin.PageSize)
	if err != nil {
		log.Error("admin site", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      site.Handler(db.Pool.Ping),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		log.Error("server failed", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := site.Wait(shutdownCtx); err != nil {
		log.Warn("pending notifications abandoned", "error", err)
	}
	log.Info("server stopped gracefully")
}
