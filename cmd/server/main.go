package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dtbooking/backend/internal/config"
	"github.com/dtbooking/backend/internal/db"
	httpapi "github.com/dtbooking/backend/internal/http"
	"github.com/dtbooking/backend/internal/notify"
	"github.com/dtbooking/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "booking-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	var dispatcher notify.Dispatcher
	if cfg.PushGatewayURL == "" && cfg.SMSGatewayURL == "" {
		dispatcher = &notify.MockDispatcher{Logger: logger}
		logger.Info().Msg("using mock notification dispatcher")
	} else {
		dispatcher = notify.HTTPDispatcher{
			PushURL: cfg.PushGatewayURL,
			SMSURL:  cfg.SMSGatewayURL,
		}
	}

	booking := &service.BookingService{
		Jobs:             store,
		Distances:        store,
		Users:            store,
		Dispatcher:       dispatcher,
		Validator:        validator.New(),
		Logger:           logger,
		DispatchTimeout:  cfg.DispatchTimeout,
		AdminRoleID:      cfg.AdminRoleID,
		SuperadminRoleID: cfg.SuperadminRoleID,
	}

	router := httpapi.Router(cfg, store, booking, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
