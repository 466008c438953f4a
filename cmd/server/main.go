package main

import (
	"log/slog"
	"net/http"

	"github.com/stridelog/stridelog/internal/app"
	"github.com/stridelog/stridelog/internal/config"
	"github.com/stridelog/stridelog/internal/logger"
	"github.com/stridelog/stridelog/internal/routes"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	handler := routes.SetupRoutes(app)
	slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	err = server.ListenAndServe()
	if err != nil {
		slog.Error("server failed", "error", err)
		panic(err)
	}
}
