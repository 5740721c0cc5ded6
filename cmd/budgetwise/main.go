package main

import (
	"context"
	"os"
	"time"

	"budgetwise/internal/backend"
	"budgetwise/internal/cli"
	apphttp "budgetwise/internal/http"
	"budgetwise/internal/log"
)

func main() {
	logger, cfg := cli.Bootstrap(log.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitRPM:       cfg.RateLimitRPM,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, res.Services, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	// The worker cannot see an in-memory store, so automations run here.
	if backendCfg.Type == backend.MemoryBackend {
		go func() {
			_ = res.Services.Automations.Run(ctx, cfg.AutomationInterval)
		}()
	}

	logger.Info("Starting budgetwise server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"pay_day_policy", backendCfg.PayDayPolicy.String(),
		"events", res.Services.AMQP != nil)

	if err := srv.Start(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
