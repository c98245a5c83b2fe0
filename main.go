package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/config"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/shared/logger"
	"github.com/SamuelLopess03/Consulta-Medica-SD/internal/userdir/bootstrap"

	"github.com/spf13/pflag"
)

func main() {
	configDir := pflag.String("config-dir", "", "directory with userdir.yaml (default $CONFIG_DIR or ./config)")
	logLevel := pflag.String("log-level", "", "DEBUG|INFO|WARN|ERROR (overrides config)")
	pflag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.NewLogger("user-service").Fatal(logger.Entry{
			Action:  "config_load_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	log := logger.NewLoggerWithOptions("user-service", cfg.Log.Level, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	go func() { <-quit; cancel() }()

	if err := bootstrap.Run(ctx, cfg, log); err != nil {
		log.Fatal(logger.Entry{
			Action:  "user_service_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
}
