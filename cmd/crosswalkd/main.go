package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"crosswalk/internal/config"
	"crosswalk/internal/daemon"
	"crosswalk/internal/logging"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("crosswalkd: %v", err)
	}
}

func run(ctx context.Context) error {
	flags := flag.NewFlagSet("crosswalkd", flag.ExitOnError)
	configPath := flags.String("config", "", "path to the configuration file")
	logLevel := flags.String("log-level", "", "override the configured log level")
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logProviderSnapshot(logger, cfg)

	pidPath := daemon.PIDFilePath(cfg)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	d, err := buildDaemon(cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", logging.Error(err))
		return err
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return err
	}

	<-signalCtx.Done()
	logger.Info("crosswalkd shutting down")
	return nil
}
