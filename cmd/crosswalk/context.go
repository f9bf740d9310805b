package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"crosswalk/internal/animemap"
	"crosswalk/internal/cachestore"
	"crosswalk/internal/config"
	"crosswalk/internal/logging"
	"crosswalk/internal/providers"
	"crosswalk/internal/resolver"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) JSONMode() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// ensureLogger builds the shared CLI logger. Commands print their own
// results, so the logger stays quiet below warn.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		logger, err := logging.New(logging.Options{Level: "warn", Format: "console"})
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logging.NewComponentLogger(logger, "cli")
	})
	return c.logger, c.loggerErr
}

// withStore opens the equivalence cache for the duration of fn. Every
// invocation opens and closes its own handle; the CLI is a one-shot process.
func (c *commandContext) withStore(fn func(*cachestore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := cachestore.Open(cfg)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// withResolver assembles the full resolution pipeline: store, static anime
// table, and provider registry. The metrics collector is omitted; one-shot
// invocations have nowhere to publish telemetry.
func (c *commandContext) withResolver(fn func(*resolver.Resolver) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	store, err := cachestore.Open(cfg)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer store.Close()
	table, err := animemap.FromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("load anime mapping table: %w", err)
	}
	registry, err := providers.NewRegistry(cfg, logger)
	if err != nil {
		return fmt.Errorf("build provider registry: %w", err)
	}
	res := resolver.New(store, table, registry, nil, logger)
	return fn(res)
}

// withAnimeTable loads only the static mapping table. Lookups never touch
// the database or the provider bridges.
func (c *commandContext) withAnimeTable(fn func(*animemap.Table) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	table, err := animemap.FromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("load anime mapping table: %w", err)
	}
	return fn(table)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
