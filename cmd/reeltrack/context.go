package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"reeltrack/internal/config"
	"reeltrack/internal/logging"
	"reeltrack/internal/production"
	"reeltrack/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
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

// fileLogger builds the operation logger. CLI output stays on stdout;
// structured records go to the log file only.
func (c *commandContext) fileLogger(cfg *config.Config) (*slog.Logger, error) {
	if cfg.Paths.LogDir == "" {
		return logging.NewNop(), nil
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "reeltrack.log")},
	})
}

// withStore opens the production database for a read-only command.
func (c *commandContext) withStore(fn func(cfg *config.Config, store *production.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := production.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

// withManager opens the store under the advisory mutation lock and hands a
// workflow manager to the command. Two CLI invocations never mutate
// concurrently; SQLite serializes the rest.
func (c *commandContext) withManager(fn func(cfg *config.Config, store *production.Store, manager *workflow.Manager) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", cfg.LockPath(), err)
	}
	if !locked {
		return fmt.Errorf("another reeltrack command holds the lock at %s", cfg.LockPath())
	}
	defer lock.Unlock()

	store, err := production.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	logger, err := c.fileLogger(cfg)
	if err != nil {
		return err
	}
	manager, err := workflow.NewManager(cfg, store, logger)
	if err != nil {
		return err
	}
	return fn(cfg, store, manager)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
