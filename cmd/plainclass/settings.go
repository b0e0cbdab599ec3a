package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plainclass/internal/config"
	"plainclass/internal/logger"
)

// loadConfig reads --config, or the nearest plainclass.toml.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, err
	}
	return config.Discover(wd)
}

// setupLogging configures the default logger from the flags and the config
// file, flags taking precedence, and stores it in the command context.
func setupLogging(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Root().PersistentFlags()
	levelFlag, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logJSON, err := flags.GetBool("log-json")
	if err != nil {
		return fmt.Errorf("failed to get log-json flag: %w", err)
	}

	levelName := cfg.Log.Level
	if flags.Changed("log-level") {
		levelName = levelFlag
	}
	level := logger.ParseLevel(levelName)
	if level == logger.NoLevel {
		return fmt.Errorf("invalid log level %q (expected debug|info|warn|error)", levelName)
	}
	if quiet, _ := flags.GetBool("quiet"); quiet && !flags.Changed("log-level") {
		level = logger.ErrorLevel
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = level
	logCfg.JSON = cfg.Log.JSON || logJSON
	logger.Init(logCfg)
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), logger.GetDefault()))
	if cfg.Path != "" {
		logger.GetDefault().Debug("loaded config", "path", cfg.Path)
	}
	return nil
}
