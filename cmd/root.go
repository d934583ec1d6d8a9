package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	config "kanban-board.com/kanban-board/internal/configs"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "kanban",
	Short:         "Kanban board service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file; environment variables override it")
}

// loadConfig reads .env, the config file and the environment, and applies
// the log level.
func loadConfig() (config.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info(".env file not found, using environment variables")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, err
	}
	log.SetLevel(level)

	return cfg, nil
}
