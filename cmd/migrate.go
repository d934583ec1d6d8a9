package cmd

import (
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	config "kanban-board.com/kanban-board/internal/configs"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := config.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return err
		}

		if err := config.Migrate(database); err != nil {
			return err
		}

		log.Infof("schema migrated on %s", cfg.DatabaseDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
