package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/config"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/db"
	"github.com/Windi-Fikriyansyah/techkr_be/internal/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "techkr",
	Short:         "TechKR marketplace API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(routesCmd)
}

// boot loads config and opens the database.
func boot() (config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.IsProduction())
	slog.SetDefault(log)

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		return cfg, log, nil, err
	}
	return cfg, log, gdb, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, gdb, err := boot()
		if err != nil {
			return err
		}
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		log.Info("migrations applied")
		return nil
	},
}
