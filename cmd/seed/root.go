package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rentfunnel/internal/config"
	"rentfunnel/internal/database"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Database maintenance for the rental funnel",
	Long:  "Migrates the SQL schema, loads the vehicle catalogue, creates back office accounts and demo leads.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB connects to DATABASE_URL regardless of STORAGE_DRIVER; the memory
// backend lives inside the API process and cannot be seeded from here.
func openDB() (*gorm.DB, func(), error) {
	db, err := database.Connect(cfg.DatabaseURL, database.Options{MaxOpenConns: 4})
	if err != nil {
		return nil, nil, eris.Wrap(err, "seed: connect")
	}
	return db, func() {
		if err := database.Close(db); err != nil {
			zap.L().Warn("close database", zap.Error(err))
		}
	}, nil
}
