package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rentfunnel/internal/repository"
)

var catalogReplace bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load the embedded vehicle catalogue",
	Long:  "Migrates the schema and loads the catalogue when the vehicles table is empty. With --replace the table is rewritten.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		p, err := repository.New(ctx, db)
		if err != nil {
			return eris.Wrap(err, "catalog")
		}
		if catalogReplace {
			if err := p.ReseedVehicles(ctx); err != nil {
				return eris.Wrap(err, "catalog: replace")
			}
		}

		all, err := p.Vehicles().GetAll(ctx)
		if err != nil {
			return eris.Wrap(err, "catalog: count")
		}
		zap.L().Info("catalogue ready", zap.Int("vehicles", len(all)), zap.Bool("replaced", catalogReplace))
		return nil
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogReplace, "replace", false, "overwrite existing vehicles")
	rootCmd.AddCommand(catalogCmd)
}
