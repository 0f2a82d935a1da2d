package main

import (
	"github.com/spf13/cobra"

	"github.com/hacktopia/platform/internal/database/database"
	"github.com/hacktopia/platform/internal/database/migrate"
)

func newMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.New(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close(db) }()

			if down {
				return migrate.Rollback(db, log)
			}
			return migrate.Migrate(db, log)
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back the most recent migration")
	return cmd
}
