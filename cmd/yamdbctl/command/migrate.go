package command

import (
	"github.com/spf13/cobra"

	"yamdb/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, logger, err := connect()
		if err != nil {
			return err
		}
		defer database.Close(db)

		return database.Migrate(db, logger)
	},
}
