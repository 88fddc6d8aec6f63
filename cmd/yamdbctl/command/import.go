package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"yamdb/internal/database"
	"yamdb/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Load the CSV dataset from a directory",
	Long: `Import category.csv, genre.csv, users.csv, titles.csv, genre_title.csv,
review.csv and comments.csv from dir (default ./data). Rows whose key already
exists are skipped, so the command can be re-run safely.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "data"
		if len(args) == 1 {
			dir = args[0]
		}

		db, logger, err := connect()
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db, logger); err != nil {
			return err
		}

		results, err := importer.New(db, logger).Run(cmd.Context(), dir)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, r := range results {
			if r.Skipped {
				fmt.Fprintf(out, "%-16s skipped (not found)\n", r.File)
				continue
			}
			fmt.Fprintf(out, "%-16s %d read, %d inserted\n", r.File, r.Read, r.Inserted)
		}
		return nil
	},
}
