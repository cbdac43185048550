package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-progress-engine/internal/adapters/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetBool("list")
		if list {
			files, err := database.Migrations()
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		}

		cfg, err := readConfig()
		if err != nil {
			return err
		}

		db, err := database.Connect(dbConfig(cfg))
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := database.Migrate(cmd.Context(), db)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", applied)
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("list", false, "only list the embedded migrations")
}
