package admin

import (
	"fmt"

	"github.com/cloo-solutions/dokrag/internal/cli"
	"github.com/cloo-solutions/dokrag/internal/database"
	"github.com/spf13/cobra"
)

// MigrateCmd returns the migrate command.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(database.Up), string(database.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction, err := parseDirection(args)
			if err != nil {
				return err
			}

			app, err := cli.LoadApp("migrate")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			defer app.Close()

			dir, _ := cmd.Flags().GetString("migrations-dir")
			return applyMigrations(app, dir, direction)
		},
	}

	cmd.Flags().String("migrations-dir", database.DefaultMigrationsDir, "Directory holding the SQL migrations")

	return cmd
}

func parseDirection(args []string) (database.Direction, error) {
	if len(args) == 0 {
		return database.Up, nil
	}
	switch d := database.Direction(args[0]); d {
	case database.Up, database.Down:
		return d, nil
	}
	return "", fmt.Errorf("unknown direction %q: want up or down", args[0])
}
