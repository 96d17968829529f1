package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/picopico/internal/config"
	"github.com/crucial707/picopico/internal/db"
	"github.com/crucial707/picopico/internal/logging"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:           "picopico",
	Short:         "Picopico admin CLI",
	Long:          "Administrative commands for the Picopico store database. Settings come from the environment or .env.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(config.Load().LogFormat)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := Migrate(cfg); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database is up to date.")
		return nil
	},
}

// Migrate runs the schema migrations. Replaced in tests.
var Migrate = db.Run

func init() {
	RootCmd.AddCommand(migrateCmd)
}

// GetRoot returns the RootCmd.
func GetRoot() *cobra.Command {
	return RootCmd
}
