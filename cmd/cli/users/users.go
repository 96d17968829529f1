package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crucial707/picopico/cmd/cli/output"
	"github.com/crucial707/picopico/cmd/cli/root"
	"github.com/crucial707/picopico/internal/config"
	"github.com/crucial707/picopico/internal/db"
	"github.com/crucial707/picopico/internal/models"
	"github.com/crucial707/picopico/internal/repo"
)

// Store is the subset of the user repository the commands need.
type Store interface {
	Create(ctx context.Context, username, password string, isAdmin bool) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id int) error
}

// openStore connects to the configured database. Replaced in tests.
var openStore = func() (Store, func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	database, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return repo.NewUserRepo(database), func() { database.Close() }, nil
}

// ==========================
// CLI Command Init
// ==========================
func init() {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
		Long:  "Create, list or delete Picopico accounts directly in the database.",
	}

	usersCmd.AddCommand(createUserCmd(), listUsersCmd(), deleteUserCmd())
	root.GetRoot().AddCommand(usersCmd)
}

// ==========================
// Create User
// ==========================
func createUserCmd() *cobra.Command {
	var username, password string
	var admin bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openStore()
			if err != nil {
				return err
			}
			defer closeFn()

			u, err := store.Create(cmd.Context(), username, password, admin)
			if errors.Is(err, models.ErrDuplicateUsername) {
				return fmt.Errorf("user %q already exists", username)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d, role %s)\n", u.Username, u.ID, u.Role())
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// ==========================
// List Users
// ==========================
func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := openStore()
			if err != nil {
				return err
			}
			defer closeFn()

			users, err := store.List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]interface{}, 0, len(users))
			for _, u := range users {
				rows = append(rows, []interface{}{u.ID, u.Username, u.Role()})
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"ID", "Username", "Role"}, rows)
			return nil
		},
	}
}

// ==========================
// Delete User
// ==========================
func deleteUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			store, closeFn, err := openStore()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := store.Delete(cmd.Context(), id); err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return fmt.Errorf("user %d not found", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", id)
			return nil
		},
	}
}
