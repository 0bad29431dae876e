package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"site-panel/internal/app"
	"site-panel/internal/models"
	userservice "site-panel/internal/services/user_service"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage panel operators",
	}

	userCmd.AddCommand(&cobra.Command{
		Use:   "add EMAIL PASSWORD",
		Short: "Create an operator account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				return addUser(cmd, a, args[0], args[1])
			})
		},
	})

	userCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List operator accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(a *app.App) error {
				return listUsers(cmd, a)
			})
		},
	})

	return userCmd
}

func withApp(fn func(a *app.App) error) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()
	defer a.Log.Sync()

	return fn(a)
}

func addUser(cmd *cobra.Command, a *app.App, email, password string) error {
	user, err := a.Users.Create(cmd.Context(), email, password)
	if err != nil {
		if errors.Is(err, userservice.ErrEmailTaken) {
			return fmt.Errorf("%s: %w", email, err)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", user.ID, user.Email)
	return nil
}

func listUsers(cmd *cobra.Command, a *app.App) error {
	users, err := a.Users.List(cmd.Context())
	if err != nil {
		return err
	}

	return writeUserTable(cmd.OutOrStdout(), users)
}

func writeUserTable(out io.Writer, users []models.User) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\n", u.ID, u.Email)
	}
	return w.Flush()
}
