package main

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/berrym/lair-chat/internal/security"
	"github.com/berrym/lair-chat/internal/store"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative bookkeeping commands",
	}
	cmd.AddCommand(resetPasswordCmd(), listUsersCmd(), listRoomsCmd())
	return cmd
}

func resetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <username> <new-password>",
		Short: "Reset a user's password without going through the login flow",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, password := args[0], args[1]

			_, st, closeStore, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmdContext()
			user, err := st.Users().GetByUsername(ctx, username)
			if err != nil {
				return err
			}

			hash, salt, err := security.HashPassword(password)
			if err != nil {
				return err
			}
			if err := st.Users().UpdatePassword(ctx, user.ID, hash, salt); err != nil {
				return err
			}

			fmt.Printf("password reset for %s\n", username)
			return nil
		},
	}
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List user accounts that have logged in at least once (accounts with no recorded login are not listed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, closeStore, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeStore()

			users, err := st.Users().ListActiveSince(cmdContext(), 0, store.Page{Limit: 1000})
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Username", "Role", "Created", "Active"})
			for _, u := range users {
				table.Append([]string{
					u.Username,
					string(u.Role),
					time.Unix(int64(u.CreatedAt), 0).UTC().Format(time.RFC3339),
					fmt.Sprintf("%t", u.IsActive),
				})
			}
			table.Render()
			return nil
		},
	}
}

func listRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List active rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, closeStore, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeStore()

			rooms, err := st.Rooms().List(cmdContext(), nil, store.Page{Limit: 1000})
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Name", "Type", "Privacy", "Created"})
			for _, r := range rooms {
				table.Append([]string{
					r.Name,
					string(r.Type),
					string(r.Privacy),
					time.Unix(int64(r.CreatedAt), 0).UTC().Format(time.RFC3339),
				})
			}
			table.Render()
			return nil
		},
	}
}
