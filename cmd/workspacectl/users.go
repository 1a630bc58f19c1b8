package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func userCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(userCreateCmd(a), userShowCmd(a))
	return cmd
}

func userCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <email>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.store.CreateUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
}

func userShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <email>",
		Short: "Show a user's id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.store.FindUserByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", user.ID, user.Email)
			return nil
		},
	}
}
