package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmuslimabdulj/goat-collab/internal/auth"
	"github.com/mmuslimabdulj/goat-collab/internal/config"
)

func tokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage access tokens",
	}
	cmd.AddCommand(tokenIssueCmd(a))
	return cmd
}

func tokenIssueCmd(a *app) *cobra.Command {
	defaults := config.DefaultConfig()
	var (
		secret = os.Getenv("JWT_SECRET")
		issuer = defaults.JWTIssuer
		ttl    = defaults.TokenTTL
	)
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		issuer = v
	}

	cmd := &cobra.Command{
		Use:   "issue <email>",
		Short: "Issue an access token for a registered user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("JWT_SECRET is required (env or --secret)")
			}
			user, err := a.store.FindUserByEmail(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("user %s: %w", args[0], err)
			}
			token, err := auth.NewVerifier(secret, issuer).Issue(user, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", secret, "HMAC signing secret (defaults to $JWT_SECRET)")
	cmd.Flags().StringVar(&issuer, "issuer", issuer, "Token issuer")
	cmd.Flags().DurationVar(&ttl, "ttl", ttl, "Token lifetime")
	return cmd
}
