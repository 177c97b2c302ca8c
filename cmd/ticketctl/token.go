package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/complaint-tickets/internal/auth"
)

func (c *cli) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API access tokens",
	}
	cmd.AddCommand(c.tokenIssueCmd())
	return cmd
}

func (c *cli) tokenIssueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Mint a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
			token, expires, err := tokens.GenerateToken(c.v.GetString("subject"), auth.Role(c.v.GetString("role")))
			if err != nil {
				return err
			}
			if c.v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"token":      token,
					"expires_at": expires.Format(time.RFC3339),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("role", string(auth.RoleViewer), "token role: operator or viewer")
	cmd.Flags().String("subject", "ticketctl", "token subject")
	_ = c.v.BindPFlag("role", cmd.Flags().Lookup("role"))
	_ = c.v.BindPFlag("subject", cmd.Flags().Lookup("subject"))
	return cmd
}
