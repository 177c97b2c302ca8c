package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/complaint-tickets/internal/domain"
	"github.com/spec-kit/complaint-tickets/internal/ledger"
)

func (c *cli) ticketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "Inspect the ticket ledger",
	}
	cmd.AddCommand(c.ticketsListCmd())
	return cmd
}

func (c *cli) ticketsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger tickets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.close()

			tickets, err := e.ledger.ReadAll(cmd.Context())
			if err != nil {
				if !errors.Is(err, domain.ErrLedgerRead) {
					return err
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
			}
			tickets = ledger.Recent(tickets, c.v.GetInt("limit"))
			if c.v.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), tickets)
			}
			renderTickets(cmd.OutOrStdout(), tickets)
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "maximum tickets to show, 0 for all")
	_ = c.v.BindPFlag("limit", cmd.Flags().Lookup("limit"))
	return cmd
}
