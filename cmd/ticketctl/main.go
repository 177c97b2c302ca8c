// Command ticketctl runs complaint batches against the ticket ledger from the
// command line.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// cli carries the flag-backed settings shared by every subcommand.
type cli struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	c.v.SetEnvPrefix("TICKETCTL")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "ticketctl",
		Short: "Supplier complaint ticketing",
		Long: `ticketctl classifies uploaded customer complaints, raises tickets for
supplier-attributable issues in the ledger and alerts on suppliers that
cross the aggregate threshold within one upload.

Settings come from the environment (and a .env file), the same variables
the API server reads. Flags override them for a single invocation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "output JSON")
	_ = c.v.BindPFlag("json", root.PersistentFlags().Lookup("json"))

	root.AddCommand(c.runCmd())
	root.AddCommand(c.ticketsCmd())
	root.AddCommand(c.tokenCmd())
	return root
}
