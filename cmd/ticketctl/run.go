package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spec-kit/complaint-tickets/internal/classifier"
	"github.com/spec-kit/complaint-tickets/internal/domain"
	"github.com/spec-kit/complaint-tickets/internal/events"
	"github.com/spec-kit/complaint-tickets/internal/intake"
	"github.com/spec-kit/complaint-tickets/internal/notify"
	"github.com/spec-kit/complaint-tickets/internal/service"
	"github.com/spec-kit/complaint-tickets/internal/worker"
)

func (c *cli) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process a complaint CSV and raise tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.run(ctx, cmd)
		},
	}
	cmd.Flags().StringP("file", "f", "", "complaint CSV to process")
	cmd.Flags().Int("threshold", 0, "aggregate alert threshold (default from AGGREGATE_THRESHOLD)")
	cmd.Flags().Bool("notify", false, "notify per created ticket (default from NOTIFY_PER_TICKET)")
	cmd.Flags().String("recipient", "", "notification recipient (default from ALERT_RECIPIENT)")
	cmd.Flags().String("policy", "", "aggregate counting policy: supplier_issues or all_rows")
	_ = cmd.MarkFlagRequired("file")
	for _, name := range []string{"file", "threshold", "notify", "recipient", "policy"} {
		_ = c.v.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func (c *cli) run(ctx context.Context, cmd *cobra.Command) error {
	f, err := os.Open(c.v.GetString("file"))
	if err != nil {
		return err
	}
	rows, err := intake.FromCSV(f)
	f.Close()
	if err != nil {
		return err
	}

	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.close()

	opts := c.runOptions(service.DefaultRunOptions(e.cfg.Pipeline))
	if err := opts.Validate(); err != nil {
		return err
	}
	if err := e.ledger.EnsureInitialized(ctx); err != nil {
		return err
	}

	classify, err := classifier.New(e.cfg.Classifier, e.redis.ClientHandle(), e.logger)
	if err != nil {
		return err
	}
	dispatcher := events.NewInMemoryDispatcher(nil)
	worker.StartAuditWorker(dispatcher, nil, e.logger)

	pipeline := service.NewPipelineService(service.PipelineDependencies{
		Classifier:    classify,
		Ledger:        e.ledger,
		Notifications: service.NewNotificationService(notify.New(e.cfg.Notification), dispatcher, e.logger),
		Dispatcher:    dispatcher,
		Logger:        e.logger,
	})

	result, runErr := pipeline.Run(ctx, rows, opts)
	if result == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if c.v.GetBool("json") {
		if err := printJSON(out, result); err != nil {
			return err
		}
	} else {
		renderRun(out, result)
		for _, w := range result.Warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
		}
		for _, a := range result.AppendErrors {
			fmt.Fprintln(cmd.ErrOrStderr(), "append failed:", a)
		}
	}
	if runErr != nil {
		return runErr
	}
	if result.FailedAppends > 0 {
		return fmt.Errorf("%d ticket(s) could not be written to the ledger", result.FailedAppends)
	}
	return nil
}

// runOptions applies flags or TICKETCTL_* variables that were set over the
// configured defaults.
func (c *cli) runOptions(opts service.RunOptions) service.RunOptions {
	if c.v.IsSet("threshold") {
		opts.AggregateThreshold = c.v.GetInt("threshold")
	}
	if c.v.IsSet("notify") {
		opts.NotifyPerTicket = c.v.GetBool("notify")
	}
	if c.v.IsSet("recipient") {
		opts.Recipient = c.v.GetString("recipient")
	}
	if c.v.IsSet("policy") {
		opts.Policy = domain.CountingPolicy(c.v.GetString("policy"))
	}
	return opts
}
