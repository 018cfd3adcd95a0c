package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/config"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/logger"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/tracker"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/views"
)

// app holds what every command needs once the root has run.
type app struct {
	client  tracker.ErrorTracker
	log     *zap.Logger
	out     io.Writer
	asJSON  bool
	baseURL string
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Inspect the error-tracking service from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.client != nil {
				return nil
			}
			cfg, err := config.LoadTracker()
			if err != nil {
				return err
			}
			if a.baseURL != "" {
				cfg.BaseURL = a.baseURL
			}
			log, err := logger.NewQuiet("dashctl")
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			client, err := tracker.NewClient(*cfg, log)
			if err != nil {
				return err
			}
			a.client = client
			a.log = log
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&a.asJSON, "json", false, "print raw JSON")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "override TRACKER_BASE_URL")

	root.AddCommand(
		newHealthCmd(a),
		newStatsCmd(a),
		newErrorsCmd(a),
		newTailCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the tracking service health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := a.client.CheckHealth(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(health)
			}
			view := views.NewAPIHealth(health)
			fmt.Fprintf(a.out, "status: %s\nhealthy: %t\n", view.Status, view.Healthy)
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show error statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.client.FetchStats(cmd.Context())
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(stats)
			}
			s := views.NewStatsSummary(stats)
			w := a.table()
			fmt.Fprintf(w, "total\t%d\n", s.TotalErrors)
			fmt.Fprintf(w, "resolved\t%d (%d%%)\n", s.ResolvedErrors, s.ResolvedRate)
			fmt.Fprintf(w, "unresolved\t%d\n", s.UnresolvedCount)
			fmt.Fprintf(w, "today\t%d\n", s.ErrorsToday)
			fmt.Fprintf(w, "this week\t%d\n", s.ErrorsThisWeek)
			fmt.Fprintf(w, "this month\t%d\n", s.ErrorsThisMonth)
			return w.Flush()
		},
	}
}

func (a *app) printRows(rows []views.ErrorRow) error {
	w := a.table()
	fmt.Fprintln(w, "ID\tLEVEL\tSOURCE\tCOUNT\tRESOLVED\tLAST SEEN\tMESSAGE")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%s\t%s\n",
			r.ID, r.Level, r.Source, r.Count, r.Resolved, r.Age, truncate(r.Message, 60))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func now() time.Time { return time.Now() }
