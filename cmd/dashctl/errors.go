package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/tracker"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/views"
)

func newErrorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "errors",
		Short: "List, inspect, resolve and delete errors",
	}
	cmd.AddCommand(
		newErrorsListCmd(a),
		newErrorsGetCmd(a),
		newErrorsResolveCmd(a),
		newErrorsDeleteCmd(a),
	)
	return cmd
}

func newErrorsListCmd(a *app) *cobra.Command {
	var (
		query    tracker.ErrorQuery
		level    string
		resolved string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if level != "" {
				parsed, err := domain.ParseLevel(level)
				if err != nil {
					return err
				}
				query.Level = parsed
			}
			if resolved != "" {
				b, err := strconv.ParseBool(resolved)
				if err != nil {
					return fmt.Errorf("invalid --resolved value %q: %w", resolved, err)
				}
				query.Resolved = &b
			}

			list, err := a.client.FetchErrors(cmd.Context(), query)
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(list)
			}

			table := views.NewErrorTable(list, now())
			if table.Empty {
				fmt.Fprintln(a.out, table.Message)
				return nil
			}
			if err := a.printRows(table.Rows); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "\n%d of %d\n", len(table.Rows), table.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&query.Limit, "limit", 20, "page size")
	cmd.Flags().IntVar(&query.Offset, "offset", 0, "page offset")
	cmd.Flags().StringVar(&query.Source, "source", "", "filter by source")
	cmd.Flags().StringVar(&level, "level", "", "filter by level (error, warning, info, debug)")
	cmd.Flags().StringVar(&resolved, "resolved", "", "filter by resolution (true or false)")
	return cmd
}

func newErrorsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a single error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := a.client.FetchErrorByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(record)
			}

			w := a.table()
			fmt.Fprintf(w, "id\t%s\n", record.ID)
			fmt.Fprintf(w, "level\t%s\n", record.Level)
			fmt.Fprintf(w, "source\t%s\n", record.Source)
			fmt.Fprintf(w, "message\t%s\n", record.Message)
			fmt.Fprintf(w, "count\t%d\n", record.Count)
			fmt.Fprintf(w, "resolved\t%t\n", record.Resolved)
			fmt.Fprintf(w, "first seen\t%s\n", record.FirstSeen.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "last seen\t%s (%s)\n", record.LastSeen.Format("2006-01-02 15:04:05"),
				views.TimeAgo(record.LastSeen, now()))
			if err := w.Flush(); err != nil {
				return err
			}
			if record.StackTrace != "" {
				fmt.Fprintf(a.out, "\n%s\n", record.StackTrace)
			}
			return nil
		},
	}
}

func newErrorsResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve ID",
		Short: "Mark an error resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client.ResolveError(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.asJSON {
				return a.printJSON(result)
			}
			fmt.Fprintf(a.out, "%s resolved\n", args[0])
			return nil
		},
	}
}

func newErrorsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.DeleteError(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s deleted\n", args[0])
			return nil
		},
	}
}
