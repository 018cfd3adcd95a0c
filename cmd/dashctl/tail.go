package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/stream"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/views"
)

const tailMaxItems = 200

func newTailCmd(a *app) *cobra.Command {
	var opts stream.Options

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow new errors as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.MaxItems < opts.FetchLimit {
				opts.MaxItems = opts.FetchLimit
			}
			live := stream.NewLive(a.client, opts, nil, nil, a.log)
			live.OnFresh(func(records []domain.ErrorRecord) {
				for _, r := range records {
					if a.asJSON {
						_ = a.printJSON(r)
						continue
					}
					row := views.NewErrorRow(r, now())
					fmt.Fprintf(a.out, "%s  %-7s  %-20s  x%-4d  %s  %s\n",
						row.LastSeen.Local().Format("15:04:05"), row.Level, row.Source, row.Count, row.ID, row.Message)
				}
			})

			ctx := cmd.Context()
			live.Start(ctx)
			fmt.Fprintf(cmd.ErrOrStderr(), "Following errors every %s, Ctrl-C to stop\n", opts.Interval)
			<-ctx.Done()
			live.Stop()
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", stream.DefaultInterval, "poll interval")
	cmd.Flags().IntVar(&opts.FetchLimit, "limit", stream.DefaultFetchLimit, "records fetched per poll")
	// Records that fall out of the buffer count as fresh again, so keep it
	// well above the fetch limit.
	cmd.Flags().IntVar(&opts.MaxItems, "max", tailMaxItems, "records remembered between polls")
	return cmd
}
