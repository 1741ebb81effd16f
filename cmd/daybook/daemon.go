package main

import (
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func daemonCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run rollover, purge, and refresh in a loop",
		Long: `Runs the maintenance jobs and a feed refresh, then sleeps for the
configured interval and repeats. Stops on SIGINT or SIGTERM; a cycle
already underway finishes its current step before exiting.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log.Printf("daybook: refreshing every %s", interval)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				began := time.Now()
				if err := doRefresh(ctx); err != nil {
					log.Printf("daybook: refresh failed: %v", err)
				} else {
					log.Printf("daybook: refresh done (%s)", time.Since(began).Round(time.Millisecond))
				}

				select {
				case <-ctx.Done():
					log.Print("daybook: shutting down")
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 30*time.Minute, "duration between refresh cycles (e.g. 5m, 30s, 1h)")
	return cmd
}
