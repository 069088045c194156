package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/wordkeeper/internal/client/scheduler"
)

func newWatchCommand(c *Cli) *cobra.Command {
	var interval, debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep synchronizing in the background",
		Long: `Synchronize on start and then every --interval.
SIGHUP starts a run immediately; SIGINT or SIGTERM stops watching.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			c.io.Printf("Watching: sync every %s, SIGHUP to sync now, Ctrl+C to stop\n", interval)
			return c.watch(ctx, debounce, ticker.C, hup)
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", c.cfg.WatchInterval, "time between runs")
	cmd.Flags().DurationVar(&debounce, "debounce", c.cfg.Debounce, "delay before a triggered run starts")
	return cmd
}

// watch обслуживает планировщик: ticks запрашивают отложенный запуск,
// hup немедленный
func (c *Cli) watch(ctx context.Context, debounce time.Duration, ticks <-chan time.Time, hup <-chan os.Signal) error {
	sched := scheduler.New(c.syncOnce, debounce, c.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(ctx)
	})
	g.Go(func() error {
		sched.Trigger()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticks:
				sched.Trigger()
			case <-hup:
				sched.CancelPending()
				g.Go(func() error {
					if err := sched.RunNow(ctx); errors.Is(err, scheduler.ErrRunInProgress) {
						c.logger.Info("sync already running, signal ignored")
					}
					return nil
				})
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		c.io.Println("Stopped watching.")
		return nil
	}
	return err
}

// syncOnce запуск синхронизации для фонового режима с короткой сводкой
func (c *Cli) syncOnce(ctx context.Context) error {
	result, err := c.sync.Run(ctx)
	if err != nil {
		c.io.Printf("[%s] sync failed: %v\n", time.Now().Format(time.TimeOnly), err)
		return err
	}
	c.io.Printf("[%s] pulled %d, pushed %d, conflicts %d\n",
		time.Now().Format(time.TimeOnly), result.Pulled, result.Pushed, result.ConflictsPulled+result.Discarded)
	return nil
}

