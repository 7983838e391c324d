package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/library-lending/lending/sweep"
)

const shutdownTimeout = 5 * time.Second

func newSweepCmd(a *app) *cobra.Command {
	var bookID string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Persist overdue loans and expired reservations once",
		Long: `sweep reclassifies every loan past its due date as overdue and every
reservation past its hold period as expired, and appends the resulting events.

Without --book it sweeps every book with open loans or active reservations.`,
		RunE: a.withStore(func(ctx context.Context, cmd *cobra.Command, s *store) error {
			handler, err := a.commandHandler(s)
			if err != nil {
				return err
			}

			if bookID != "" {
				result, sweepErr := handler.HandleSweep(ctx, bookID)
				if sweepErr != nil {
					return sweepErr
				}

				return a.write(cmd.OutOrStdout(), newActionOutput(result))
			}

			scheduler, err := a.scheduler(s, handler)
			if err != nil {
				return err
			}

			report, err := scheduler.SweepOnce(ctx)
			if err != nil {
				return err
			}

			return a.write(cmd.OutOrStdout(), report)
		}),
	}

	cmd.Flags().StringVar(&bookID, "book", "", "sweep only this book")

	return cmd
}

func newSweeperCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweeper",
		Short: "Sweep periodically and serve Prometheus metrics",
		Long: `sweeper runs a sweep every sweep.interval until interrupted.

If metrics.addr is set, it serves the Prometheus metrics of the sweeper,
the command handlers and the event log on /metrics.`,
		RunE: a.withStore(func(ctx context.Context, _ *cobra.Command, s *store) error {
			handler, err := a.commandHandler(s)
			if err != nil {
				return err
			}

			scheduler, err := a.scheduler(s, handler)
			if err != nil {
				return err
			}

			group, groupCtx := errgroup.WithContext(ctx)

			group.Go(func() error {
				return scheduler.Run(groupCtx)
			})

			if a.cfg.Metrics.Addr != "" {
				group.Go(func() error {
					return a.serveMetrics(groupCtx)
				})
			}

			return group.Wait()
		}),
	}

	return cmd
}

func (a *app) scheduler(s *store, handler sweep.SweepHandler) (*sweep.Scheduler, error) {
	return sweep.NewScheduler(s.eventLog, handler,
		sweep.WithInterval(a.cfg.Sweep.Interval),
		sweep.WithConcurrency(a.cfg.Sweep.Concurrency),
		sweep.WithLogger(a.logger),
		sweep.WithMetrics(a.metrics),
	)
}

func (a *app) serveMetrics(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           a.opsRouter(),
		ReadHeaderTimeout: shutdownTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.InfoContext(ctx, "serving metrics", "addr", a.cfg.Metrics.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)

	case err, ok := <-serverErr:
		if !ok {
			return nil
		}

		return err
	}
}
