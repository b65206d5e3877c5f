package worker

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"forefunds/internal/amqp"
)

// Consumer is satisfied by *amqp.Client.
type Consumer interface {
	Consume(ctx context.Context, handler amqp.Handler) error
}

const sweeperStopTimeout = 10 * time.Second

// Run consumes events and sweeps streaks until ctx is cancelled or the
// consumer gives up. A nil consumer runs the sweeper alone.
func Run(ctx context.Context, consumer Consumer, events *EventWorker, sweeper *StreakSweeper) error {
	g, gctx := errgroup.WithContext(ctx)

	if consumer != nil {
		g.Go(func() error {
			return consumer.Consume(gctx, events.Handle)
		})
	}
	g.Go(func() error {
		if err := sweeper.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), sweeperStopTimeout)
		defer cancel()
		return sweeper.Stop(stopCtx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}
