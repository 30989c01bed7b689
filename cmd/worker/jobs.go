package main

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-material/internal/app"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

const jobTimeout = 30 * time.Second

type job struct {
	name string
	spec string
	run  func(ctx context.Context) error
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// newScheduler registers jobs in the store timezone. A job still running when
// its next tick fires is skipped, and panics are recovered.
func newScheduler(loc *time.Location, logger zerolog.Logger, jobs []job) (*cron.Cron, error) {
	cl := cronLogger{log: logger}
	sched := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cronParser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	tracer := app.Tracer("worker.jobs")
	for _, j := range jobs {
		_, err := sched.AddFunc(j.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			ctx, span := tracer.Start(ctx, "job "+j.name)
			defer span.End()
			start := time.Now()
			if err := j.run(ctx); err != nil {
				span.RecordError(err)
				logger.Error().Err(err).Str("job", j.name).Msg("scheduled job failed")
				return
			}
			logger.Debug().Str("job", j.name).Dur("took", time.Since(start)).Msg("scheduled job done")
		})
		if err != nil {
			return nil, fmt.Errorf("schedule %s (%q): %w", j.name, j.spec, err)
		}
	}
	return sched, nil
}

type expirer interface {
	ExpireDue(ctx context.Context, now time.Time) ([]int64, error)
}

func expirePromotions(svc expirer, logger zerolog.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		ids, err := svc.ExpireDue(ctx, time.Now())
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			logger.Info().Ints64("promotion_ids", ids).Msg("promotions expired")
		}
		return nil
	}
}
