package imagesync

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"mataam/internal/events"
)

var ErrInProgress = errors.New("sync already in progress")

// Job runs sync passes on a schedule and on demand, never more than one at a
// time in this process.
type Job struct {
	syncer  *Syncer
	events  events.Publisher
	log     *slog.Logger
	running atomic.Bool
}

func NewJob(s *Syncer, pub events.Publisher, log *slog.Logger) *Job {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Job{syncer: s, events: pub, log: log}
}

// Running reports whether a pass is in flight.
func (j *Job) Running() bool { return j.running.Load() }

// Trigger runs one pass now. It returns ErrInProgress without waiting if
// another pass holds the flag. The pass is not cancelled with ctx once it
// has started.
func (j *Job) Trigger(ctx context.Context) (Result, error) {
	if !j.running.CompareAndSwap(false, true) {
		return Result{}, ErrInProgress
	}
	defer j.running.Store(false)

	start := time.Now()
	j.log.Info("sync: pass started")
	res, err := j.syncer.Run(context.WithoutCancel(ctx))
	if err != nil {
		j.log.Error("sync: pass failed", slog.Any("err", err), slog.Duration("took", time.Since(start)))
		return res, err
	}
	j.log.Info("sync: pass finished",
		slog.Int("newProducts", res.NewProducts),
		slog.Int("newCategories", res.NewCategories),
		slog.Int("newLocations", res.NewLocations),
		slog.Int("skipped", res.Skipped),
		slog.Duration("took", time.Since(start)),
	)
	if res.Created() > 0 {
		j.events.Publish(events.CatalogChanged("sync"))
	}
	return res, nil
}

// Start runs a pass immediately and then every interval until ctx is done.
// Ticks that find a pass still running are skipped. Start blocks; a
// non-positive interval disables the schedule.
func (j *Job) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	j.tick(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			j.tick(ctx)
		}
	}
}

func (j *Job) tick(ctx context.Context) {
	if _, err := j.Trigger(ctx); errors.Is(err, ErrInProgress) {
		j.log.Debug("sync: tick skipped, pass in progress")
	}
}
