package musicbrainz

import (
	"context"
	"sync"
	"time"
)

// MinInterval is the spacing MusicBrainz requires between requests from one client.
const MinInterval = time.Second

// Throttle serializes requests and keeps consecutive request starts at least
// interval apart. The interval is measured from the moment the previous
// attempt finished, so a slow response never shortens the gap.
type Throttle struct {
	interval time.Duration
	sem      chan struct{}
	last     time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewThrottle returns a Throttle with the given interval. Non-positive values
// select MinInterval.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = MinInterval
	}
	return &Throttle{
		interval: interval,
		sem:      make(chan struct{}, 1),
		now:      time.Now,
		sleep:    SleepWithContext,
	}
}

// Interval reports the configured spacing.
func (t *Throttle) Interval() time.Duration {
	return t.interval
}

// Acquire blocks until the caller may issue a request. The returned release
// function must be called once the attempt completes, successful or not; it
// records the completion time and admits the next caller.
func (t *Throttle) Acquire(ctx context.Context) (func(), error) {
	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if !t.last.IsZero() {
		wait := t.interval - t.now().Sub(t.last)
		if err := t.sleep(ctx, wait); err != nil {
			<-t.sem
			return nil, err
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			t.last = t.now()
			<-t.sem
		})
	}, nil
}

// SleepWithContext blocks for the given duration, returning early if the
// context is cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
