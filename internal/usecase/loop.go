package usecase

import (
	"context"
	"time"

	"rivalwatch/internal/ports"
)

// Loop wires the interval driver to repeated collection runs.
type Loop struct {
	driver ports.Scheduler
	run    func(context.Context, time.Time)
}

// NewLoop returns a helper to start/stop recurring collection.
func NewLoop(driver ports.Scheduler, run func(context.Context, time.Time)) *Loop {
	return &Loop{driver: driver, run: run}
}

// Start registers the run function with the provided scheduler.
func (l *Loop) Start(ctx context.Context) error {
	if l.driver == nil || l.run == nil {
		return nil
	}

	job := func(trigger time.Time) {
		l.run(ctx, trigger)
	}

	return l.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (l *Loop) Stop(ctx context.Context) error {
	if l.driver == nil {
		return nil
	}

	return l.driver.Stop(ctx)
}
