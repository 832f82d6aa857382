// Package dispatch runs jobs in background, without waiting for them.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/labstack/gommon/log"
)

// Dispatcher starts jobs in their own goroutines.
//
// Jobs can not be cancelled once started. Jobs with the same name can run at once.
type Dispatcher struct {
	wg     sync.WaitGroup
	logger *log.Logger
}

func New(logger *log.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

// Go starts job, and returns immediately.
//
// The context passed to job keeps values of ctx, but is never cancelled.
// A panic in job is recovered and logged.
func (d *Dispatcher) Go(ctx context.Context, name string, job func(context.Context)) {
	jctx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Errorf("job %s panicked: %v\n%s", name, r, debug.Stack())
			}
		}()
		d.logger.Debugf("job %s started", name)
		job(jctx)
		d.logger.Debugf("job %s done", name)
	}()
}

// Wait blocks until all jobs started are done, or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("jobs are still running: %w", context.Cause(ctx))
	}
}
