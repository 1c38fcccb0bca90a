// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs synchronization jobs on a bounded pool and schedules
// the periodic refresh tasks.
package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"golang.org/x/sync/errgroup"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Job is one unit of work.
type Job func(ctx context.Context) error

// Future is the pending result of a submitted job.
type Future struct {
	done chan struct{}
	err  error
}

// Wait blocks until the job finished or ctx is done. Giving up on the wait
// does not stop the job.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pool runs at most size jobs at once.
type Pool struct {
	group  *errgroup.Group
	logger *logger.Logger

	mu     sync.RWMutex
	closed bool
}

func NewPool(size int, log *logger.Logger) *Pool {
	g := new(errgroup.Group)
	g.SetLimit(size)
	return &Pool{group: g, logger: log}
}

// Submit queues job and blocks only while every slot is busy. The job keeps
// the values of ctx (its logger) but not its cancellation, so it completes
// even when the submitter stops waiting.
func (p *Pool) Submit(ctx context.Context, name string, job Job) *Future {
	f := &Future{done: make(chan struct{})}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		f.err = ErrPoolClosed
		close(f.done)
		return f
	}

	jobCtx := p.logger.WithJob(context.WithoutCancel(ctx), name)
	p.group.Go(func() error {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("job %s panicked: %v", name, r)
				logger.FromContext(jobCtx).Error().Str("func", "*Pool.Submit").Msg(f.err.Error())
			}
		}()

		f.err = job(jobCtx)
		if f.err != nil {
			logger.FromContext(jobCtx).Err(f.err).Str("func", "*Pool.Submit").Msg("job failed")
		}
		// job errors travel through the future, never through the group
		return nil
	})
	return f
}

// Run submits every job and waits for all of them. The joined error of the
// failed jobs is returned.
func (p *Pool) Run(ctx context.Context, name string, jobs ...Job) error {
	futures := make([]*Future, 0, len(jobs))
	for _, job := range jobs {
		futures = append(futures, p.Submit(ctx, name, job))
	}

	var errs []error
	for _, f := range futures {
		if err := f.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close rejects new jobs and waits for the running ones.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	_ = p.group.Wait()
}
