package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-psafe-cache/internal/logger"
)

type periodicTask struct {
	name     string
	interval time.Duration
	run      Job
}

// Scheduler runs registered tasks on tickers. It is idle until Start.
type Scheduler struct {
	tasks  []periodicTask
	logger *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(log *logger.Logger) *Scheduler {
	return &Scheduler{logger: log}
}

// Every registers run to be called each interval after Start. Intervals that
// are zero or negative default to 5 minutes.
func (s *Scheduler) Every(name string, interval time.Duration, run Job) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, periodicTask{name: name, interval: interval, run: run})
}

// Start stops a previous run, then launches one goroutine per task. The
// goroutines exit when ctx is cancelled or Stop is called. A failed run is
// logged and retried on the next tick.
func (s *Scheduler) Start(ctx context.Context) {
	s.Stop()

	s.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	tasks := append([]periodicTask(nil), s.tasks...)
	s.wg.Add(len(tasks))
	s.mu.Unlock()

	for _, task := range tasks {
		go func() {
			defer s.wg.Done()
			s.loop(runCtx, task)
		}()
	}
}

func (s *Scheduler) loop(ctx context.Context, task periodicTask) {
	t := time.NewTicker(task.interval)
	defer t.Stop()

	taskCtx := s.logger.WithJob(ctx, task.name)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task.run(taskCtx); err != nil {
				logger.FromContext(taskCtx).Err(err).Str("func", "*Scheduler.loop").Msg("periodic task failed")
			}
		}
	}
}

// Stop cancels the running tasks and blocks until they exit. Safe to call
// when the scheduler is not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
