// Package scheduler runs named maintenance jobs on fixed intervals.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFn is one run of a scheduled job. ctx is cancelled when the
// scheduler stops or the task is replaced.
type TaskFn func(ctx context.Context)

// Scheduler manages periodic background tasks.
type Scheduler struct {
	mu      sync.Mutex
	tickers map[string]*tickerEntry
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger
}

type tickerEntry struct {
	cancel context.CancelFunc
}

// New creates a Scheduler whose tasks stop when ctx is done or Stop is called.
func New(ctx context.Context, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	return &Scheduler{
		tickers: make(map[string]*tickerEntry),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}
}

// AddTicker registers a task to run on a fixed interval.
// If a task with the same name exists, it is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tickers[name]; ok {
		old.cancel()
		delete(s.tickers, name)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.tickers[name] = &tickerEntry{cancel: cancel}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run(ctx, name, fn)
			case <-ctx.Done():
				return
			}
		}
	}()
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", interval))
}

func (s *Scheduler) run(ctx context.Context, name string, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler task panicked",
				zap.String("task", name),
				zap.Any("recover", r))
		}
	}()
	fn(ctx)
}

// Stop cancels all tasks and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}
