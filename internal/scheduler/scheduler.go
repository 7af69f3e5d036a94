package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Runner is the unit of work the scheduler drives (the analysis service).
type Runner interface {
	RunOnce(ctx context.Context) error
}

type Config struct {
	Interval   time.Duration // e.g. 24*time.Hour
	RunTimeout time.Duration
	OnError    func(err error)
}

// Scheduler re-runs the analysis on a fixed interval, with an immediate
// first run on start.
type Scheduler struct {
	runner Runner
	cfg    Config

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func New(runner Runner, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	return &Scheduler{runner: runner, cfg: cfg}
}

func (s *Scheduler) Start() {
	s.start(true)
}

// StartWithoutInitialRun starts the ticker only, for when a recent
// analysis already exists.
func (s *Scheduler) StartWithoutInitialRun() {
	s.start(false)
}

func (s *Scheduler) start(initialRun bool) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		fmt.Println("[SCHEDULER] Already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	// Initial run on startup (fire-and-forget)
	if initialRun {
		go s.runWithTimeout()
	}

	// Recurring ticker
	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				s.runWithTimeout()
			}
		}
	}()

	fmt.Printf("[SCHEDULER] Started (analysis every %s)\n", s.cfg.Interval)
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	fmt.Println("[SCHEDULER] Stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow manually triggers an analysis outside the normal schedule.
func (s *Scheduler) RunNow(ctx context.Context) error {
	fmt.Println("[SCHEDULER] Manual analysis triggered")
	return s.runner.RunOnce(ctx)
}

func (s *Scheduler) runWithTimeout() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	if err := s.runner.RunOnce(ctx); err != nil {
		fmt.Printf("[SCHEDULER] Analysis failed: %v\n", err)
		if s.cfg.OnError != nil {
			s.cfg.OnError(err)
		}
	}
}
