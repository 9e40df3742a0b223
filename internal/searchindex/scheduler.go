package searchindex

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// MergeScheduler periodically calls Index.OptimizeIfIdle in the
// background, following the same Start/Stop goroutine shape as the
// teacher's vectorstore background health scanner.
type MergeScheduler struct {
	index    *Index
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewMergeScheduler creates a scheduler that checks idx for a mergeable
// backlog every interval (default: 1 minute).
func NewMergeScheduler(idx *Index, interval time.Duration, logger *zap.Logger) *MergeScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MergeScheduler{
		index:    idx,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins periodic merge-eligibility checks in the background.
func (s *MergeScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("searchindex: merge scheduler started", zap.Duration("interval", s.interval))
	go s.run()
}

// Stop halts the scheduler and waits for its goroutine to exit.
func (s *MergeScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *MergeScheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			merged, err := s.index.OptimizeIfIdle(s.logger)
			if err != nil {
				s.logger.Error("searchindex: background merge failed", zap.Error(err))
				continue
			}
			if merged {
				s.logger.Info("searchindex: background merge triggered")
			}
		}
	}
}
