package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/welldanyogia/webrana-proxynum-backend/internal/repository"
)

// PurgerConfig holds configuration for the purge worker
type PurgerConfig struct {
	// Interval is how often deleted numbers are checked
	Interval time.Duration
	// After is how long a deleted, unrecoverable number is retained
	After time.Duration
}

// Purger hard-deletes virtual numbers that can no longer be recovered
type Purger struct {
	repo    repository.VirtualNumberRepository
	config  PurgerConfig
	logger  *slog.Logger
	now     func() time.Time
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewPurger creates a new purge worker
func NewPurger(repo repository.VirtualNumberRepository, config PurgerConfig, logger *slog.Logger, now func() time.Time) *Purger {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	if config.After <= 0 {
		config.After = 7 * 24 * time.Hour
	}
	if now == nil {
		now = utcNow
	}

	return &Purger{
		repo:   repo,
		config: config,
		logger: logger,
		now:    now,
		stopCh: make(chan struct{}),
	}
}

// Start begins the purge background job
func (p *Purger) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.loop()

	p.logger.Info("purge worker started",
		slog.Duration("interval", p.config.Interval),
		slog.Duration("after", p.config.After))
}

// Stop gracefully stops the purge background job
func (p *Purger) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("purge worker stopped")
}

// IsRunning returns whether the purge worker is currently running
func (p *Purger) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Purger) loop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if _, err := p.RunOnce(ctx); err != nil {
				p.logger.Error("purge failed", slog.Any("error", err))
			}
			cancel()
		}
	}
}

// RunOnce purges unrecoverable numbers deleted before now minus the retention window
func (p *Purger) RunOnce(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.config.After)
	n, err := p.repo.PurgeDeleted(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		purgedNumbers.Add(float64(n))
		p.logger.Info("purged deleted virtual numbers",
			slog.Int64("count", n),
			slog.Time("deleted_before", cutoff))
	}
	return n, nil
}
