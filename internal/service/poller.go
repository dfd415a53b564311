package service

import (
	"context"
	"time"

	"garden_panel/internal/logger"
)

// DefaultPollInterval is used when Run is given a non-positive interval.
const DefaultPollInterval = 5 * time.Second

// Loader refreshes zone state once.
type Loader interface {
	Load(ctx context.Context) error
}

// PollerService calls Load on a ticker. Polls from one PollerService never
// overlap: each waits for the previous one, bounded by the interval.
type PollerService struct {
	loader Loader
	log    *logger.Logger
}

func NewPollerService(loader Loader, log *logger.Logger) *PollerService {
	return &PollerService{loader: loader, log: logger.OrNop(log)}
}

// Run loads immediately and then on every tick until ctx is canceled.
func (p *PollerService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p.log.Infow("poller_started", "interval", interval)
	defer p.log.Infow("poller_stopped")

	p.poll(ctx, interval)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.poll(ctx, interval)
		}
	}
}

// poll runs one load. Failures are already logged by the loader.
func (p *PollerService) poll(ctx context.Context, timeout time.Duration) {
	if ctx.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_ = p.loader.Load(ctx)
}
