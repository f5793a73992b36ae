package appointments

import (
	"context"
	"time"

	"github.com/nailsxoxi/salon-platform/pkg/logging"
)

// Sweeper periodically expires PENDING appointments whose deposit never
// arrived, freeing their holds.
type Sweeper struct {
	service  *Service
	ttl      time.Duration
	interval time.Duration
	logger   *logging.Logger
}

// NewSweeper builds the background sweeper. ttl is how long a PENDING
// appointment may wait for its deposit; interval is how often to sweep.
func NewSweeper(service *Service, ttl, interval time.Duration, logger *logging.Logger) *Sweeper {
	if logger == nil {
		logger = logging.Default()
	}
	return &Sweeper{service: service, ttl: ttl, interval: interval, logger: logger}
}

// Run blocks, sweeping on each tick until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("pending sweeper started", "ttl", s.ttl.String(), "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("pending sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.service.ExpireStale(ctx, s.ttl)
			if err != nil {
				s.logger.Error("pending sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("expired stale pending appointments", "count", n)
			}
		}
	}
}
