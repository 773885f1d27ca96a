package worker

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Poller calls fn on every tick of interval until stopped.
type Poller struct {
	clock    clock.Clock
	logger   *zap.Logger
	interval time.Duration
	fn       func(ctx context.Context)

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

func NewPoller(c clock.Clock, logger *zap.Logger, interval time.Duration, fn func(ctx context.Context)) *Poller {
	return &Poller{
		clock:    c,
		logger:   logger,
		interval: interval,
		fn:       fn,
		stop:     make(chan struct{}),
	}
}

func (p *Poller) Start(ctx context.Context) {
	ticker := p.clock.Ticker(p.interval)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-p.stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.fn(ctx)
			}
		}
	}()
	p.logger.Debug("poller started", zap.Duration("interval", p.interval))
}

// Stop is safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}
