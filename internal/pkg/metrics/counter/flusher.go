package counter

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ManuelReschke/CopyFox/internal/pkg/logger"
)

// Flusher periodically drains a GenerationMeter into the database.
type Flusher struct {
	meter    *GenerationMeter
	interval time.Duration
	period   func() string

	ticker  *time.Ticker
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewFlusher creates a stopped flusher. period returns the current usage period.
func NewFlusher(meter *GenerationMeter, interval time.Duration, period func() string) *Flusher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Flusher{meter: meter, interval: interval, period: period}
}

// Start launches the flush worker. Calling Start twice is a no-op.
func (f *Flusher) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return
	}
	f.stopCh = make(chan struct{})
	f.ticker = time.NewTicker(f.interval)
	f.running = true
	logger.L().Info("usage flusher starting", zap.Duration("interval", f.interval))

	f.wg.Add(1)
	go f.worker()
}

// Stop stops the worker and runs a final flush.
func (f *Flusher) Stop() {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return
	}
	f.running = false
	close(f.stopCh)
	f.ticker.Stop()
	f.mu.Unlock()

	f.wg.Wait()
	if err := f.FlushOnce(context.Background()); err != nil {
		logger.L().Error("final usage flush failed", zap.Error(err))
	}
}

// IsRunning returns whether the worker is active.
func (f *Flusher) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// FlushOnce runs a single drain with a bounded timeout.
func (f *Flusher) FlushOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return f.meter.Flush(ctx, f.period())
}

func (f *Flusher) worker() {
	defer f.wg.Done()
	for {
		select {
		case <-f.stopCh:
			logger.L().Info("usage flusher stopping")
			return
		case <-f.ticker.C:
			if err := f.FlushOnce(context.Background()); err != nil {
				logger.L().Error("usage flush failed", zap.Error(err))
			}
		}
	}
}
