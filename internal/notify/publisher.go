package notify

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

const (
	// DefaultPoolSize bounds concurrent deliveries.
	DefaultPoolSize = 64
	publishTimeout  = 5 * time.Second
)

// Publisher hands events to a Broker off the request goroutine.
type Publisher struct {
	broker Broker
	pool   *ants.Pool
	logger *zap.SugaredLogger
}

// NewPublisher creates a publisher with a non-blocking pool of size workers.
func NewPublisher(broker Broker, size int, logger *zap.SugaredLogger) (*Publisher, error) {
	if size <= 0 {
		size = DefaultPoolSize
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &Publisher{broker: broker, pool: pool, logger: logger}, nil
}

// Publish schedules delivery and returns immediately. The event is dropped
// with a warning when every worker is busy. Delivery outlives ctx's
// cancellation but keeps its values.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	deliverCtx := context.WithoutCancel(ctx)

	err := p.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(deliverCtx, publishTimeout)
		defer cancel()

		if err := p.broker.Publish(ctx, event); err != nil {
			p.logger.Errorw("failed to publish event", "event", event.Name, "error", err)
			return
		}
		p.logger.Debugw("event published", "event", event.Name)
	})
	if err != nil {
		p.logger.Warnw("dropping event", "event", event.Name, "error", err)
	}
}

// Close waits up to timeout for in-flight deliveries.
func (p *Publisher) Close(timeout time.Duration) error {
	return p.pool.ReleaseTimeout(timeout)
}
