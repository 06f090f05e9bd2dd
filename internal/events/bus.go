package events

import (
	"context"
	"time"

	EventBus "github.com/asaskevich/EventBus"
	"golang.org/x/sync/semaphore"

	"github.com/printatelier/storefront/config"
	"github.com/printatelier/storefront/internal/logger"
	"github.com/printatelier/storefront/internal/models"
)

// TopicProductCreated fires once per inserted product record
const TopicProductCreated = "product.created"

// Handler consumes a product-created event. Handlers are independent:
// one failing does not stop the others, and failures are terminal for the
// delivery (no internal retry).
type Handler func(ctx context.Context, p models.Product) error

// Bus is the in-process trigger fabric connecting record insertion to the
// provisioning and upscale workers. Each delivery runs on its own goroutine,
// bounded by a worker semaphore and a per-handler deadline.
type Bus struct {
	bus     EventBus.Bus
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewBus creates a bus with the configured worker bound and handler deadline
func NewBus(cfg config.EventsConfig) *Bus {
	return &Bus{
		bus:     EventBus.New(),
		sem:     semaphore.NewWeighted(int64(cfg.WorkerCount)),
		timeout: cfg.HandlerTimeout,
	}
}

// SubscribeProductCreated registers a named handler for product creation
func (b *Bus) SubscribeProductCreated(name string, h Handler) error {
	return b.bus.SubscribeAsync(TopicProductCreated, func(p models.Product) {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		if err := b.sem.Acquire(ctx, 1); err != nil {
			logger.Error("Event handler starved", "handler", name, "product_id", p.ID, "error", err)
			return
		}
		defer b.sem.Release(1)

		start := time.Now()
		if err := h(ctx, p); err != nil {
			logger.Error("Event handler failed",
				"handler", name,
				"product_id", p.ID,
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
			return
		}
		logger.Debug("Event handler done",
			"handler", name,
			"product_id", p.ID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}, false)
}

// PublishProductCreated delivers the event to all subscribers asynchronously
func (b *Bus) PublishProductCreated(p models.Product) {
	b.bus.Publish(TopicProductCreated, p)
}

// Wait blocks until all in-flight deliveries have finished
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}
