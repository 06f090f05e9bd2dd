package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/printatelier/storefront/config"
	"github.com/printatelier/storefront/internal/models"
)

func testCfg() config.EventsConfig {
	return config.EventsConfig{WorkerCount: 2, HandlerTimeout: time.Second}
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	b := NewBus(testCfg())

	var mu sync.Mutex
	seen := map[string]string{}

	for _, name := range []string{"catalog", "upscale"} {
		name := name
		err := b.SubscribeProductCreated(name, func(ctx context.Context, p models.Product) error {
			mu.Lock()
			seen[name] = p.ID
			mu.Unlock()
			return nil
		})
		if err != nil {
			t.Fatalf("subscribe %s: %v", name, err)
		}
	}

	b.PublishProductCreated(models.Product{ID: "prod-1"})
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	if seen["catalog"] != "prod-1" || seen["upscale"] != "prod-1" {
		t.Fatalf("not all subscribers saw the event: %v", seen)
	}
}

func TestBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	b := NewBus(testCfg())

	var mu sync.Mutex
	var okRan bool

	if err := b.SubscribeProductCreated("failing", func(ctx context.Context, p models.Product) error {
		return errors.New("provider down")
	}); err != nil {
		t.Fatal(err)
	}
	if err := b.SubscribeProductCreated("ok", func(ctx context.Context, p models.Product) error {
		mu.Lock()
		okRan = true
		mu.Unlock()
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	b.PublishProductCreated(models.Product{ID: "prod-2"})
	b.Wait()

	mu.Lock()
	defer mu.Unlock()
	if !okRan {
		t.Fatal("healthy handler did not run after sibling failure")
	}
}

func TestBusHandlerGetsDeadline(t *testing.T) {
	b := NewBus(config.EventsConfig{WorkerCount: 1, HandlerTimeout: 50 * time.Millisecond})

	done := make(chan error, 1)
	if err := b.SubscribeProductCreated("slow", func(ctx context.Context, p models.Product) error {
		select {
		case <-ctx.Done():
			done <- ctx.Err()
		case <-time.After(5 * time.Second):
			done <- nil
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	b.PublishProductCreated(models.Product{ID: "prod-3"})

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("handler context never expired")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not cancelled")
	}
	b.Wait()
}
