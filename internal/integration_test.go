// Package internal contains integration tests that verify the packages
// work together correctly: configuration feeding the operation manager,
// the extension gate serializing against the scheduler, and the event
// bus carrying lifecycle events to a subscriber.
package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/leash/internal/config"
	"github.com/Iron-Ham/leash/internal/event"
	"github.com/Iron-Ham/leash/internal/operation"
)

// TestOperationLifecycleOverBus runs a full operation and checks that a
// transport subscribed to the bus observes the lifecycle in order.
func TestOperationLifecycleOverBus(t *testing.T) {
	bus := event.NewBus()

	var mu sync.Mutex
	var types []string
	bus.SubscribeAll(func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		types = append(types, e.EventType())
	})

	timing := operation.TimingFromConfig(config.Default().Operation)
	// Shrink for test speed; the structure is what matters here.
	timing.InitialDuration = 2 * time.Second
	timing.AutoCheckInterval = time.Hour
	timing.HeartbeatWarn = time.Hour
	timing.HeartbeatRepeat = time.Hour
	timing.CompactionNoticeThreshold = time.Hour

	m := operation.NewManager(timing, operation.WithBus(bus))

	events := make(chan operation.StreamEvent, 8)
	h, err := m.Start(context.Background(), "u1", events, nil)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	events <- operation.ContentDelta("working")
	events <- operation.CompactionStart()
	events <- operation.CompactionEnd(true, "")
	events <- operation.Completed()

	select {
	case <-h.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("operation never resolved")
	}

	if got := h.Result().Status; got != operation.StatusCompleted {
		t.Fatalf("Status = %q, want completed", got)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"operation.started", "compaction.started", "compaction.finished", "operation.ended"}
	if len(types) != len(want) {
		t.Fatalf("event types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, types[i], want[i])
		}
	}
}

// TestManualExtensionVisibleOnBus verifies an extension granted through
// the manager is announced with the accumulated total.
func TestManualExtensionVisibleOnBus(t *testing.T) {
	bus := event.NewBus()

	var mu sync.Mutex
	var grants []event.ExtensionGrantedEvent
	bus.Subscribe("extension.granted", func(e event.Event) {
		mu.Lock()
		defer mu.Unlock()
		grants = append(grants, e.(event.ExtensionGrantedEvent))
	})

	timing := operation.TimingFromConfig(config.Default().Operation)
	timing.InitialDuration = 2 * time.Second
	timing.ExtensionStep = 100 * time.Millisecond
	timing.AutoCheckInterval = time.Hour
	timing.HeartbeatWarn = time.Hour
	timing.HeartbeatRepeat = time.Hour

	m := operation.NewManager(timing, operation.WithBus(bus))

	events := make(chan operation.StreamEvent, 2)
	h, err := m.Start(context.Background(), "u1", events, nil)
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if err := m.RequestManualExtension("u1"); err != nil {
		t.Fatalf("RequestManualExtension() #1 error: %v", err)
	}
	if err := m.RequestManualExtension("u1"); err != nil {
		t.Fatalf("RequestManualExtension() #2 error: %v", err)
	}

	events <- operation.Completed()
	select {
	case <-h.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("operation never resolved")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(grants) != 2 {
		t.Fatalf("grants = %d, want 2", len(grants))
	}
	if grants[0].Kind != "manual" {
		t.Errorf("grant kind = %q, want manual", grants[0].Kind)
	}
	if grants[1].TotalExtension != 200*time.Millisecond {
		t.Errorf("accumulated extension = %v, want 200ms", grants[1].TotalExtension)
	}
}

// TestDefaultConfigDrivesTiming checks the config-to-timing conversion
// that production wiring relies on.
func TestDefaultConfigDrivesTiming(t *testing.T) {
	timing := operation.TimingFromConfig(config.Default().Operation)

	if timing.InitialDuration != 30*time.Minute {
		t.Errorf("InitialDuration = %v, want 30m", timing.InitialDuration)
	}
	if timing.MaxTotalDuration != 2*time.Hour {
		t.Errorf("MaxTotalDuration = %v, want 2h", timing.MaxTotalDuration)
	}
	if timing.ActivityWindow != 3*time.Minute {
		t.Errorf("ActivityWindow = %v, want 3m", timing.ActivityWindow)
	}
}
