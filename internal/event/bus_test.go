package event

import (
	"sync"
	"testing"
	"time"
)

func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()

	received := make(chan Event, 1)
	bus.Subscribe("operation.started", func(e Event) {
		received <- e
	})

	bus.Publish(NewOperationStartedEvent("u1", "op-1", 30*time.Minute))

	select {
	case e := <-received:
		started, ok := e.(OperationStartedEvent)
		if !ok {
			t.Fatalf("event type = %T, want OperationStartedEvent", e)
		}
		if started.UserID != "u1" {
			t.Errorf("UserID = %q, want u1", started.UserID)
		}
		if started.Budget != 30*time.Minute {
			t.Errorf("Budget = %v, want 30m", started.Budget)
		}
	default:
		t.Fatal("handler was not called")
	}
}

func TestPublishOnlyMatchingType(t *testing.T) {
	bus := NewBus()

	var calls int
	bus.Subscribe("extension.granted", func(e Event) { calls++ })

	bus.Publish(NewExtensionDeniedEvent("u1", "auto", "contended"))
	if calls != 0 {
		t.Errorf("handler called %d times for non-matching type, want 0", calls)
	}

	bus.Publish(NewExtensionGrantedEvent("u1", "auto", 15*time.Minute, 15*time.Minute))
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestSubscribeAll(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.SubscribeAll(func(e Event) {
		got = append(got, e.EventType())
	})

	bus.Publish(NewCompactionStartedEvent("u1", "op-1"))
	bus.Publish(NewCompactionFinishedEvent("u1", "op-1", true, 2*time.Second, ""))
	bus.Publish(NewHeartbeatStalledEvent("u1", "op-1", time.Minute))

	want := []string{"compaction.started", "compaction.finished", "heartbeat.stalled"}
	if len(got) != len(want) {
		t.Fatalf("received %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	var calls int
	id := bus.Subscribe("operation.ended", func(e Event) { calls++ })

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe() = false for live subscription")
	}
	if bus.Unsubscribe(id) {
		t.Error("Unsubscribe() = true for already-removed subscription")
	}

	bus.Publish(NewOperationEndedEvent("u1", "op-1", "completed", time.Minute))
	if calls != 0 {
		t.Errorf("handler called %d times after unsubscribe, want 0", calls)
	}
}

func TestPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	var secondCalled bool
	bus.Subscribe("operation.started", func(e Event) {
		panic("handler failure")
	})
	bus.Subscribe("operation.started", func(e Event) {
		secondCalled = true
	})

	bus.Publish(NewOperationStartedEvent("u1", "op-1", time.Minute))

	if !secondCalled {
		t.Error("second handler not called after first panicked")
	}
}

func TestConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe("heartbeat.stalled", func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(NewHeartbeatStalledEvent("u1", "op-1", time.Second))
		}()
	}
	wg.Wait()

	if count != 10 {
		t.Errorf("handler called %d times, want 10", count)
	}
}

func TestClearRemovesAllSubscriptions(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("operation.started", func(e Event) {})
	bus.SubscribeAll(func(e Event) {})

	if bus.SubscriptionCount() != 2 {
		t.Fatalf("SubscriptionCount() = %d, want 2", bus.SubscriptionCount())
	}

	bus.Clear()
	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() after Clear = %d, want 0", bus.SubscriptionCount())
	}
}
