package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_SubscribeAndEmit(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	var mu sync.Mutex
	var received []Event

	done := make(chan struct{})
	bus.Subscribe(EventTypeCaptchaSolved, func(ctx context.Context, event Event) {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		close(done)
	})

	bus.Emit(ctx, CaptchaSolvedEvent{TelegramID: 123456, Reward: 7})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 1)
	solved := received[0].(CaptchaSolvedEvent)
	assert.Equal(t, int64(123456), solved.TelegramID)
	assert.Equal(t, int64(7), solved.Reward)
}

func TestBus_Emit_OnlyMatchingType(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	invoked := make(chan EventType, 2)
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		invoked <- event.Type()
	})

	bus.Emit(ctx, WithdrawalRequestedEvent{RequestID: 1, TelegramID: 123456, Amount: 1000})
	bus.Emit(ctx, BalanceChangeEvent{TelegramID: 123456, DeltaWallet: -10})

	select {
	case eventType := <-invoked:
		assert.Equal(t, EventTypeBalanceChange, eventType)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	select {
	case eventType := <-invoked:
		t.Fatalf("unexpected second invocation for %s", eventType)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_Emit_HandlerPanicIsolated(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	done := make(chan struct{})
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		panic("handler exploded")
	})
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		close(done)
	})

	bus.Emit(ctx, BalanceChangeEvent{TelegramID: 123456})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("surviving handler was not invoked")
	}
}

func TestTransactionalBus_FlushAfterCommit(t *testing.T) {
	bus := NewBus()
	txBus := NewTransactionalBus(bus)
	ctx := context.Background()

	received := make(chan Event, 2)
	bus.Subscribe(EventTypeWithdrawalRequested, func(ctx context.Context, event Event) {
		received <- event
	})

	txBus.Publish(WithdrawalRequestedEvent{RequestID: 1, TelegramID: 123456, Amount: 1000})

	// Nothing reaches the real bus until the flush
	select {
	case <-received:
		t.Fatal("event leaked before flush")
	case <-time.After(50 * time.Millisecond):
	}

	txBus.Flush(ctx)

	select {
	case event := <-received:
		assert.Equal(t, EventTypeWithdrawalRequested, event.Type())
	case <-time.After(time.Second):
		t.Fatal("event was not flushed")
	}
}

func TestTransactionalBus_DiscardDropsPending(t *testing.T) {
	bus := NewBus()
	txBus := NewTransactionalBus(bus)
	ctx := context.Background()

	received := make(chan Event, 1)
	bus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		received <- event
	})

	txBus.Publish(BalanceChangeEvent{TelegramID: 123456, DeltaWallet: -10})
	txBus.Discard()
	txBus.Flush(ctx)

	select {
	case <-received:
		t.Fatal("discarded event was delivered")
	case <-time.After(50 * time.Millisecond):
	}
}
