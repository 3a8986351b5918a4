package events

import (
	"context"
	"sync"

	"pesobot/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAccountCreated      EventType = "account_created"
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeCaptchaSolved       EventType = "captcha_solved"
	EventTypeWithdrawalRequested EventType = "withdrawal_requested"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// AccountCreatedEvent represents a first-seen user receiving the starting grant
type AccountCreatedEvent struct {
	TelegramID     int64
	Username       string
	StartingWallet int64
}

func (e AccountCreatedEvent) Type() EventType {
	return EventTypeAccountCreated
}

// BalanceChangeEvent represents a balance mutation that occurred
type BalanceChangeEvent struct {
	TelegramID        int64
	EntryType         models.EntryType
	DeltaWallet       int64
	DeltaWithdrawable int64
	NewWallet         int64
	NewWithdrawable   int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// CaptchaSolvedEvent represents a correctly answered captcha
type CaptchaSolvedEvent struct {
	TelegramID int64
	Reward     int64
}

func (e CaptchaSolvedEvent) Type() EventType {
	return EventTypeCaptchaSolved
}

// WithdrawalRequestedEvent represents a newly created withdrawal request
type WithdrawalRequestedEvent struct {
	RequestID  int64
	TelegramID int64
	Username   string
	Amount     int64
}

func (e WithdrawalRequestedEvent) Type() EventType {
	return EventTypeWithdrawalRequested
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the caller; balance
	// mutation must never wait on a chat delivery.
	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and
// flushes them to the underlying bus only after the DB commit succeeds.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Use a background context so handlers outlive the request that
	// produced the events.
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard is called after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
