package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "fintrack/internal/log"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{15, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"eof", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network", errors.New("use of closed network connection"), true},
		{"amqp closed", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"other", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "fintrack", queueName: "fintrack.events"}

	t.Run("initial state is closed", func(t *testing.T) {
		if client.isCircuitOpen() {
			t.Error("circuit breaker should be closed initially")
		}
	})

	t.Run("failures open the circuit", func(t *testing.T) {
		for i := 0; i < maxFailures; i++ {
			client.recordFailure()
		}
		if !client.isCircuitOpen() {
			t.Error("circuit should be open after max failures")
		}
	})

	t.Run("half-open after timeout", func(t *testing.T) {
		client.lastFailure = time.Now().Add(-openTimeout - time.Second)
		if client.isCircuitOpen() {
			t.Error("circuit should let a probe through after the timeout")
		}
		if atomic.LoadInt32(&client.state) != StateHalfOpen {
			t.Error("state should be half-open")
		}
	})

	t.Run("failed probe reopens", func(t *testing.T) {
		client.recordFailure()
		if atomic.LoadInt32(&client.state) != StateOpen {
			t.Error("a failure while half-open should reopen the circuit")
		}
	})

	t.Run("success closes", func(t *testing.T) {
		client.recordSuccess()
		if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
			t.Error("success should reset the breaker")
		}
	})
}

func TestPublishShortCircuits(t *testing.T) {
	client := &Client{exchangeName: "fintrack", queueName: "fintrack.events"}
	e, err := NewEvent(TypeExpenseAdded, "s1", "u1", ExpenseDeletedPayload{ExpenseID: "e1"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Publish(ctx, e); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now()
	if err := client.Publish(context.Background(), e); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

type fakeAck struct {
	acked, nacked, requeued int
}

func (f *fakeAck) Ack(bool) error { f.acked++; return nil }

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked++
	if requeue {
		f.requeued++
	}
	return nil
}

func TestDispatchSettlesDeliveries(t *testing.T) {
	logger := applog.New(applog.Config{Output: io.Discard})
	e, err := NewEvent(TypeBudgetAlert, "s1", "u1", BudgetAlertPayload{BudgetID: "b1", From: "good", To: "warning"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	body, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var seen Event
	ok := func(_ context.Context, got Event) error { seen = got; return nil }
	failing := func(context.Context, Event) error { return errors.New("sheets down") }

	ack := &fakeAck{}
	dispatch(context.Background(), logger, body, ack, ok)
	if ack.acked != 1 || seen.ID != e.ID {
		t.Fatalf("expected ack of %s, got %+v / %s", e.ID, ack, seen.ID)
	}

	ack = &fakeAck{}
	dispatch(context.Background(), logger, body, ack, failing)
	if ack.requeued != 1 {
		t.Fatalf("handler failure should requeue, got %+v", ack)
	}

	ack = &fakeAck{}
	dispatch(context.Background(), logger, []byte(`{"type":"nope"}`), ack, ok)
	if ack.nacked != 1 || ack.requeued != 0 {
		t.Fatalf("unknown event should be dropped, got %+v", ack)
	}
}

func TestEventPayloadRoundTrip(t *testing.T) {
	e, err := NewEvent(TypeExpenseDeleted, "s1", "u1", ExpenseDeletedPayload{ExpenseID: "e9"})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Fatal("envelope should carry id and timestamp")
	}

	body, _ := e.ToJSON()
	parsed, err := EventFromJSON(body)
	if err != nil {
		t.Fatalf("EventFromJSON: %v", err)
	}
	p, err := DecodePayload[ExpenseDeletedPayload](parsed)
	if err != nil || p.ExpenseID != "e9" {
		t.Fatalf("payload = %+v, err = %v", p, err)
	}
}
