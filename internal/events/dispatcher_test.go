package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls int
	d.Subscribe(EventCandidateStageChanged, func(context.Context, Event) error {
		calls++
		return errors.New("smtp down")
	})
	d.Subscribe(EventCandidateStageChanged, func(context.Context, Event) error {
		calls++
		return nil
	})
	d.Subscribe(EventApplicationSubmitted, func(context.Context, Event) error {
		t.Fatal("unrelated handler invoked")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventCandidateStageChanged})
	if calls != 2 {
		t.Fatalf("expected both handlers, got %d", calls)
	}
	if err == nil {
		t.Fatal("expected joined handler error")
	}
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	var reached bool
	d.Subscribe(EventCandidateStageChanged, func(context.Context, Event) error {
		panic("template missing")
	})
	d.Subscribe(EventCandidateStageChanged, func(context.Context, Event) error {
		reached = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventCandidateStageChanged}); err == nil {
		t.Fatal("expected panic to surface as error")
	}
	if !reached {
		t.Fatal("second handler should still run")
	}
}
