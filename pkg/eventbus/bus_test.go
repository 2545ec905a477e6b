package eventbus

import (
	"context"
	"errors"
	"testing"
)

func TestDispatchOrder(t *testing.T) {
	bus := New()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		bus.Listen("topic", func(ctx context.Context, payload any) error {
			got = append(got, i)
			return nil
		})
	}

	bus.Dispatch(context.Background(), "topic", nil)

	if len(got) != 5 {
		t.Fatalf("expected 5 listener calls, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("listeners ran out of registration order: %v", got)
		}
	}
}

func TestDispatchContinuesAfterListenerError(t *testing.T) {
	bus := New()

	var secondRan bool
	bus.Listen("topic", func(ctx context.Context, payload any) error {
		return errors.New("boom")
	})
	bus.Listen("topic", func(ctx context.Context, payload any) error {
		secondRan = true
		return nil
	})

	bus.Dispatch(context.Background(), "topic", nil)

	if !secondRan {
		t.Fatal("listener after a failing one did not run")
	}
}

func TestDispatchIsReentrant(t *testing.T) {
	bus := New()

	var cascade []string
	bus.Listen("first", func(ctx context.Context, payload any) error {
		cascade = append(cascade, "first")
		bus.Dispatch(ctx, "second", nil)
		return nil
	})
	bus.Listen("second", func(ctx context.Context, payload any) error {
		cascade = append(cascade, "second")
		return nil
	})

	bus.Dispatch(context.Background(), "first", nil)

	if len(cascade) != 2 || cascade[0] != "first" || cascade[1] != "second" {
		t.Fatalf("unexpected cascade: %v", cascade)
	}
}

func TestDispatchNoListeners(t *testing.T) {
	bus := New()
	// must not panic
	bus.Dispatch(context.Background(), "nobody-home", 42)
}
