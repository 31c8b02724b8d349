package xvalue_test

import (
	"testing"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/manager"
	"github.com/marmos91/nexus/pkg/pubsub"
	"github.com/marmos91/nexus/pkg/xvalue"
)

type recordingSubscriber struct {
	name     string
	received []any
}

func (s *recordingSubscriber) Name() string { return s.name }
func (s *recordingSubscriber) Receive(payload any) {
	s.received = append(s.received, payload)
}

func TestGetSetRoundTrip(t *testing.T) {
	m := manager.New()
	v, err := xvalue.New(m, 1, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if v.Get() != 1 {
		t.Fatalf("expected initial value 1, got %v", v.Get())
	}
	if err := v.Set(5); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v.Get() != 5 {
		t.Fatalf("expected 5 after Set, got %v", v.Get())
	}
}

func TestValidatorRejectsBadValue(t *testing.T) {
	m := manager.New()
	positive := func(v any) (bool, string) {
		n, ok := v.(int)
		if !ok || n <= 0 {
			return false, "value must be a positive int"
		}
		return true, ""
	}
	v, err := xvalue.New(m, 1, positive)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := v.Set(-1); err == nil {
		t.Fatal("expected Set to fail validation")
	}
	if v.Get() != 1 {
		t.Fatalf("expected value to remain unchanged after rejected set, got %v", v.Get())
	}
}

func TestJoinPropagatesThroughHook(t *testing.T) {
	m := manager.New()
	a, _ := xvalue.New(m, 1, nil)
	b, _ := xvalue.New(m, 2, nil)

	ok, msg := a.ValueHook().Join(b.ValueHook(), hook.UseCallerValue)
	if !ok {
		t.Fatalf("join failed: %s", msg)
	}
	if err := b.Set(9); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if a.Get() != 9 {
		t.Fatalf("expected a to follow b after join, got %v", a.Get())
	}
}

func TestUsePublisherBroadcastsCommittedValue(t *testing.T) {
	m := manager.New()
	v, _ := xvalue.New(m, 1, nil)

	pub := pubsub.NewValuePublisher(pubsub.Direct, nil)
	v.UsePublisher(pub)
	sub := &recordingSubscriber{name: "watcher"}
	pub.Subscribe(sub)

	if err := v.Set(2); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if len(sub.received) != 1 || sub.received[0] != 2 {
		t.Fatalf("expected subscriber to receive [2], got %v", sub.received)
	}
}

func TestPublishWithoutAttachedPublisherIsNoop(t *testing.T) {
	m := manager.New()
	v, _ := xvalue.New(m, 1, nil)

	v.Publish()
}
