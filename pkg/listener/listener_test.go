package listener

import (
	"runtime"
	"testing"
)

func TestRegistry_NotifyInvokesLiveListeners(t *testing.T) {
	var r Registry
	calls := 0

	l := New(func() { calls++ })
	r.Add(l)

	r.Notify()
	r.Notify()

	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	runtime.KeepAlive(l)
}

func TestRegistry_RemoveStopsDelivery(t *testing.T) {
	var r Registry
	calls := 0

	l := New(func() { calls++ })
	r.Add(l)
	r.Remove(l)
	r.Notify()

	if calls != 0 {
		t.Fatalf("expected 0 calls after Remove, got %d", calls)
	}
	runtime.KeepAlive(l)
}

func TestRegistry_LazilyForgetsCollectedListeners(t *testing.T) {
	var r Registry

	func() {
		l := New(func() {})
		r.Add(l)
	}()

	runtime.GC()
	runtime.GC()
	r.Notify()

	if r.Len() != 0 {
		t.Fatalf("expected collected listener to be dropped, registry still has %d entries", r.Len())
	}
}

func TestRegistry_MultipleListenersFireInOrder(t *testing.T) {
	var r Registry
	var order []int

	l1 := New(func() { order = append(order, 1) })
	l2 := New(func() { order = append(order, 2) })
	r.Add(l1)
	r.Add(l2)

	r.Notify()

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected order [1 2], got %v", order)
	}
	runtime.KeepAlive(l1)
	runtime.KeepAlive(l2)
}
