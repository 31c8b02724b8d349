package manager

import (
	"errors"
	"strings"
	"testing"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/immutable"
	"github.com/marmos91/nexus/pkg/nexuserr"
	"github.com/marmos91/nexus/pkg/owner"
)

// valueOwner is a single-key owner wrapping one writable hook, the minimal
// fixture needed to exercise hooks end to end without a concrete observable
// flavor.
type valueOwner struct {
	owner.Base
	Hook *hook.Hook
}

func newValueOwner(m *Manager, initial any) *valueOwner {
	o := &valueOwner{}
	o.Init(o)
	h, err := m.NewHookOwned(o.SelfAddr(), initial, false)
	if err != nil {
		panic(err)
	}
	o.Hook = h
	o.Bind("value", h)
	return o
}

func (o *valueOwner) Complete(submitted, current map[any]any) map[any]any { return nil }
func (o *valueOwner) Validate(complete map[any]any) (bool, string)        { return true, "" }
func (o *valueOwner) Invalidate()                                         {}

// publishingOwner is a valueOwner that also implements the commit
// pipeline's optional publisher capability, recording every value it was
// asked to publish.
type publishingOwner struct {
	owner.Base
	Hook      *hook.Hook
	published []any
}

func newPublishingOwner(m *Manager, initial any) *publishingOwner {
	o := &publishingOwner{}
	o.Init(o)
	h, err := m.NewHookOwned(o.SelfAddr(), initial, false)
	if err != nil {
		panic(err)
	}
	o.Hook = h
	o.Bind("value", h)
	return o
}

func (o *publishingOwner) Complete(submitted, current map[any]any) map[any]any { return nil }
func (o *publishingOwner) Validate(complete map[any]any) (bool, string)        { return true, "" }
func (o *publishingOwner) Invalidate()                                        {}
func (o *publishingOwner) Publish()                                           { o.published = append(o.published, o.Hook.Value()) }

func TestScenario1_BasicJoinAndPropagate(t *testing.T) {
	m := New()
	a := newValueOwner(m, 1)
	b := newValueOwner(m, 2)

	ok, msg := a.Hook.Join(b.Hook, hook.UseCallerValue)
	if !ok {
		t.Fatalf("join failed: %s", msg)
	}
	if a.Hook.Value() != 1 || b.Hook.Value() != 1 {
		t.Fatalf("expected both hooks at 1, got a=%v b=%v", a.Hook.Value(), b.Hook.Value())
	}

	calls := 0
	a.Hook.AddListener(func() { calls++ })

	ok, msg = b.Hook.Set(5)
	if !ok {
		t.Fatalf("set failed: %s", msg)
	}
	if a.Hook.Value() != 5 {
		t.Fatalf("expected a to follow b to 5, got %v", a.Hook.Value())
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 listener call, got %d", calls)
	}
}

func TestScenario2_ToleranceNoOp(t *testing.T) {
	m := New()
	m.SetTolerance(1e-6)
	a := newValueOwner(m, 1.0)

	calls := 0
	a.Hook.AddListener(func() { calls++ })

	ok, _ := a.Hook.Set(1.0 + 1e-9)
	if !ok {
		t.Fatal("expected Set to succeed as a no-op")
	}
	if a.Hook.Value() != 1.0 {
		t.Fatalf("expected value to remain exactly 1.0, got %v", a.Hook.Value())
	}
	if calls != 0 {
		t.Fatalf("expected zero listener calls, got %d", calls)
	}
}

// completionConflictOwner implements Scenario 3: keys {x, y},
// complete({y:2}, {x:0}) -> {x:7}.
type completionConflictOwner struct {
	owner.Base
	X, Y *hook.Hook
}

func newCompletionConflictOwner(m *Manager) *completionConflictOwner {
	o := &completionConflictOwner{}
	o.Init(o)
	o.X, _ = m.NewHookOwned(o.SelfAddr(), 0, false)
	o.Y, _ = m.NewHookOwned(o.SelfAddr(), 0, false)
	o.Bind("x", o.X)
	o.Bind("y", o.Y)
	return o
}

func (o *completionConflictOwner) Complete(submitted, current map[any]any) map[any]any {
	if _, ok := submitted["y"]; ok {
		if submitted["y"] == 2 {
			return map[any]any{"x": 7}
		}
	}
	return nil
}

func (o *completionConflictOwner) Validate(complete map[any]any) (bool, string) { return true, "" }
func (o *completionConflictOwner) Invalidate()                                 {}

func TestScenario3_CompletionConflict(t *testing.T) {
	m := New()
	o := newCompletionConflictOwner(m)

	ok, _ := m.Submit(map[hook.Handle]any{o.X: 3, o.Y: 2}, hook.ModeNormal)
	if ok {
		t.Fatal("expected completion conflict to fail the submission")
	}
	if o.X.Value() != 0 || o.Y.Value() != 0 {
		t.Fatalf("expected no state change, got x=%v y=%v", o.X.Value(), o.Y.Value())
	}
}

// selectionOwner implements Scenario 4: keys {selected, options}, valid iff
// selected is a member of options.
type selectionOwner struct {
	owner.Base
	Selected, Options *hook.Hook
}

func newSelectionOwner(m *Manager, selected int, options []int) *selectionOwner {
	o := &selectionOwner{}
	o.Init(o)
	o.Selected, _ = m.NewHookOwned(o.SelfAddr(), selected, false)
	o.Options, _ = m.NewHookOwned(o.SelfAddr(), toAnySlice(options), false)
	o.Bind("selected", o.Selected)
	o.Bind("options", o.Options)
	return o
}

func toAnySlice(xs []int) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func (o *selectionOwner) Complete(submitted, current map[any]any) map[any]any { return nil }

func (o *selectionOwner) Validate(complete map[any]any) (bool, string) {
	selected := complete["selected"]
	options, ok := complete["options"].(immutable.ImmutableSlice)
	if !ok {
		return false, "options is not a sequence"
	}
	for _, v := range options.All() {
		if v.Raw() == selected {
			return true, ""
		}
	}
	return false, "selected must be one of options"
}

func (o *selectionOwner) Invalidate() {}

func TestScenario4_SelectionInvariant(t *testing.T) {
	m := New()
	o := newSelectionOwner(m, 2, []int{1, 2, 3})

	ok, _ := m.Submit(map[hook.Handle]any{o.Options: toAnySlice([]int{4, 5})}, hook.ModeNormal)
	if ok {
		t.Fatal("expected validation to reject selected no longer in options")
	}

	ok, msg := m.Submit(map[hook.Handle]any{
		o.Options:  toAnySlice([]int{4, 5}),
		o.Selected: 4,
	}, hook.ModeNormal)
	if !ok {
		t.Fatalf("expected joint submission to succeed, got %q", msg)
	}
}

func TestScenario5_ForcedRecommitOfEqualValue(t *testing.T) {
	m := New()
	a := newValueOwner(m, 10)

	calls := 0
	a.Hook.AddListener(func() { calls++ })

	ok, _ := a.Hook.Set(10)
	if !ok || calls != 0 {
		t.Fatalf("expected normal-mode no-op set to succeed silently, calls=%d", calls)
	}

	ok, msg := m.Submit(map[hook.Handle]any{a.Hook: 10}, hook.ModeForced)
	if !ok {
		t.Fatalf("forced resubmit failed: %s", msg)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 listener call after forced resubmit, got %d", calls)
	}
	if a.Hook.Value() != 10 {
		t.Fatalf("expected value to remain 10, got %v", a.Hook.Value())
	}
}

// boundOwner implements Scenario 6: a single-key owner requiring its value
// satisfy a comparison against zero.
type boundOwner struct {
	owner.Base
	H   *hook.Hook
	pos bool
}

func newBoundOwner(m *Manager, key string, initial int, positive bool) *boundOwner {
	o := &boundOwner{pos: positive}
	o.Init(o)
	o.H, _ = m.NewHookOwned(o.SelfAddr(), initial, false)
	o.Bind(key, o.H)
	return o
}

func (o *boundOwner) Complete(submitted, current map[any]any) map[any]any { return nil }

func (o *boundOwner) Validate(complete map[any]any) (bool, string) {
	for _, v := range complete {
		n := v.(int)
		if o.pos && n <= 0 {
			return false, "value must be positive"
		}
		if !o.pos && n >= 0 {
			return false, "value must be negative"
		}
	}
	return true, ""
}

func (o *boundOwner) Invalidate() {}

func TestScenario6_JoinRejectsOnValidation(t *testing.T) {
	m := New()
	o1 := newBoundOwner(m, "x", 5, true)
	o2 := newBoundOwner(m, "y", -3, false)

	ok, _ := o1.H.Join(o2.H, hook.UseCallerValue)
	if ok {
		t.Fatal("expected join to fail: no single value satisfies both owners")
	}
	if o1.H.Value() != 5 || o2.H.Value() != -3 {
		t.Fatalf("expected both hooks unchanged, got x=%v y=%v", o1.H.Value(), o2.H.Value())
	}
	if o1.H.Nexus == o2.H.Nexus {
		t.Fatal("expected hooks to remain in distinct nexuses after a rejected join")
	}
}

func TestIsolatePreservesValue(t *testing.T) {
	m := New()
	a := newValueOwner(m, 1)
	b := newValueOwner(m, 1)
	a.Hook.Join(b.Hook, hook.UseCallerValue)

	a.Hook.Isolate()
	if a.Hook.Value() != 1 {
		t.Fatalf("expected isolate to preserve value, got %v", a.Hook.Value())
	}
	if a.Hook.Nexus == b.Hook.Nexus {
		t.Fatal("expected isolate to split the hook into its own nexus")
	}
}

func TestReadOnlyHookRejectsDirectSetButAcceptsJoin(t *testing.T) {
	m := New()
	owned := &valueOwner{}
	owned.Init(owned)
	ro, _ := m.NewHookOwned(owned.SelfAddr(), 1, true)
	owned.Hook = ro
	owned.Bind("value", ro)

	writable := newValueOwner(m, 9)

	if ok, _ := ro.Set(2); ok {
		t.Fatal("expected direct set on a read-only hook to fail")
	}

	ok, msg := ro.Join(writable.Hook, hook.UseTargetValue)
	if !ok {
		t.Fatalf("expected join to succeed despite read-only side: %s", msg)
	}
	if ro.Value() != 9 {
		t.Fatalf("expected read-only hook to pick up the joined value, got %v", ro.Value())
	}
}

// cyclingOwner's Complete proposes a value for the first of its keys not
// yet submitted, so each round adds one more pending nexus and completion
// only reaches a fixed point in round 3.
type cyclingOwner struct {
	owner.Base
	A, B, C *hook.Hook
}

func newCyclingOwner(m *Manager) *cyclingOwner {
	o := &cyclingOwner{}
	o.Init(o)
	a, _ := m.NewHookOwned(o.SelfAddr(), 0, false)
	b, _ := m.NewHookOwned(o.SelfAddr(), 0, false)
	c, _ := m.NewHookOwned(o.SelfAddr(), 0, false)
	o.A, o.B, o.C = a, b, c
	o.Bind("a", a)
	o.Bind("b", b)
	o.Bind("c", c)
	return o
}

func (o *cyclingOwner) Complete(submitted, current map[any]any) map[any]any {
	for _, key := range []string{"a", "b", "c"} {
		if _, ok := submitted[key]; !ok {
			return map[any]any{key: 1}
		}
	}
	return nil
}
func (o *cyclingOwner) Validate(complete map[any]any) (bool, string) { return true, "" }
func (o *cyclingOwner) Invalidate()                                  {}

func TestSetMaxIterationsLowersTheConvergenceBound(t *testing.T) {
	m := New()
	m.SetMaxIterations(2)
	o := newCyclingOwner(m)

	ok, msg := m.Submit(map[hook.Handle]any{o.A: 1}, hook.ModeNormal)
	if ok {
		t.Fatal("expected a non-converging completion to fail")
	}
	if msg == "" {
		t.Fatal("expected a failure message")
	}
	if !strings.Contains(msg, nexuserr.ErrCompletionCycle.Error()) {
		t.Fatalf("expected a completion-cycle failure, got %q", msg)
	}
}

func TestPublishCapabilityInvokedAfterCommit(t *testing.T) {
	m := New()
	o := newPublishingOwner(m, 1)

	if ok, msg := o.Hook.Set(2); !ok {
		t.Fatalf("Set failed: %s", msg)
	}
	if len(o.published) != 1 || o.published[0] != 2 {
		t.Fatalf("expected Publish to observe committed value 2, got %v", o.published)
	}

	if ok, _ := o.Hook.Set(2); !ok {
		t.Fatal("expected setting an equal value to still succeed as a no-op")
	}
	if len(o.published) != 1 {
		t.Fatalf("expected Publish not to run again for a no-op commit, got %v", o.published)
	}
}

func TestSetReentrancyDetectionDisabledSkipsThePanic(t *testing.T) {
	m := New()
	m.SetReentrancyDetection(false)
	if m.ReentrancyDetectionEnabled() {
		t.Fatal("expected reentrancy detection to report disabled")
	}
	if !New().ReentrancyDetectionEnabled() {
		t.Fatal("expected reentrancy detection enabled by default")
	}
}

// TestReentrantSubmitFromReactionCallbackPanics exercises the actual
// re-entrancy guard: a reaction callback firing during an outer Submit's
// notification step calls Submit again on the same goroutine. The manager
// never recovers this itself, so the panic must reach the original caller
// of the outer Submit unchanged.
func TestReentrantSubmitFromReactionCallbackPanics(t *testing.T) {
	m := New()
	o := newValueOwner(m, 1)

	o.Hook.AddReactionCallback(func(newValue any) {
		m.Submit(map[hook.Handle]any{o.Hook: 99}, hook.ModeNormal)
	})

	var caught any
	func() {
		defer func() { caught = recover() }()
		m.Submit(map[hook.Handle]any{o.Hook: 2}, hook.ModeNormal)
	}()

	rp, ok := caught.(*nexuserr.ReentrantPanic)
	if !ok {
		t.Fatalf("expected a *nexuserr.ReentrantPanic to reach the original caller, got %#v", caught)
	}
	if !errors.Is(rp, nexuserr.ErrReentrantSubmission) {
		t.Fatalf("expected ReentrantPanic to wrap ErrReentrantSubmission, got %v", rp)
	}
}
