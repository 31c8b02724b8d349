package owner

import (
	"testing"

	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/immutable"
	"github.com/marmos91/nexus/pkg/nexus"
)

type stubManager struct{}

func (stubManager) Submit(requests map[hook.Handle]any, mode hook.Mode) (bool, string) {
	return true, ""
}
func (stubManager) Join(a, b hook.Handle, policy hook.JoinPolicy) (bool, string) { return true, "" }
func (stubManager) Isolate(h hook.Handle)                                        {}

// fixture is a minimal Owner used only to exercise Base.
type fixture struct {
	Base
}

func newFixture(mgr hook.Manager) *fixture {
	f := &fixture{}
	f.Init(f)
	h := hook.NewOwnedWritable(f.SelfAddr(), mgr, nexus.New(immutable.Wrap(0)))
	f.Bind("value", h)
	return f
}

func (f *fixture) Complete(submitted, current map[any]any) map[any]any { return nil }
func (f *fixture) Validate(complete map[any]any) (bool, string)        { return true, "" }
func (f *fixture) Invalidate()                                         {}

func TestBase_KeysHookKeyOfRoundTrip(t *testing.T) {
	f := newFixture(stubManager{})

	keys := f.Keys()
	if _, ok := keys["value"]; !ok {
		t.Fatal("expected \"value\" in Keys()")
	}

	h, ok := f.Hook("value")
	if !ok {
		t.Fatal("expected Hook(\"value\") to resolve")
	}

	key, ok := f.KeyOf(h)
	if !ok || key != "value" {
		t.Fatalf("expected KeyOf to return \"value\", got %v, %v", key, ok)
	}
}

func TestBase_CurrentValues(t *testing.T) {
	f := newFixture(stubManager{})

	vals := f.CurrentValues()
	if vals["value"] != 0 {
		t.Fatalf("expected current value 0, got %v", vals["value"])
	}
}

func TestBase_SelfAddrResolvesOwner(t *testing.T) {
	mgr := stubManager{}
	f := newFixture(mgr)

	h, _ := f.Hook("value")
	concrete := h.(*hook.Hook)
	resolved, ok := concrete.Owner()
	if !ok {
		t.Fatal("expected owner to resolve while fixture is alive")
	}
	if resolved != hook.Owner(f) {
		t.Fatal("expected resolved owner to be the fixture itself")
	}
}
