// Package manager implements the NexusManager: the process-wide (or
// per-application) coordinator that owns the equality and immutable-type
// registries and runs the single submission pipeline every write, join, and
// isolate ultimately goes through.
package manager

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/nexus/pkg/equality"
	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/immutable"
	"github.com/marmos91/nexus/pkg/nexus"
	"github.com/marmos91/nexus/pkg/nexuserr"
)

// MaxIterations bounds Step 4's completion fixed-point search.
const MaxIterations = 100

// MetricsSink receives pipeline observations. Left as an interface rather
// than a concrete dependency so pkg/metrics can plug in a Prometheus-backed
// implementation without this package importing client_golang directly.
type MetricsSink interface {
	ObserveSubmission(mode hook.Mode, ok bool, d time.Duration)
	ObserveCompletionIterations(n int)
	SetActiveNexusCount(n int)
}

// Manager is the core coordinator. The zero value is not usable; build one
// with New, Default, Clone, or Fresh.
type Manager struct {
	mu     sync.Mutex // the submission/join/isolate critical section
	holder int64      // goroutine ID currently holding mu, 0 if unheld

	regMu    sync.RWMutex // guards equality/types/metrics independent of mu
	equality *equality.Registry
	types    *immutable.TypeRegistry
	metrics  MetricsSink

	nexusCount int64 // approximate, for the active-nexus gauge

	maxIterations       int64 // 0 means "use the MaxIterations default"
	reentrancyDetection int32 // 0 disabled, 1 enabled; atomic bool
}

var _ hook.Manager = (*Manager)(nil)

// New returns a Manager with empty equality and immutable-type registries
// and zero tolerance.
func New() *Manager {
	return &Manager{
		equality:            equality.NewRegistry(),
		types:               immutable.NewTypeRegistry(),
		reentrancyDetection: 1,
	}
}

var defaultManager = New()

// Default returns the process-wide singleton manager. Nothing in the core
// requires its use; applications may construct independent managers freely.
func Default() *Manager {
	return defaultManager
}

// Clone returns a new Manager inheriting independent copies of this
// manager's equality and immutable-type registries and tolerance.
func (m *Manager) Clone() *Manager {
	m.regMu.RLock()
	defer m.regMu.RUnlock()
	return &Manager{
		equality:            m.equality.Clone(),
		types:               m.types.Clone(),
		reentrancyDetection: 1,
	}
}

// Fresh returns a new Manager with empty registries and default tolerance,
// sharing nothing with this one.
func (m *Manager) Fresh() *Manager {
	return New()
}

// RegisterEquality installs fn for the ordered type pair (typeA, typeB).
func (m *Manager) RegisterEquality(typeA, typeB reflect.Type, fn equality.Func) {
	m.regMu.Lock()
	defer m.regMu.Unlock()
	m.equality.Register(typeA, typeB, fn)
}

// RegisterImmutableType declares sample's type as already immutable, so
// Normalize passes values of that type through unchanged.
func (m *Manager) RegisterImmutableType(sample any) {
	m.types.Register(sample)
}

// Tolerance returns the numeric closeness threshold used by the default
// float equality comparison.
func (m *Manager) Tolerance() float64 {
	m.regMu.RLock()
	defer m.regMu.RUnlock()
	return m.equality.Tolerance()
}

// SetTolerance updates the numeric closeness threshold.
func (m *Manager) SetTolerance(t float64) {
	m.regMu.Lock()
	defer m.regMu.Unlock()
	m.equality.SetTolerance(t)
}

// MaxIterationsFor returns the completion fixed-point round bound this
// manager enforces: the package MaxIterations default, unless
// SetMaxIterations overrode it.
func (m *Manager) MaxIterationsFor() int {
	if n := atomic.LoadInt64(&m.maxIterations); n > 0 {
		return int(n)
	}
	return MaxIterations
}

// SetMaxIterations overrides this manager's completion round bound. A
// non-positive value restores the package default.
func (m *Manager) SetMaxIterations(n int) {
	atomic.StoreInt64(&m.maxIterations, int64(n))
}

// ReentrancyDetectionEnabled reports whether enter panics on a nested
// Submit from the same goroutine. Enabled by default.
func (m *Manager) ReentrancyDetectionEnabled() bool {
	return atomic.LoadInt32(&m.reentrancyDetection) != 0
}

// SetReentrancyDetection toggles the nested-Submit guard. Disabling it only
// removes the early panic; a goroutine that recursively calls Submit while
// already holding the critical section still deadlocks, since the
// underlying mutex is not reentrant.
func (m *Manager) SetReentrancyDetection(enabled bool) {
	v := int32(0)
	if enabled {
		v = 1
	}
	atomic.StoreInt32(&m.reentrancyDetection, v)
}

// SetMetrics installs sink to receive submission and completion
// observations. Passing nil disables metrics collection.
func (m *Manager) SetMetrics(sink MetricsSink) {
	m.regMu.Lock()
	defer m.regMu.Unlock()
	m.metrics = sink
}

func (m *Manager) metricsSink() MetricsSink {
	m.regMu.RLock()
	defer m.regMu.RUnlock()
	return m.metrics
}

func (m *Manager) equalRaw(a, b any) bool {
	m.regMu.RLock()
	defer m.regMu.RUnlock()
	return m.equality.Equal(a, b)
}

// NewHookOwned builds and registers a writable or read-only hook bound to
// ownerSelf on a fresh singleton nexus holding initial. ownerSelf must be
// the address of the Owner-typed field on the owning struct itself (see
// pkg/owner.Base.SelfAddr).
func (m *Manager) NewHookOwned(ownerSelf *hook.Owner, initial any, readOnly bool) (*hook.Hook, error) {
	normalized, err := immutable.Normalize(initial, m.types)
	if err != nil {
		return nil, err
	}
	nx := nexus.New(normalized)
	atomic.AddInt64(&m.nexusCount, 1)
	if readOnly {
		return hook.NewOwnedReadOnly(ownerSelf, m, nx), nil
	}
	return hook.NewOwnedWritable(ownerSelf, m, nx), nil
}

// NewHookFloating builds and registers a floating hook on a fresh singleton
// nexus holding initial.
func (m *Manager) NewHookFloating(initial any) (*hook.Hook, error) {
	normalized, err := immutable.Normalize(initial, m.types)
	if err != nil {
		return nil, err
	}
	nx := nexus.New(normalized)
	atomic.AddInt64(&m.nexusCount, 1)
	return hook.NewFloating(m, nx), nil
}

// enter acquires the critical section, panicking with a *nexuserr.
// ReentrantPanic instead of deadlocking if the calling goroutine already
// holds it (a callback issuing a nested Submit is a programming error,
// surfaced as a fatal control-flow exception rather than silently blocked).
func (m *Manager) enter() {
	gid := currentGoroutineID()
	if m.ReentrancyDetectionEnabled() && gid >= 0 && atomic.LoadInt64(&m.holder) == gid {
		panic(nexuserr.NewReentrantPanic())
	}
	m.mu.Lock()
	atomic.StoreInt64(&m.holder, gid)
}

func (m *Manager) exit() {
	atomic.StoreInt64(&m.holder, 0)
	m.mu.Unlock()
}

// Submit is the public submission entry point.
func (m *Manager) Submit(requests map[hook.Handle]any, mode hook.Mode) (bool, string) {
	m.enter()
	defer m.exit()
	ok, err := m.runPipeline(requests, mode)
	if err != nil {
		return ok, err.Error()
	}
	return ok, ""
}

// SubmitErr is Submit's error-returning twin, for callers that want
// errors.Is-compatible failures instead of a bare message string.
func (m *Manager) SubmitErr(requests map[hook.Handle]any, mode hook.Mode) (bool, error) {
	m.enter()
	defer m.exit()
	return m.runPipeline(requests, mode)
}

// Join merges a's and b's nexuses. Both hooks must belong to this
// manager.
func (m *Manager) Join(a, b hook.Handle, policy hook.JoinPolicy) (bool, string) {
	ha, aok := a.(*hook.Hook)
	hb, bok := b.(*hook.Hook)
	if !aok || !bok || ha.Mgr() != hook.Manager(m) || hb.Mgr() != hook.Manager(m) {
		return false, nexuserr.ErrForeignHook.Error()
	}

	m.enter()
	defer m.exit()

	if ha.Nexus == hb.Nexus {
		return true, ""
	}

	target := ha.Value()
	if policy == hook.UseTargetValue {
		target = hb.Value()
	}

	ok, err := m.runPipeline(map[hook.Handle]any{ha: target, hb: target}, hook.ModeForced)
	if err != nil || !ok {
		msg := nexuserr.ErrJoinRejected.Error()
		if err != nil {
			msg = msg + ": " + err.Error()
		}
		return false, msg
	}

	transferred := ha.Nexus.AbsorbMembers(hb.Nexus)
	for _, member := range transferred {
		if hk, ok := member.(*hook.Hook); ok {
			hk.Nexus = ha.Nexus
		}
	}
	atomic.AddInt64(&m.nexusCount, -1)
	return true, ""
}

// Isolate splits h into a fresh singleton nexus carrying its current value
// No validation runs; the value was already valid in its shared
// nexus.
func (m *Manager) Isolate(h hook.Handle) {
	hk, ok := h.(*hook.Hook)
	if !ok {
		return
	}

	m.enter()
	defer m.exit()

	current := hk.Nexus.ReadStored()
	fresh := nexus.New(current)
	hk.Nexus.RemoveHook(hk)
	hk.Nexus = fresh
	fresh.AddHook(hk)
	atomic.AddInt64(&m.nexusCount, 1)
}
