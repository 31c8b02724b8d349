package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/nexus/internal/logger"
	"github.com/marmos91/nexus/pkg/hook"
	"github.com/marmos91/nexus/pkg/immutable"
	"github.com/marmos91/nexus/pkg/nexus"
	"github.com/marmos91/nexus/pkg/nexuserr"
)

// pendingState accumulates the nexus -> value map a submission is building
// up across Steps 1-4, tracking first-seen order so Step 7's commit order
// is deterministic.
type pendingState struct {
	order  []*nexus.Nexus
	values map[*nexus.Nexus]immutable.Value
}

func newPendingState() *pendingState {
	return &pendingState{values: make(map[*nexus.Nexus]immutable.Value)}
}

func (p *pendingState) get(nx *nexus.Nexus) (immutable.Value, bool) {
	v, ok := p.values[nx]
	return v, ok
}

// set records nx -> v. If nx was already pending, it reports a conflict
// unless eq finds the two values equal, in which case nothing changes.
// added reports whether this call introduced nx to the pending set for the
// first time.
func (p *pendingState) set(nx *nexus.Nexus, v immutable.Value, eq func(a, b any) bool) (added, conflict bool) {
	if existing, present := p.values[nx]; present {
		if !eq(existing.Raw(), v.Raw()) {
			return false, true
		}
		return false, false
	}
	p.order = append(p.order, nx)
	p.values[nx] = v
	return true, false
}

// publisher is an optional capability a hook or owner may implement to
// receive a post-commit publish call.
type publisher interface {
	Publish()
}

// ownerNotifier is an optional capability an owner may implement to expose
// its own listener list, separate from the listeners hung directly off its
// hooks.
type ownerNotifier interface {
	NotifyListeners(onPanic func(recovered any))
}

// runPipeline executes Steps 1-8 with the critical section already held by
// the caller (Submit, SubmitErr, or Join).
func (m *Manager) runPipeline(requests map[hook.Handle]any, mode hook.Mode) (bool, error) {
	submissionID := uuid.NewString()
	start := time.Now()
	ctx := logger.WithContext(context.Background(), logger.NewLogContext(submissionID, mode.String()))

	var ok bool
	defer func() {
		if sink := m.metricsSink(); sink != nil {
			sink.ObserveSubmission(mode, ok, time.Since(start))
			sink.SetActiveNexusCount(int(m.nexusCount))
		}
	}()

	// Step 1 + Step 2.
	pending, err := m.normalizeAndDedupe(requests)
	if err != nil {
		logger.WarnCtx(ctx, "submission rejected", logger.Phase("normalize"), logger.Reason(err.Error()))
		return false, err
	}

	// Step 3.
	filterNoops(pending, mode, m.equalRaw)
	if len(pending.order) == 0 {
		logger.DebugCtx(ctx, "submission is a no-op")
		ok = true
		return true, nil
	}

	// Step 4.
	rounds, err := m.complete(pending)
	if err != nil {
		logger.WarnCtx(ctx, "submission rejected", logger.Phase("complete"), logger.Reason(err.Error()))
		return false, err
	}
	if sink := m.metricsSink(); sink != nil {
		sink.ObserveCompletionIterations(rounds)
	}

	// Step 5.
	owners, err := m.validate(pending)
	if err != nil {
		logger.WarnCtx(ctx, "submission rejected", logger.Phase("validate"), logger.Reason(err.Error()))
		return false, err
	}

	// Step 6.
	if mode == hook.ModeCheckOnly {
		logger.DebugCtx(ctx, "check-only submission passed validation")
		ok = true
		return true, nil
	}

	// Step 7.
	commit(pending)

	// Step 8.
	m.notify(pending, owners)

	ok = true
	logger.DebugCtx(ctx, "submission committed",
		logger.NexusCount(len(pending.order)),
		logger.OwnerCount(len(owners)),
		logger.DurationMs(logger.Duration(start)))
	return true, nil
}

func (m *Manager) normalizeAndDedupe(requests map[hook.Handle]any) (*pendingState, error) {
	pending := newPendingState()
	for h, v := range requests {
		hk, ok := h.(*hook.Hook)
		if !ok {
			return nil, nexuserr.ErrForeignHook
		}
		normalized, err := immutable.Normalize(v, m.types)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", nexuserr.ErrNormalization, err)
		}
		if _, conflict := pending.set(hk.Nexus, normalized, m.equalRaw); conflict {
			return nil, nexuserr.ErrConflict
		}
	}
	return pending, nil
}

func filterNoops(pending *pendingState, mode hook.Mode, eq func(a, b any) bool) {
	if mode != hook.ModeNormal {
		return
	}
	kept := pending.order[:0]
	for _, nx := range pending.order {
		v := pending.values[nx]
		if eq(nx.ReadStored().Raw(), v.Raw()) {
			delete(pending.values, nx)
			continue
		}
		kept = append(kept, nx)
	}
	pending.order = kept
}

// collectAffectedOwners returns, in first-seen order, every owner with at
// least one hook whose nexus is currently pending.
func collectAffectedOwners(pending *pendingState) []hook.Owner {
	seen := make(map[hook.Owner]struct{})
	var owners []hook.Owner
	for _, nx := range pending.order {
		for _, member := range nx.Members() {
			hk, ok := member.(*hook.Hook)
			if !ok {
				continue
			}
			own, ok := hk.Owner()
			if !ok {
				continue
			}
			if _, dup := seen[own]; dup {
				continue
			}
			seen[own] = struct{}{}
			owners = append(owners, own)
		}
	}
	return owners
}

// complete runs Step 4 to a fixed point, returning the number of rounds it
// took to converge.
func (m *Manager) complete(pending *pendingState) (int, error) {
	maxIterations := m.MaxIterationsFor()
	for round := 1; ; round++ {
		if round > maxIterations {
			return round - 1, nexuserr.ErrCompletionCycle
		}

		affected := collectAffectedOwners(pending)
		added := false

		for _, own := range affected {
			submitted := make(map[any]any)
			current := make(map[any]any)
			for key := range own.Keys() {
				h, ok := own.Hook(key)
				if !ok {
					continue
				}
				hk, ok := h.(*hook.Hook)
				if !ok {
					continue
				}
				if v, pendingHere := pending.get(hk.Nexus); pendingHere {
					submitted[key] = v.Raw()
				} else {
					current[key] = h.Value()
				}
			}

			for key, val := range own.Complete(submitted, current) {
				if _, already := submitted[key]; already {
					return round, nexuserr.ErrConflict
				}
				h, ok := own.Hook(key)
				if !ok {
					continue
				}
				hk, ok := h.(*hook.Hook)
				if !ok {
					continue
				}
				normalized, err := immutable.Normalize(val, m.types)
				if err != nil {
					return round, fmt.Errorf("%w: %v", nexuserr.ErrNormalization, err)
				}
				wasAdded, conflict := pending.set(hk.Nexus, normalized, m.equalRaw)
				if conflict {
					return round, nexuserr.ErrConflict
				}
				if wasAdded {
					added = true
				}
			}
		}

		if !added {
			return round, nil
		}
	}
}

// validate runs Step 5, returning the final affected-owner set on success
// so Step 8 doesn't need to recompute it.
func (m *Manager) validate(pending *pendingState) ([]hook.Owner, error) {
	owners := collectAffectedOwners(pending)

	for _, own := range owners {
		view := make(map[any]any)
		for key := range own.Keys() {
			h, ok := own.Hook(key)
			if !ok {
				continue
			}
			hk, ok := h.(*hook.Hook)
			if !ok {
				continue
			}
			if v, pendingHere := pending.get(hk.Nexus); pendingHere {
				view[key] = v.Raw()
			} else {
				view[key] = h.Value()
			}
		}
		if valid, msg := own.Validate(view); !valid {
			return nil, fmt.Errorf("%w: %s", nexuserr.ErrValidation, msg)
		}
	}

	for _, nx := range pending.order {
		v := pending.values[nx]
		for _, member := range nx.Members() {
			hk, ok := member.(*hook.Hook)
			if !ok || !hk.IsFloating() || !hk.HasIsolatedValidation() {
				continue
			}
			if valid, msg := hk.ValidateIsolated(v.Raw()); !valid {
				return nil, fmt.Errorf("%w: %s", nexuserr.ErrValidation, msg)
			}
		}
	}

	return owners, nil
}

// commit runs Step 7 in pending.order, the deterministic order its entries
// were first added in.
func commit(pending *pendingState) {
	for _, nx := range pending.order {
		nx.WriteStored(pending.values[nx])
	}
}

// notify runs Step 8: invalidate, react, publish, then listener fan-out.
func (m *Manager) notify(pending *pendingState, owners []hook.Owner) {
	onPanic := func(recovered any) {
		logger.Error("listener panicked, commit not rolled back", logger.Reason(fmt.Sprint(recovered)))
	}

	for _, own := range owners {
		own.Invalidate()
	}

	for _, nx := range pending.order {
		newValue := nx.ReadStored().Raw()
		for _, member := range nx.Members() {
			if hk, ok := member.(*hook.Hook); ok && hk.HasReaction() {
				hk.React(newValue, onPanic)
			}
		}
	}

	for _, nx := range pending.order {
		for _, member := range nx.Members() {
			if pub, ok := member.(publisher); ok {
				pub.Publish()
			}
		}
	}
	for _, own := range owners {
		if pub, ok := own.(publisher); ok {
			pub.Publish()
		}
	}

	notified := make(map[*hook.Hook]struct{})
	for _, own := range owners {
		if n, ok := own.(ownerNotifier); ok {
			n.NotifyListeners(onPanic)
		}
		for key := range own.Keys() {
			h, ok := own.Hook(key)
			if !ok {
				continue
			}
			hk, ok := h.(*hook.Hook)
			if !ok {
				continue
			}
			if _, pendingHere := pending.get(hk.Nexus); !pendingHere {
				continue
			}
			hk.NotifyListeners(onPanic)
			notified[hk] = struct{}{}
		}
	}

	for _, nx := range pending.order {
		for _, member := range nx.Members() {
			hk, ok := member.(*hook.Hook)
			if !ok {
				continue
			}
			if _, already := notified[hk]; already {
				continue
			}
			hk.NotifyListeners(onPanic)
		}
	}
}
