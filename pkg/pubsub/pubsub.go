// Package pubsub implements the publisher/subscriber bridge any
// participant (hook or owner) can expose alongside its nexus membership.
// The core only requires that delivery happens after a commit and that a
// subscriber's failure never affects the commit; this package supplies
// three concrete delivery strategies satisfying that contract.
package pubsub

import (
	"context"
	"sync"

	"github.com/marmos91/nexus/internal/logger"
)

// DeliveryMode selects how a Publisher hands payloads to its subscribers.
type DeliveryMode int

const (
	// Direct invokes every subscriber inline, in the caller's goroutine,
	// before Publish returns.
	Direct DeliveryMode = iota
	// Sync hands the payload to the background worker and blocks until
	// every subscriber has received it.
	Sync
	// Async hands the payload to the background worker and returns
	// immediately; delivery happens on the worker's own schedule.
	Async
)

func (m DeliveryMode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Sync:
		return "sync"
	case Async:
		return "async"
	default:
		return "unknown"
	}
}

// Subscriber receives published payloads. Name is used only for logging.
type Subscriber interface {
	Name() string
	Receive(payload any)
}

type job struct {
	payload any
	done    chan struct{} // non-nil only for Sync deliveries
}

// Publisher fans a payload out to its subscribers under the configured
// DeliveryMode. The background worker is grounded on the same
// context/cancel/WaitGroup shape used elsewhere in this codebase for
// detachable goroutines: Start before first use, Stop to drain and exit.
type Publisher struct {
	mode DeliveryMode

	mu          sync.RWMutex
	subscribers []Subscriber

	queue  chan job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Publisher using mode for every PublishValue call. Direct
// mode needs no background worker; Sync and Async require Start before the
// first publish.
func New(mode DeliveryMode) *Publisher {
	return &Publisher{mode: mode}
}

// Start launches the background delivery worker. No-op for Direct mode.
func (p *Publisher) Start(ctx context.Context) {
	if p.mode == Direct {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.queue = make(chan job, 64)
	p.wg.Add(1)
	go p.run()
}

// Stop drains in-flight deliveries and stops the worker. No-op for Direct
// mode or if Start was never called.
func (p *Publisher) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.wg.Wait()
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			p.drain()
			return
		case j := <-p.queue:
			p.deliver(j.payload)
			if j.done != nil {
				close(j.done)
			}
		}
	}
}

func (p *Publisher) drain() {
	for {
		select {
		case j := <-p.queue:
			p.deliver(j.payload)
			if j.done != nil {
				close(j.done)
			}
		default:
			return
		}
	}
}

// Subscribe registers s to receive future published payloads.
func (p *Publisher) Subscribe(s Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, s)
}

// Unsubscribe removes s. A no-op if s was never subscribed.
func (p *Publisher) Unsubscribe(s Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	kept := p.subscribers[:0]
	for _, existing := range p.subscribers {
		if existing != s {
			kept = append(kept, existing)
		}
	}
	p.subscribers = kept
}

// PublishValue fans payload out to every subscriber per the configured
// DeliveryMode. A subscriber panic is recovered and logged; it never
// propagates to the caller, matching the core's guarantee that a
// subscriber's failure does not affect the commit that triggered it.
func (p *Publisher) PublishValue(payload any) {
	switch p.mode {
	case Direct:
		p.deliver(payload)
	case Sync:
		done := make(chan struct{})
		p.queue <- job{payload: payload, done: done}
		<-done
	case Async:
		p.queue <- job{payload: payload}
	}
}

func (p *Publisher) deliver(payload any) {
	p.mu.RLock()
	subs := make([]Subscriber, len(p.subscribers))
	copy(subs, p.subscribers)
	p.mu.RUnlock()

	for _, s := range subs {
		p.deliverOne(s, payload)
	}
}

func (p *Publisher) deliverOne(s Subscriber, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("subscriber panicked", logger.SubscriberName(s.Name()), logger.Reason(toReason(r)))
		}
	}()
	s.Receive(payload)
}

func toReason(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return "panic: " + stringify(r)
}

func stringify(v any) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return "non-error panic value"
}
