package pubsub

// ValuePublisher adapts a value source into Publish(), the no-arg
// capability pkg/manager's commit pipeline looks for on hooks and owners
// after a commit. Without this adapter, Publisher's own PublishValue(payload
// any) signature can never satisfy that capability directly, since the
// pipeline has no committed value to hand it.
type ValuePublisher struct {
	*Publisher
	Source func() any
}

// NewValuePublisher returns a ValuePublisher delivering under mode,
// reading each publication's payload from source.
func NewValuePublisher(mode DeliveryMode, source func() any) *ValuePublisher {
	return &ValuePublisher{Publisher: New(mode), Source: source}
}

// Publish reads the current value from Source and fans it out. A nil
// Source makes Publish a no-op, so a ValuePublisher can be constructed
// before its source is known and wired up later.
func (p *ValuePublisher) Publish() {
	if p.Source == nil {
		return
	}
	p.PublishValue(p.Source())
}
