package audit

import "context"

// Store persists the audit trail and supports queries over it.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actor string) ([]Event, error)
}

// Sink receives a copy of every event without query support. Used for
// fan-out to external systems such as Kafka topics.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
