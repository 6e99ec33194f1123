package audit

import (
	"context"
)

// Store is the append path for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Reader lists stored audit events, most recent first.
type Reader interface {
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
