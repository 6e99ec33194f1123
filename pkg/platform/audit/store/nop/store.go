// Package nop provides an audit store that discards every event. Mock mode
// wires it so demo deployments never persist audit rows.
package nop

import (
	"context"

	audit "stackwise/pkg/platform/audit"
)

type Store struct{}

func New() Store { return Store{} }

func (Store) Append(context.Context, audit.Event) error { return nil }

func (Store) ListRecent(context.Context, int) ([]audit.Event, error) { return []audit.Event{}, nil }
