// Package emitter appends audit events on behalf of business operations
// without ever affecting their outcome.
//
// Emit and EmitExport return nothing. The append runs on a context detached
// from the caller's cancellation with its own timeout; errors and panics are
// logged and counted, then discarded. Every sink has its own circuit breaker:
// a sink that keeps failing is skipped and its events counted as dropped,
// while the other sinks keep receiving every event.
package emitter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "stackwise/pkg/platform/audit"
	"stackwise/pkg/platform/circuit"
	"stackwise/pkg/requestcontext"
)

const (
	defaultTimeout = 2 * time.Second
	primarySink    = "audit_store"
)

// Entry is the business-facing shape of an audit record.
type Entry struct {
	Action     audit.Action
	ObjectType string
	ObjectID   string
	ObjectName string
	Details    map[string]any
}

// Emitter writes audit events to one or more sinks on a best-effort basis.
type Emitter struct {
	sinks   []*sink
	logger  *slog.Logger
	metrics *Metrics
	timeout time.Duration
	now     func() time.Time
}

type sink struct {
	name    string
	store   audit.Store
	breaker *circuit.Breaker
}

type Option func(*Emitter)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Emitter) {
		e.metrics = m
	}
}

// WithBreaker replaces the primary store's default breaker (5 failures, 30s cooldown).
func WithBreaker(b *circuit.Breaker) Option {
	return func(e *Emitter) {
		if b != nil {
			e.sinks[0].breaker = b
		}
	}
}

// WithSink adds a secondary store that receives every event after the
// primary. It gets its own breaker, so its failures never cost the primary
// an event.
func WithSink(name string, store audit.Store, breakerOpts ...circuit.Option) Option {
	return func(e *Emitter) {
		if store == nil {
			return
		}
		e.sinks = append(e.sinks, &sink{name: name, store: store, breaker: circuit.New(name, breakerOpts...)})
	}
}

// WithTimeout bounds each store append.
func WithTimeout(d time.Duration) Option {
	return func(e *Emitter) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Emitter) {
		if now != nil {
			e.now = now
		}
	}
}

func New(store audit.Store, opts ...Option) *Emitter {
	e := &Emitter{
		logger:  slog.Default(),
		timeout: defaultTimeout,
		now:     time.Now,
	}
	e.sinks = []*sink{{name: primarySink, store: store, breaker: circuit.New(primarySink)}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit records one audit event attributed to actor.
func (e *Emitter) Emit(ctx context.Context, actor audit.Actor, entry Entry) {
	if e == nil || e.sinks[0].store == nil {
		return
	}
	if !entry.Action.IsValid() {
		e.logger.ErrorContext(ctx, "refusing audit event with unknown action",
			"action", entry.Action,
			"object_type", entry.ObjectType,
			"object_id", entry.ObjectID,
		)
		e.metrics.incRejected()
		return
	}
	if actor.IsSystem() {
		actor.Email = ""
	}
	event := audit.Event{
		ID:         uuid.NewString(),
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Action:     entry.Action,
		ObjectType: entry.ObjectType,
		ObjectID:   entry.ObjectID,
		ObjectName: entry.ObjectName,
		Details:    withClient(ctx, entry.Details),
		CreatedAt:  e.now().UTC(),
	}
	e.append(ctx, event)
}

// EmitExport records an export of recordCount rows of objectType.
func (e *Emitter) EmitExport(ctx context.Context, actor audit.Actor, objectType, format string, recordCount int, filters map[string]string) {
	if e == nil {
		return
	}
	if filters == nil {
		filters = map[string]string{}
	}
	e.Emit(ctx, actor, Entry{
		Action:     audit.ActionExport,
		ObjectType: objectType,
		ObjectID:   objectType,
		Details: map[string]any{
			"format":      format,
			"recordCount": recordCount,
			"filters":     filters,
			"timestamp":   e.now().UTC().Format(time.RFC3339),
		},
	})
}

func (e *Emitter) append(ctx context.Context, event audit.Event) {
	ctx = context.WithoutCancel(ctx)
	stored := false
	for _, sk := range e.sinks {
		if e.appendTo(ctx, sk, event) {
			stored = true
		}
	}
	if stored {
		e.metrics.incEmitted(string(event.Action))
	}
}

// appendTo writes event to one sink under that sink's breaker and reports
// whether the sink accepted it.
func (e *Emitter) appendTo(ctx context.Context, sk *sink, event audit.Event) bool {
	if !sk.breaker.Allow() {
		e.metrics.incDropped(sk.name)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := safeAppend(ctx, sk.store, event)
	if err == nil {
		if _, change := sk.breaker.RecordSuccess(); change.Closed {
			e.metrics.setBreakerOpen(sk.name, false)
			e.logger.InfoContext(ctx, "audit sink recovered", "sink", sk.name)
		}
		return true
	}

	e.metrics.incFailures(sk.name)
	if _, change := sk.breaker.RecordFailure(); change.Opened {
		e.metrics.setBreakerOpen(sk.name, true)
		e.logger.WarnContext(ctx, "audit sink circuit opened, dropping events", "sink", sk.name)
	}
	e.logger.ErrorContext(ctx, "failed to append audit event",
		"error", err,
		"sink", sk.name,
		"action", event.Action,
		"object_type", event.ObjectType,
		"object_id", event.ObjectID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return false
}

func safeAppend(ctx context.Context, store audit.Store, event audit.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audit store panic: %v", r)
		}
	}()
	return store.Append(ctx, event)
}

// withClient adds the parsed client label when the request carried one.
// The caller's map is not modified.
func withClient(ctx context.Context, details map[string]any) map[string]any {
	label := requestcontext.ClientLabel(ctx)
	if label == "" {
		return details
	}
	out := make(map[string]any, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out["client"] = label
	return out
}
