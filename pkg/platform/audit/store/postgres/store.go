package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/oops"

	audit "stackwise/pkg/platform/audit"
	txcontext "stackwise/pkg/platform/tx"
)

// Store appends audit events to the audit_events table.
type Store struct {
	db txcontext.Querier
}

// New creates a PostgreSQL audit store.
func New(db txcontext.Querier) *Store {
	return &Store{db: db}
}

// Append writes one audit row. Empty optional fields are stored as NULL.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	var details []byte
	if len(event.Details) > 0 {
		var err error
		details, err = json.Marshal(event.Details)
		if err != nil {
			return oops.With("operation", "marshal audit details").Wrap(err)
		}
	}

	_, err := txcontext.Q(ctx, s.db).Exec(ctx,
		`INSERT INTO audit_events (id, actor_id, actor_email, action, object_type, object_id, object_name, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID,
		event.ActorID,
		nullable(event.ActorEmail),
		string(event.Action),
		event.ObjectType,
		event.ObjectID,
		nullable(event.ObjectName),
		details,
		event.CreatedAt,
	)
	if err != nil {
		return oops.With("operation", "append audit event").
			With("action", event.Action).
			With("object_id", event.ObjectID).
			Wrap(err)
	}
	return nil
}

// ListRecent returns the most recent events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := txcontext.Q(ctx, s.db).Query(ctx,
		`SELECT id, actor_id, actor_email, action, object_type, object_id, object_name, details, created_at
		 FROM audit_events
		 ORDER BY created_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, oops.With("operation", "list audit events").Wrap(err)
	}
	defer rows.Close()

	events := []audit.Event{}
	for rows.Next() {
		var (
			event      audit.Event
			action     string
			actorEmail pgtype.Text
			objectName pgtype.Text
			details    []byte
		)
		if err := rows.Scan(
			&event.ID,
			&event.ActorID,
			&actorEmail,
			&action,
			&event.ObjectType,
			&event.ObjectID,
			&objectName,
			&details,
			&event.CreatedAt,
		); err != nil {
			return nil, oops.With("operation", "scan audit event").Wrap(err)
		}
		event.Action = audit.Action(action)
		event.ActorEmail = actorEmail.String
		event.ObjectName = objectName.String
		if len(details) > 0 {
			if err := json.Unmarshal(details, &event.Details); err != nil {
				return nil, oops.With("operation", "decode audit details").With("id", event.ID).Wrap(err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.With("operation", "iterate audit events").Wrap(err)
	}
	return events, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
