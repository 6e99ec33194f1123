// Package kafka publishes audit events to a Kafka topic so downstream
// compliance tooling can consume them. It is an additional sink; the database
// remains the queryable copy.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/samber/oops"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "stackwise/pkg/platform/audit"
)

// DefaultTopic receives audit events when no topic is configured.
const DefaultTopic = "stackwise.audit"

// Producer is the subset of *kgo.Client the store needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Store produces one record per audit event, keyed by object id so events for
// the same object land on the same partition.
type Store struct {
	producer Producer
	topic    string
}

// New creates a Kafka audit sink.
func New(producer Producer, topic string) *Store {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Store{producer: producer, topic: topic}
}

type payload struct {
	ID         string         `json:"id"`
	ActorID    string         `json:"actorId"`
	ActorEmail string         `json:"actorEmail,omitempty"`
	Action     string         `json:"action"`
	ObjectType string         `json:"objectType"`
	ObjectID   string         `json:"objectId"`
	ObjectName string         `json:"objectName,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  string         `json:"createdAt"`
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(payload{
		ID:         event.ID,
		ActorID:    event.ActorID,
		ActorEmail: event.ActorEmail,
		Action:     string(event.Action),
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		ObjectName: event.ObjectName,
		Details:    event.Details,
		CreatedAt:  event.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return oops.With("operation", "marshal audit record").Wrap(err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.ObjectID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return oops.With("operation", "produce audit record").With("topic", s.topic).Wrap(err)
	}
	return nil
}

// NewClient connects a franz-go client to the given brokers.
func NewClient(brokers []string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, oops.With("operation", "create kafka client").Wrap(err)
	}
	return client, nil
}

// EnsureTopic creates the audit topic if it does not already exist.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32, replication int16) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, partitions, replication, nil, topic)
	if err != nil {
		return oops.With("operation", "create audit topic").With("topic", topic).Wrap(err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return oops.With("operation", "create audit topic").With("topic", topic).Wrap(resp.Err)
	}
	return nil
}
