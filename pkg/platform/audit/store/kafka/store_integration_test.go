//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "stackwise/pkg/platform/audit"
	"stackwise/pkg/testutil/containers"
)

func TestStoreProducesToRedpanda(t *testing.T) {
	rp := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "audit-" + uuid.NewString()
	client, err := NewClient([]string{rp.Broker})
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, EnsureTopic(ctx, client, topic, 1, 1))
	require.NoError(t, EnsureTopic(ctx, client, topic, 1, 1), "existing topic is not an error")

	event := audit.Event{
		ID:         uuid.NewString(),
		ActorID:    "reviewer-1",
		ActorEmail: "ada@example.com",
		Action:     audit.ActionDecision,
		ObjectType: "AccessDecision",
		ObjectID:   uuid.NewString(),
		Details:    map[string]any{"decision": "revoked"},
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, New(client, topic).Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, event.ObjectID, string(records[0].Key))

	var got payload
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, "decision", got.Action)
	assert.Equal(t, "revoked", got.Details["decision"])
}
