package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventory "stackwise/internal/inventory/models"
	inventorystore "stackwise/internal/inventory/store"
	"stackwise/internal/review/models"
	reviewstore "stackwise/internal/review/store"
	"stackwise/pkg/domain"
	dErrors "stackwise/pkg/domain-errors"
	"stackwise/pkg/platform/audit"
	"stackwise/pkg/platform/audit/emitter"
	"stackwise/pkg/platform/audit/store/memory"
)

type brokenAuditStore struct{}

func (brokenAuditStore) Append(context.Context, audit.Event) error {
	return errors.New("audit table locked")
}

type reviewFixture struct {
	service   *Service
	store     *reviewstore.InMemoryStore
	audit     *memory.InMemoryStore
	campaign  domain.CampaignID
	decisions []domain.DecisionID
}

// newReviewFixture builds campaign C1 with pending decisions for three users
// on one application.
func newReviewFixture(t *testing.T, auditStore audit.Store, opts ...emitter.Option) *reviewFixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	inv := inventorystore.NewInMemoryStore()
	app := domain.ApplicationID(uuid.New())
	require.NoError(t, inv.UpsertApplication(ctx, inventory.Application{ID: app, Name: "Slack", Category: "Communication"}))
	for _, email := range []string{"u1@example.com", "u2@example.com", "u3@example.com"} {
		uid := domain.UserIDFromEmail(email)
		require.NoError(t, inv.UpsertUser(ctx, inventory.User{ID: uid, Email: email}))
		require.NoError(t, inv.AddGrant(ctx, inventory.Grant{UserID: uid, ApplicationID: app, GrantedAt: now}))
	}

	mem := memory.NewInMemoryStore()
	if auditStore == nil {
		auditStore = mem
	}
	store := reviewstore.NewInMemoryStore(inv)
	svc := New(store, inv, emitter.New(auditStore, opts...), WithClock(func() time.Time { return now }))

	system := audit.SystemContext()
	c, err := svc.CreateCampaign(ctx, system, CreateCampaignRequest{Name: "C1", Scope: true})
	require.NoError(t, err)
	require.Equal(t, 3, c.TasksTotal)

	decisions, err := svc.ListDecisions(ctx, c.ID)
	require.NoError(t, err)
	f := &reviewFixture{service: svc, store: store, audit: mem, campaign: c.ID}
	for _, d := range decisions {
		f.decisions = append(f.decisions, d.ID)
	}
	mem.Clear()
	return f
}

func TestBulkDecisionLeavesUnlistedDecisionsPending(t *testing.T) {
	f := newReviewFixture(t, nil)
	ctx := context.Background()
	actor := audit.UserContext("reviewer-1", "ada@example.com")

	res, err := f.service.BulkDecision(ctx, actor, f.decisions[:2], models.DecisionApproved)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	decisions, err := f.service.ListDecisions(ctx, f.campaign)
	require.NoError(t, err)
	require.Len(t, decisions, 3)
	assert.Equal(t, models.DecisionApproved, decisions[0].State)
	assert.Equal(t, models.DecisionApproved, decisions[1].State)
	assert.Equal(t, models.DecisionPending, decisions[2].State)

	events := f.audit.All()
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, audit.ActionDecision, e.Action)
		assert.Equal(t, "reviewer-1", e.ActorID)
		assert.Equal(t, "approved", e.Details["decision"])
	}

	c, err := f.service.GetCampaign(ctx, f.campaign)
	require.NoError(t, err)
	assert.Equal(t, 67, c.CompletionPercent)
}

func TestBulkDecisionDecidesRepeatedIDOnce(t *testing.T) {
	f := newReviewFixture(t, nil)
	ids := []domain.DecisionID{f.decisions[0], f.decisions[1], f.decisions[0]}

	res, err := f.service.BulkDecision(context.Background(), audit.SystemContext(), ids, models.DecisionApproved)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	require.Len(t, res.Items, 2)
	assert.Equal(t, f.decisions[0], res.Items[0].DecisionID)
	assert.Equal(t, f.decisions[1], res.Items[1].DecisionID)
	assert.Empty(t, res.Failed())
	assert.Len(t, f.audit.All(), 2)
}

func TestMakeDecisionUnknownIDProducesNoAudit(t *testing.T) {
	f := newReviewFixture(t, nil)

	_, err := f.service.MakeDecision(context.Background(), audit.SystemContext(), domain.NewDecisionID(), models.DecisionApproved, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Empty(t, f.audit.All())
}

func TestSecondDecisionIsRejected(t *testing.T) {
	f := newReviewFixture(t, nil)
	ctx := context.Background()
	actor := audit.UserContext("reviewer-1", "")

	_, err := f.service.MakeDecision(ctx, actor, f.decisions[0], models.DecisionRevoked, nil)
	require.NoError(t, err)

	_, err = f.service.MakeDecision(ctx, actor, f.decisions[0], models.DecisionApproved, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

	d, err := f.store.GetDecision(ctx, f.decisions[0])
	require.NoError(t, err)
	assert.Equal(t, models.DecisionRevoked, d.State)
	assert.Len(t, f.audit.All(), 1)
}

func TestAuditFailureDoesNotFailDecision(t *testing.T) {
	m := emitter.NewMetrics(prometheus.NewRegistry())
	f := newReviewFixture(t, brokenAuditStore{}, emitter.WithMetrics(m))

	d, err := f.service.MakeDecision(context.Background(), audit.SystemContext(), f.decisions[1], models.DecisionApproved, nil)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionApproved, d.State)
	require.NotNil(t, d.DecidedBy)
	assert.Equal(t, audit.SystemActorID, *d.DecidedBy)
	assert.GreaterOrEqual(t, promtestutil.ToFloat64(m.Failures.WithLabelValues("audit_store")), 1.0)
}

func TestRescopingIsIdempotent(t *testing.T) {
	f := newReviewFixture(t, nil)

	n, err := f.service.ScopeCampaign(context.Background(), audit.SystemContext(), f.campaign)
	require.NoError(t, err)
	assert.Zero(t, n)

	events := f.audit.All()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionBulkUpdate, events[0].Action)
	assert.Equal(t, map[string]any{"inserted": 0, "requested": 3}, events[0].Details)
}
