package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"stackwise/internal/review/models"
	"stackwise/pkg/domain"
	"stackwise/pkg/platform/sentinel"
)

type pairKey struct {
	campaign domain.CampaignID
	user     domain.UserID
	app      domain.ApplicationID
}

// InMemoryStore backs mock mode. Records are mutated in place for the life
// of the process.
type InMemoryStore struct {
	mu        sync.RWMutex
	campaigns map[domain.CampaignID]*models.Campaign
	decisions []*models.Decision
	byID      map[domain.DecisionID]*models.Decision
	pairs     map[pairKey]struct{}
	inventory InventoryReader
}

// NewInMemoryStore resolves snapshots through inv; a nil inv leaves them empty.
func NewInMemoryStore(inv InventoryReader) *InMemoryStore {
	return &InMemoryStore{
		campaigns: make(map[domain.CampaignID]*models.Campaign),
		byID:      make(map[domain.DecisionID]*models.Decision),
		pairs:     make(map[pairKey]struct{}),
		inventory: inv,
	}
}

func (s *InMemoryStore) ListCampaigns(_ context.Context, status models.CampaignStatus) ([]models.CampaignStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.CampaignStats{}
	for _, c := range s.campaigns {
		if status != "" && c.Status != status {
			continue
		}
		out = append(out, s.statsLocked(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *InMemoryStore) GetCampaign(_ context.Context, id domain.CampaignID) (*models.CampaignStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	stats := s.statsLocked(c)
	return &stats, nil
}

func (s *InMemoryStore) statsLocked(c *models.Campaign) models.CampaignStats {
	total, completed := 0, 0
	for _, d := range s.decisions {
		if d.CampaignID != c.ID {
			continue
		}
		total++
		if d.State != models.DecisionPending {
			completed++
		}
	}
	return models.NewCampaignStats(*c, total, completed)
}

func (s *InMemoryStore) CreateCampaign(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.campaigns[c.ID]; exists {
		return sentinel.ErrConflict
	}
	copied := *c
	s.campaigns[c.ID] = &copied
	return nil
}

func (s *InMemoryStore) UpdateCampaignStatus(_ context.Context, id domain.CampaignID, status models.CampaignStatus, at time.Time) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = at
	copied := *c
	return &copied, nil
}

// DeleteCampaign removes the campaign and its decisions.
func (s *InMemoryStore) DeleteCampaign(_ context.Context, id domain.CampaignID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.campaigns, id)

	kept := s.decisions[:0]
	for _, d := range s.decisions {
		if d.CampaignID == id {
			delete(s.byID, d.ID)
			delete(s.pairs, pairKey{d.CampaignID, d.UserID, d.ApplicationID})
			continue
		}
		kept = append(kept, d)
	}
	clear(s.decisions[len(kept):])
	s.decisions = kept
	return nil
}

// ListDecisions returns the campaign's decisions in creation order.
func (s *InMemoryStore) ListDecisions(ctx context.Context, campaignID domain.CampaignID) ([]models.Decision, error) {
	s.mu.RLock()
	var out []models.Decision
	for _, d := range s.decisions {
		if d.CampaignID == campaignID {
			out = append(out, *d)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	for i := range out {
		s.attachSnapshots(ctx, &out[i])
	}
	if out == nil {
		out = []models.Decision{}
	}
	return out, nil
}

func (s *InMemoryStore) GetDecision(ctx context.Context, id domain.DecisionID) (*models.Decision, error) {
	s.mu.RLock()
	d, ok := s.byID[id]
	var copied models.Decision
	if ok {
		copied = *d
	}
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	s.attachSnapshots(ctx, &copied)
	return &copied, nil
}

// RecordDecision overwrites the state, decider, timestamp and rationale.
func (s *InMemoryStore) RecordDecision(ctx context.Context, id domain.DecisionID, state models.DecisionState, deciderID string, rationale *string, at time.Time) (*models.Decision, error) {
	s.mu.Lock()
	d, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	decider := deciderID
	decidedAt := at
	d.State = state
	d.DecidedBy = &decider
	d.DecidedAt = &decidedAt
	d.Rationale = cloneString(rationale)
	copied := *d
	s.mu.Unlock()

	s.attachSnapshots(ctx, &copied)
	return &copied, nil
}

// BulkInsertPending adds one pending decision per pair not already in the
// campaign and returns how many were inserted.
func (s *InMemoryStore) BulkInsertPending(_ context.Context, campaignID domain.CampaignID, pairs []models.AccessPair, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[campaignID]; !ok {
		return 0, sentinel.ErrNotFound
	}

	inserted := 0
	for _, p := range pairs {
		key := pairKey{campaignID, p.UserID, p.ApplicationID}
		if _, dup := s.pairs[key]; dup {
			continue
		}
		d := &models.Decision{
			ID:            domain.NewDecisionID(),
			CampaignID:    campaignID,
			UserID:        p.UserID,
			ApplicationID: p.ApplicationID,
			State:         models.DecisionPending,
			CreatedAt:     at,
		}
		s.pairs[key] = struct{}{}
		s.decisions = append(s.decisions, d)
		s.byID[d.ID] = d
		inserted++
	}
	return inserted, nil
}

// attachSnapshots is best effort: a missing inventory row leaves the snapshot nil.
func (s *InMemoryStore) attachSnapshots(ctx context.Context, d *models.Decision) {
	if s.inventory == nil {
		return
	}
	if u, err := s.inventory.GetUser(ctx, d.UserID); err == nil {
		d.User = &models.UserSnapshot{ID: u.ID, Email: u.Email, Name: u.Name}
	}
	if a, err := s.inventory.GetApplication(ctx, d.ApplicationID); err == nil {
		d.Application = &models.ApplicationSnapshot{ID: a.ID, Name: a.Name, Category: a.Category}
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
