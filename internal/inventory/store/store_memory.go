// Package store persists users, applications and the access matrix.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"stackwise/internal/inventory/models"
	"stackwise/pkg/domain"
	"stackwise/pkg/platform/sentinel"
)

type grantKey struct {
	user domain.UserID
	app  domain.ApplicationID
}

// InMemoryStore backs mock mode.
type InMemoryStore struct {
	mu           sync.RWMutex
	users        map[domain.UserID]models.User
	applications map[domain.ApplicationID]models.Application
	grants       map[grantKey]models.Grant
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		users:        make(map[domain.UserID]models.User),
		applications: make(map[domain.ApplicationID]models.Application),
		grants:       make(map[grantKey]models.Grant),
	}
}

func (s *InMemoryStore) UpsertUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *InMemoryStore) UpsertApplication(_ context.Context, app models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[app.ID] = app
	return nil
}

// AddGrant records access. The user and application must already exist.
func (s *InMemoryStore) AddGrant(_ context.Context, grant models.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[grant.UserID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := s.applications[grant.ApplicationID]; !ok {
		return sentinel.ErrNotFound
	}
	s.grants[grantKey{grant.UserID, grant.ApplicationID}] = grant
	return nil
}

func (s *InMemoryStore) GetUser(_ context.Context, id domain.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) GetApplication(_ context.Context, id domain.ApplicationID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.applications[id]; ok {
		return &a, nil
	}
	return nil, sentinel.ErrNotFound
}

// ListUsers returns users ordered by email.
func (s *InMemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// ListApplications returns applications ordered by name, case-insensitively.
func (s *InMemoryStore) ListApplications(_ context.Context) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Application, 0, len(s.applications))
	for _, a := range s.applications {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

// ListGrants returns the access matrix ordered by grant time, then ids.
func (s *InMemoryStore) ListGrants(_ context.Context) ([]models.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Grant, 0, len(s.grants))
	for _, g := range s.grants {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].GrantedAt.Equal(out[j].GrantedAt) {
			return out[i].GrantedAt.Before(out[j].GrantedAt)
		}
		if out[i].UserID != out[j].UserID {
			return out[i].UserID.String() < out[j].UserID.String()
		}
		return out[i].ApplicationID.String() < out[j].ApplicationID.String()
	})
	return out, nil
}
