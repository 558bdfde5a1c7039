package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	domain "github.com/homechef/api/internal/domain"
	"github.com/homechef/api/internal/repositories"
)

// ExperienceStore keeps cooking history per user.
type ExperienceStore struct {
	mu     sync.RWMutex
	byUser map[string]map[string]domain.Experience
}

var _ repositories.ExperienceRepository = (*ExperienceStore)(nil)

var experienceOrder = keyset[domain.Experience]{
	key:  func(e domain.Experience) any { return e.CookedAt.UTC() },
	id:   func(e domain.Experience) string { return e.ID },
	desc: true,
}

// NewExperienceStore returns an empty store.
func NewExperienceStore() *ExperienceStore {
	return &ExperienceStore{byUser: make(map[string]map[string]domain.Experience)}
}

// Insert stores a new experience; reusing an ID for the same user is a conflict.
func (s *ExperienceStore) Insert(ctx context.Context, experience domain.Experience) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.byUser[experience.UserID]
	if entries == nil {
		entries = make(map[string]domain.Experience)
		s.byUser[experience.UserID] = entries
	}
	if _, exists := entries[experience.ID]; exists {
		return repositories.NewStoreError("experiences.insert", repositories.ErrorKindConflict, fmt.Errorf("experience %q already exists", experience.ID))
	}
	entries[experience.ID] = experience
	return nil
}

// Update replaces an existing experience.
func (s *ExperienceStore) Update(ctx context.Context, experience domain.Experience) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.byUser[experience.UserID]
	if _, exists := entries[experience.ID]; !exists {
		return notFoundExperience("experiences.update", experience.ID)
	}
	entries[experience.ID] = experience
	return nil
}

// FindByID returns one experience of userID.
func (s *ExperienceStore) FindByID(ctx context.Context, userID, experienceID string) (domain.Experience, error) {
	if err := ctx.Err(); err != nil {
		return domain.Experience{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	experience, ok := s.byUser[userID][strings.TrimSpace(experienceID)]
	if !ok {
		return domain.Experience{}, notFoundExperience("experiences.find", experienceID)
	}
	return experience, nil
}

// ListByUser returns the user's experiences newest first.
func (s *ExperienceStore) ListByUser(ctx context.Context, userID string, pager domain.Pagination) (domain.CursorPage[domain.Experience], error) {
	if err := ctx.Err(); err != nil {
		return domain.CursorPage[domain.Experience]{}, err
	}
	s.mu.RLock()
	items := make([]domain.Experience, 0, len(s.byUser[userID]))
	for _, experience := range s.byUser[userID] {
		items = append(items, experience)
	}
	s.mu.RUnlock()
	return experienceOrder.page("experiences.list", items, pager)
}

func notFoundExperience(op, id string) error {
	return repositories.NewStoreError(op, repositories.ErrorKindNotFound, fmt.Errorf("experience %q not found", id))
}
