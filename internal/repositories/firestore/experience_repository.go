package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"

	domain "github.com/homechef/api/internal/domain"
	pfirestore "github.com/homechef/api/internal/platform/firestore"
	"github.com/homechef/api/internal/repositories"
)

const experienceCollectionPattern = "users/%s/experiences"

// ExperienceRepository stores cooking history under users/{uid}/experiences.
type ExperienceRepository struct {
	base *pfirestore.BaseRepository[experienceDocument]
}

var _ repositories.ExperienceRepository = (*ExperienceRepository)(nil)

// NewExperienceRepository constructs a Firestore-backed experience repository.
func NewExperienceRepository(provider *pfirestore.Provider) (*ExperienceRepository, error) {
	if provider == nil {
		return nil, errors.New("experience repository requires firestore provider")
	}
	return &ExperienceRepository{
		base: pfirestore.NewBaseRepository[experienceDocument](provider, ""),
	}, nil
}

// Insert creates the experience document; an existing ID is a conflict.
func (r *ExperienceRepository) Insert(ctx context.Context, experience domain.Experience) error {
	coll, err := r.forUser(experience.UserID)
	if err != nil {
		return err
	}
	_, err = coll.Create(ctx, experience.ID, encodeExperience(experience))
	return err
}

// Update replaces an existing experience.
func (r *ExperienceRepository) Update(ctx context.Context, experience domain.Experience) error {
	coll, err := r.forUser(experience.UserID)
	if err != nil {
		return err
	}
	return coll.Replace(ctx, experience.ID, encodeExperience(experience))
}

// FindByID loads one experience of userID.
func (r *ExperienceRepository) FindByID(ctx context.Context, userID, experienceID string) (domain.Experience, error) {
	coll, err := r.forUser(userID)
	if err != nil {
		return domain.Experience{}, err
	}
	doc, err := coll.Get(ctx, experienceID)
	if err != nil {
		return domain.Experience{}, err
	}
	return decodeExperience(userID, doc.ID, doc.Data), nil
}

// ListByUser returns experiences newest first.
func (r *ExperienceRepository) ListByUser(ctx context.Context, userID string, pager domain.Pagination) (domain.CursorPage[domain.Experience], error) {
	coll, err := r.forUser(userID)
	if err != nil {
		return domain.CursorPage[domain.Experience]{}, err
	}
	docs, next, err := coll.Page(ctx, pfirestore.PageSpec[experienceDocument]{
		OrderBy:     "cookedAt",
		Direction:   firestore.Desc,
		PageSize:    pager.PageSize,
		PageToken:   pager.PageToken,
		CursorValue: func(doc experienceDocument) any { return doc.CookedAt },
	})
	if err != nil {
		return domain.CursorPage[domain.Experience]{}, err
	}
	items := make([]domain.Experience, 0, len(docs))
	for _, doc := range docs {
		items = append(items, decodeExperience(userID, doc.ID, doc.Data))
	}
	return domain.CursorPage[domain.Experience]{Items: items, NextPageToken: next}, nil
}

func (r *ExperienceRepository) forUser(userID string) (*pfirestore.BaseRepository[experienceDocument], error) {
	return scopedToUser(r.base, experienceCollectionPattern, userID)
}

func scopedToUser[T any](base *pfirestore.BaseRepository[T], pattern, userID string) (*pfirestore.BaseRepository[T], error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.Contains(userID, "/") {
		return nil, pfirestore.WrapError("users.scope", fmt.Errorf("invalid user id %q", userID))
	}
	return base.Scoped(fmt.Sprintf(pattern, userID)), nil
}
