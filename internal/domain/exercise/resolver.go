package exercise

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// Resolver maps a procedural exercise category to a stable exercise id,
// creating the catalog entry on first use. Resolution is idempotent:
// concurrent callers racing on the same (appID, category) all receive
// the same id, with the uniqueness race recovered by re-querying.
type Resolver struct {
	repo  Repository
	cache Cache
}

// NewResolver creates a Resolver. A nil cache disables caching.
func NewResolver(repo Repository, cache Cache) *Resolver {
	if cache == nil {
		cache = NopCache{}
	}
	return &Resolver{repo: repo, cache: cache}
}

// Resolve returns the stable exercise id for (appID, category).
func (r *Resolver) Resolve(ctx context.Context, appID, category string) (string, error) {
	if appID == "" || category == "" {
		return "", shared.ErrInvalidCategory
	}

	key := appID + ":" + category
	if id, ok := r.cache.Get(ctx, key); ok {
		return id, nil
	}

	descriptor := CanonicalDescriptor(category)

	item, err := r.repo.FindByDescriptor(ctx, appID, descriptor)
	if err == nil {
		r.cache.Set(ctx, key, item.ID)
		return item.ID, nil
	}
	if !shared.IsNotFound(err) {
		return "", fmt.Errorf("resolve exercise: %w", err)
	}

	created := &Item{
		ID:         uuid.NewString(),
		AppID:      appID,
		Descriptor: descriptor,
	}
	err = r.repo.Create(ctx, created)
	if err == nil {
		r.cache.Set(ctx, key, created.ID)
		return created.ID, nil
	}

	// A concurrent creator won the race. The row now exists, so the
	// conflict is self-healed by re-querying.
	if shared.IsConflict(err) {
		item, err = r.repo.FindByDescriptor(ctx, appID, descriptor)
		if err != nil {
			return "", fmt.Errorf("resolve exercise after conflict: %w", err)
		}
		r.cache.Set(ctx, key, item.ID)
		return item.ID, nil
	}

	return "", fmt.Errorf("create exercise: %w", err)
}
