package exercise

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// fakeRepo is an in-memory Repository keyed by (appID, descriptor).
type fakeRepo struct {
	items       map[string]*Item
	createErr   error
	findCalls   int
	createCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]*Item)}
}

func (r *fakeRepo) key(appID, descriptor string) string { return appID + "|" + descriptor }

func (r *fakeRepo) FindByDescriptor(_ context.Context, appID, descriptor string) (*Item, error) {
	r.findCalls++
	if item, ok := r.items[r.key(appID, descriptor)]; ok {
		return item, nil
	}
	return nil, shared.ErrExerciseNotFound
}

func (r *fakeRepo) Create(_ context.Context, item *Item) error {
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	k := r.key(item.AppID, item.Descriptor)
	if _, ok := r.items[k]; ok {
		return shared.ErrExerciseExists
	}
	r.items[k] = item
	return nil
}

func (r *fakeRepo) ListByApps(_ context.Context, _ []string, _ int) ([]*Item, error) {
	return nil, nil
}

func TestResolver_CreatesOnFirstUse(t *testing.T) {
	repo := newFakeRepo()
	resolver := NewResolver(repo, nil)

	id, err := resolver.Resolve(context.Background(), "math-basic", "fraction_addition")

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, repo.createCalls)
}

func TestResolver_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	resolver := NewResolver(repo, nil)

	first, err := resolver.Resolve(context.Background(), "math-basic", "fraction_addition")
	require.NoError(t, err)

	second, err := resolver.Resolve(context.Background(), "math-basic", "fraction_addition")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.createCalls)
}

func TestResolver_DistinctPerAppAndCategory(t *testing.T) {
	repo := newFakeRepo()
	resolver := NewResolver(repo, nil)
	ctx := context.Background()

	a, err := resolver.Resolve(ctx, "math-basic", "fraction_addition")
	require.NoError(t, err)
	b, err := resolver.Resolve(ctx, "math-basic", "fraction_division")
	require.NoError(t, err)
	c, err := resolver.Resolve(ctx, "vocab-de-fr", "fraction_addition")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestResolver_RecoversFromCreationRace(t *testing.T) {
	// A concurrent creator wins between the miss and the insert. The
	// resolver must requery and return the winner's id.
	repo := newFakeRepo()
	winner := &Item{ID: "winner-id", AppID: "math-basic", Descriptor: CanonicalDescriptor("fractions")}
	repo.items[repo.key(winner.AppID, winner.Descriptor)] = winner

	// First lookup misses, insert conflicts, requery finds the winner.
	racing := &racingRepo{fakeRepo: repo}
	resolver := NewResolver(racing, nil)

	id, err := resolver.Resolve(context.Background(), "math-basic", "fractions")

	require.NoError(t, err)
	assert.Equal(t, "winner-id", id)
}

// racingRepo reports not-found on the first lookup even though the row
// exists, simulating a concurrent insert between lookup and create.
type racingRepo struct {
	*fakeRepo
	looked bool
}

func (r *racingRepo) FindByDescriptor(ctx context.Context, appID, descriptor string) (*Item, error) {
	if !r.looked {
		r.looked = true
		return nil, shared.ErrExerciseNotFound
	}
	return r.fakeRepo.FindByDescriptor(ctx, appID, descriptor)
}

func TestResolver_UsesCache(t *testing.T) {
	repo := newFakeRepo()
	cache := NewMemoryCache()
	resolver := NewResolver(repo, cache)
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "math-basic", "fractions")
	require.NoError(t, err)

	findsBefore := repo.findCalls
	second, err := resolver.Resolve(ctx, "math-basic", "fractions")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, findsBefore, repo.findCalls, "cached hit must not touch the store")
}

func TestResolver_RejectsEmptyInput(t *testing.T) {
	resolver := NewResolver(newFakeRepo(), nil)

	_, err := resolver.Resolve(context.Background(), "", "fractions")
	assert.ErrorIs(t, err, shared.ErrInvalidCategory)

	_, err = resolver.Resolve(context.Background(), "math-basic", "")
	assert.ErrorIs(t, err, shared.ErrInvalidCategory)
}

func TestCanonicalDescriptor_Stable(t *testing.T) {
	a := CanonicalDescriptor("fraction_addition")
	b := CanonicalDescriptor(" fraction_addition ")

	assert.Equal(t, a, b, "whitespace must not change the canonical form")
	assert.JSONEq(t, `{"category":"fraction_addition","procedural":true}`, a)
}
