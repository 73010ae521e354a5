package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerationHistoryStore struct {
	cutoff  time.Time
	deleted int64
	err     error
	calls   int
}

func (s *fakeGenerationHistoryStore) DeleteLoggedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.calls++
	s.cutoff = cutoff
	return s.deleted, s.err
}

func TestPurgeHistory_DeletesOnlyGenerationLog(t *testing.T) {
	store := &fakeGenerationHistoryStore{deleted: 7}
	job := NewPurgeHistoryJob(store, 90*24*time.Hour, nil)

	before := time.Now().UTC().Add(-90 * 24 * time.Hour)
	require.NoError(t, job.Run(context.Background()))
	after := time.Now().UTC().Add(-90 * 24 * time.Hour)

	assert.Equal(t, 1, store.calls)
	assert.False(t, store.cutoff.Before(before))
	assert.False(t, store.cutoff.After(after))
}

func TestPurgeHistory_PropagatesStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	job := NewPurgeHistoryJob(&fakeGenerationHistoryStore{err: boom}, time.Hour, nil)

	err := job.Run(context.Background())

	assert.ErrorIs(t, err, boom)
}
