package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/lodgelist/lodgelist/internal/jobs"
)

type fakeCounterStore struct {
	refreshed []string
	err       error
}

func (f *fakeCounterStore) RefreshAccommodationCount(_ context.Context, destinationID string) error {
	f.refreshed = append(f.refreshed, destinationID)
	return f.err
}

type fakePurgeStore struct {
	cutoffs []time.Time
	purged  int64
	err     error
}

func (f *fakePurgeStore) PurgeDeletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.purged, f.err
}

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func TestDestinationRecountRefreshesCounter(t *testing.T) {
	store := &fakeCounterStore{}
	job := NewDestinationRecountJob(store, nil, testMetrics())

	task, err := NewDestinationRecountTask("dest-1")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, []string{"dest-1"}, store.refreshed)
}

func TestDestinationRecountSkipsMalformedPayload(t *testing.T) {
	store := &fakeCounterStore{}
	job := NewDestinationRecountJob(store, nil, testMetrics())

	task, err := NewDestinationRecountTask("")
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, store.refreshed)
}

func TestPurgeSweepsAllTablesWithRetentionCutoff(t *testing.T) {
	listings := &fakePurgeStore{purged: 3}
	stories := &fakePurgeStore{purged: 1}
	job := NewPurgeDeletedJob([]PurgeTarget{
		{Name: "accommodations", Store: listings},
		{Name: "posts", Store: stories},
	}, 30*24*time.Hour, nil, testMetrics())

	now := time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	job.WithClock(func() time.Time { return now })

	require.NoError(t, job.Handle(context.Background(), NewPurgeDeletedTask()))

	want := now.Add(-30 * 24 * time.Hour)
	require.Len(t, listings.cutoffs, 1)
	assert.Equal(t, want, listings.cutoffs[0])
	require.Len(t, stories.cutoffs, 1)
	assert.Equal(t, want, stories.cutoffs[0])
}

func TestPurgeContinuesPastFailingTable(t *testing.T) {
	broken := &fakePurgeStore{err: errors.New("relation is locked")}
	healthy := &fakePurgeStore{purged: 2}
	job := NewPurgeDeletedJob([]PurgeTarget{
		{Name: "accommodations", Store: broken},
		{Name: "posts", Store: healthy},
	}, time.Hour, nil, testMetrics())

	err := job.Handle(context.Background(), NewPurgeDeletedTask())
	require.Error(t, err)
	assert.Len(t, healthy.cutoffs, 1, "later tables still swept")
}
