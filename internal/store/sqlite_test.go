package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.StartRun(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "running", runs[0].Status)
	assert.Nil(t, runs[0].CompletedAt)

	require.NoError(t, s.CompleteRun(ctx, id, RunCounts{Schools: 3, Tracts: 2, Merged: 3}))

	runs, err = s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "complete", runs[0].Status)
	assert.Equal(t, int64(3), runs[0].Schools)
	assert.Equal(t, int64(2), runs[0].Tracts)
	assert.NotNil(t, runs[0].CompletedAt)
}

func TestFailRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.StartRun(ctx)
	require.NoError(t, err)

	require.NoError(t, s.FailRun(ctx, id, "hierarchy: county 17001 has no commuting-zone entry"))

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Status)
	assert.Contains(t, runs[0].Error, "17001")
}

func TestCompleteUnknownRun(t *testing.T) {
	s := newTestStore(t)
	err := s.CompleteRun(context.Background(), "no-such-run", RunCounts{})
	assert.Error(t, err)
}

func TestSaveLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.StartRun(ctx)
	require.NoError(t, err)

	links := []LinkRecord{
		{UniversalID: "s1", TractFIPS: "17001000100", DistanceM: 12.5, State: "IL", CZID: "123", CountyFIPS: "17001", Geom: []byte{1, 2, 3}},
		{UniversalID: "s2", TractFIPS: "99999999999", DistanceM: 40.0}, // unmatched hierarchy: nulls
	}
	require.NoError(t, s.SaveLinks(ctx, id, links))

	n, err := s.CountLinks(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestListRunsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.StartRun(ctx)
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
