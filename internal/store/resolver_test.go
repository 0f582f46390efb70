package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wltransit/opsdash/internal/model"
)

// stubStore implements only what the resolver touches.
type stubStore struct {
	CSVStore
	label     string
	counts    Counts
	countsErr error
}

func (s *stubStore) Label() string { return s.label }

func (s *stubStore) Counts(context.Context) (Counts, error) {
	return s.counts, s.countsErr
}

func TestResolverPrefersDatabase(t *testing.T) {
	db := &stubStore{label: LabelDatabase, counts: Counts{Routes: 100, Stops: 500, Trips: 2000}}
	files := &stubStore{label: LabelCSV, counts: Counts{Routes: 90, Stops: 450, Trips: 1800}}
	r := NewResolver(db, func(context.Context) error { return nil }, files)

	counts, label := r.OverviewCounts(context.Background())
	assert.Equal(t, LabelDatabase, label)
	assert.Equal(t, db.counts, counts)
	assert.True(t, r.DatabaseAvailable(context.Background()))
}

func TestResolverFallsBackOnProbeFailure(t *testing.T) {
	db := &stubStore{label: LabelDatabase, counts: Counts{Routes: 100}}
	files := &stubStore{label: LabelCSV, counts: Counts{Routes: 90, Stops: 450, Trips: 1800}}
	r := NewResolver(db, func(context.Context) error { return errors.New("connection refused") }, files)

	counts, label := r.OverviewCounts(context.Background())
	assert.Equal(t, LabelCSV, label)
	assert.Equal(t, files.counts, counts)
	assert.False(t, r.DatabaseAvailable(context.Background()))
}

func TestResolverFallsBackOnQueryFailure(t *testing.T) {
	db := &stubStore{label: LabelDatabase, countsErr: errors.New("relation does not exist")}
	files := &stubStore{label: LabelCSV, counts: Counts{Routes: 90}}
	r := NewResolver(db, func(context.Context) error { return nil }, files)

	counts, label := r.OverviewCounts(context.Background())
	assert.Equal(t, LabelCSV, label)
	assert.Equal(t, 90, counts.Routes)
}

func TestResolverNoDatabaseConfigured(t *testing.T) {
	files := &stubStore{label: LabelCSV, counts: Counts{Stops: 7}}
	r := NewResolver(nil, nil, files)

	counts, label := r.OverviewCounts(context.Background())
	assert.Equal(t, LabelCSV, label)
	assert.Equal(t, 7, counts.Stops)
	assert.False(t, r.DatabaseAvailable(context.Background()))
}

func TestResolverBothBackingsDown(t *testing.T) {
	db := &stubStore{label: LabelDatabase, countsErr: errors.New("down")}
	files := &stubStore{label: LabelCSV, countsErr: errors.New("also down")}
	r := NewResolver(db, func(context.Context) error { return errors.New("down") }, files)

	counts, label := r.OverviewCounts(context.Background())
	assert.Equal(t, LabelCSV, label)
	assert.Equal(t, Counts{}, counts, "zeroed counts, never an error")
}

func TestResolverScheduleIsFlatFiles(t *testing.T) {
	files := NewMemoryStore([]model.Route{{ID: "R1"}}, nil, nil, nil)
	r := NewResolver(&stubStore{label: LabelDatabase}, func(context.Context) error { return nil }, files)
	assert.Equal(t, LabelCSV, r.Schedule().Label())
}
