package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/vxgraph/pkg/report"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	require.NoError(t, s.Put(ctx, &report.Report{ID: "a", Document: "first"}))
	require.NoError(t, s.Put(ctx, &report.Report{ID: "b", Document: "second", Stats: report.Stats{Errors: 2}}))

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Document)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, 2, list[0].Errors)

	// storing again moves the report to the front
	require.NoError(t, s.Put(ctx, &report.Report{ID: "a", Document: "first"}))
	list, err = s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)

	assert.Error(t, s.Put(ctx, &report.Report{}))
	assert.NoError(t, s.Close(ctx))
}
