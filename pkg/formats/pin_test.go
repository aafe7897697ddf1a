package formats

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPINOrderAndLookup(t *testing.T) {
	var p PIN
	require.NoError(t, p.Add("b", "U8"))
	require.NoError(t, p.Add("a", "S16"))

	assert.Equal(t, []Entry{{"b", "U8"}, {"a", "S16"}}, p.Entries())
	f, ok := p.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "S16", f)
	assert.True(t, p.HasAll([]string{"a", "b"}))
	assert.False(t, p.HasAll([]string{"a", "c"}))

	_, err := p.Format("c")
	assert.ErrorIs(t, err, ErrNotResolved)
}

func TestPINDuplicatePanics(t *testing.T) {
	p := NewPIN()
	require.NoError(t, p.Add("a", "U8"))
	assert.Panics(t, func() { _ = p.Add("a", "U8") })
}

func TestPINFreeze(t *testing.T) {
	p := NewPIN()
	require.NoError(t, p.Add("a", "U8"))
	p.Freeze()

	assert.ErrorIs(t, p.Add("b", "U8"), ErrFrozen)
	assert.Equal(t, 1, p.Len())
}

func TestPINJSON(t *testing.T) {
	p := NewPIN()
	require.NoError(t, p.Add("img1", "U8"))
	require.NoError(t, p.Add("img0", "S16"))

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"image_id":"img1","format":"U8"},{"image_id":"img0","format":"S16"}]`, string(data))

	var back PIN
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p.Entries(), back.Entries())
	assert.True(t, back.Frozen())

	empty, err := json.Marshal(NewPIN())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty))
}
