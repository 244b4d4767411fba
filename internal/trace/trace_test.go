package trace

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitaltrails/opentrack-opal/internal/protocol"
)

func TestRecordLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")

	r, err := NewRecorder(path)
	require.NoError(t, err)

	raw := protocol.Sample{X: 1, Yaw: 30, Pitch: -15}
	cond := protocol.Sample{X: 0.1, Yaw: 3, Pitch: -1.5}
	now := r.start

	require.NoError(t, r.Record(&raw, cond, now.Add(10*time.Millisecond)))
	require.NoError(t, r.Record(nil, cond, now.Add(25*time.Millisecond)))
	require.NoError(t, r.Close())

	ticks, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ticks, 2)

	assert.Equal(t, int64(10), ticks[0].Time)
	assert.False(t, ticks[0].Coast)
	assert.Equal(t, raw.Values(), ticks[0].Raw)
	assert.Equal(t, cond.Values(), ticks[0].Cond)

	assert.Equal(t, int64(25), ticks[1].Time)
	assert.True(t, ticks[1].Coast)
	assert.Nil(t, ticks[1].Raw)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	r, err := NewRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	ticks, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, ticks)
}
