package statestore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "state.json"))
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	s := newTestStore(t)

	state, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, state.Status)
	assert.False(t, state.Flags[FlagFetchComplete])
}

func TestStatusAndFlagsRoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetRunDate("2026-08-31"))
	require.NoError(t, s.SetStatus(StatusRunning, StageFetch))
	require.NoError(t, s.MarkFlag(FlagFetchComplete, true))
	require.NoError(t, s.Heartbeat(42))

	state, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, state.Status)
	assert.Equal(t, StageFetch, state.Stage)
	assert.Equal(t, "2026-08-31", state.RunDate)
	assert.Equal(t, 42, state.TotalScanned)
	assert.True(t, state.Flags[FlagFetchComplete])
	assert.Greater(t, state.LastHeartbeat, int64(0))
}

func TestSetStatusKeepsStageWhenEmpty(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetStatus(StatusRunning, StageModel))
	require.NoError(t, s.SetStatus(StatusFailed, ""))

	state, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, state.Status)
	assert.Equal(t, StageModel, state.Stage)
}

func TestCorruptFileFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := NewFileStore(path)
	state, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, state.Status)
}

func TestCheckStuck(t *testing.T) {
	s := newTestStore(t)

	// idle pipelines are never stuck regardless of heartbeat age
	stuck, _, err := s.CheckStuck(time.Millisecond)
	require.NoError(t, err)
	assert.False(t, stuck)

	require.NoError(t, s.SetStatus(StatusRunning, StageFetch))
	stuck, _, err = s.CheckStuck(time.Hour)
	require.NoError(t, err)
	assert.False(t, stuck)

	// age the heartbeat past the timeout
	require.NoError(t, s.update(func(state *RunState) {
		state.LastHeartbeat = time.Now().Add(-time.Hour).Unix()
	}))
	stuck, state, err := s.CheckStuck(time.Minute)
	require.NoError(t, err)
	assert.True(t, stuck)
	assert.Equal(t, StatusRunning, state.Status)
}

func TestReset(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SetStatus(StatusRunning, StageFetch))
	require.NoError(t, s.MarkFlag(FlagModelComplete, true))
	require.NoError(t, s.Reset())

	state, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, state.Status)
	assert.False(t, state.Flags[FlagModelComplete])
}
