package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	StatusIdle      = "IDLE"
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

const (
	StageStartup    = "STARTUP"
	StageFetch      = "FETCH"
	StageModel      = "MODEL"
	StageAllocation = "ALLOCATION"
)

const (
	FlagFetchComplete   = "fetch_complete"
	FlagModelComplete   = "model_complete"
	FlagBigBetsComplete = "big_bets_complete"
)

// RunState is the single shared pipeline record. The orchestrator is the only
// writer during a run; supervisors read it to detect hangs.
type RunState struct {
	Status        string          `json:"status"`
	Stage         string          `json:"stage"`
	LastHeartbeat int64           `json:"last_heartbeat"`
	TotalScanned  int             `json:"total_scanned"`
	PID           int             `json:"pid"`
	Flags         map[string]bool `json:"flags"`
	RunDate       string          `json:"run_date"`
}

func defaultState() RunState {
	return RunState{
		Status: StatusIdle,
		Flags: map[string]bool{
			FlagFetchComplete:   false,
			FlagModelComplete:   false,
			FlagBigBetsComplete: false,
		},
	}
}

type Store interface {
	Load() (RunState, error)
	SetStatus(status, stage string) error
	Heartbeat(scanned int) error
	SetPID(pid int) error
	SetRunDate(date string) error
	MarkFlag(name string, value bool) error
	CheckStuck(timeout time.Duration) (bool, RunState, error)
	Reset() error
}

// FileStore persists the run state as a single JSON document. Writes go
// through a temp file and rename so readers never observe a torn record.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (RunState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() (RunState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultState(), nil
		}
		return defaultState(), err
	}

	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		// A corrupt state file must not wedge the pipeline.
		return defaultState(), nil
	}
	if state.Flags == nil {
		state.Flags = defaultState().Flags
	}
	return state, nil
}

func (s *FileStore) save(state RunState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) update(fn func(*RunState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	fn(&state)
	return s.save(state)
}

func (s *FileStore) SetStatus(status, stage string) error {
	return s.update(func(state *RunState) {
		state.Status = status
		if stage != "" {
			state.Stage = stage
		}
		state.LastHeartbeat = s.monotonicNow(state.LastHeartbeat)
	})
}

// Heartbeat proves liveness. The timestamp never moves backwards while a run
// is in flight.
func (s *FileStore) Heartbeat(scanned int) error {
	return s.update(func(state *RunState) {
		state.LastHeartbeat = s.monotonicNow(state.LastHeartbeat)
		if scanned >= 0 {
			state.TotalScanned = scanned
		}
	})
}

func (s *FileStore) SetPID(pid int) error {
	return s.update(func(state *RunState) {
		state.PID = pid
	})
}

func (s *FileStore) SetRunDate(date string) error {
	return s.update(func(state *RunState) {
		state.RunDate = date
	})
}

func (s *FileStore) MarkFlag(name string, value bool) error {
	return s.update(func(state *RunState) {
		if state.Flags == nil {
			state.Flags = map[string]bool{}
		}
		state.Flags[name] = value
	})
}

// CheckStuck reports whether a RUNNING pipeline has gone silent for longer
// than the timeout.
func (s *FileStore) CheckStuck(timeout time.Duration) (bool, RunState, error) {
	state, err := s.Load()
	if err != nil {
		return false, state, err
	}
	if state.Status != StatusRunning {
		return false, state, nil
	}

	elapsed := time.Since(time.Unix(state.LastHeartbeat, 0))
	return elapsed > timeout, state, nil
}

func (s *FileStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(defaultState())
}

func (s *FileStore) monotonicNow(prev int64) int64 {
	now := time.Now().Unix()
	if now < prev {
		return prev
	}
	return now
}
