package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equityscan/config"
	"equityscan/internal/dto"
	"equityscan/internal/scan"
	"equityscan/pkg/export"
	"equityscan/pkg/logger"
	"equityscan/pkg/statestore"
)

type fakeOrchestrator struct {
	mu      sync.Mutex
	calls   int
	block   chan struct{}
	result  *scan.Result
	lastErr error
}

func (f *fakeOrchestrator) Run(ctx context.Context, mode dto.ScanMode, limit int) (*scan.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.result, f.lastErr
}

func testServiceConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Scheduler: config.Scheduler{
			DailyRunCron:     "30 3 * * 1-5",
			WatchdogInterval: time.Minute,
			HeartbeatTimeout: time.Minute,
		},
		BigBets: config.BigBets{
			MinTrainRows:      20,
			MinPositiveLabels: 2,
			DefaultAmount:     100000,
		},
		StateFile: filepath.Join(t.TempDir(), "state.json"),
	}
}

func testServiceLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func TestRunNowRejectsOverlap(t *testing.T) {
	cfg := testServiceConfig(t)
	log := testServiceLogger(t)
	state := statestore.NewFileStore(cfg.StateFile)
	notifier := NewNotifierService(cfg, log, nil)

	orch := &fakeOrchestrator{block: make(chan struct{}), result: &scan.Result{RunDate: "2026-08-31"}}
	s := NewSchedulerService(cfg, log, orch, state, notifier).(*schedulerService)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.RunNow(context.Background(), dto.ScanModeFull, 0)
		assert.NoError(t, err)
	}()

	// wait until the first run is inside the orchestrator
	require.Eventually(t, func() bool {
		orch.mu.Lock()
		defer orch.mu.Unlock()
		return orch.calls == 1
	}, time.Second, 5*time.Millisecond)

	_, err := s.RunNow(context.Background(), dto.ScanModeFull, 0)
	require.Error(t, err)

	close(orch.block)
	<-done

	_, err = s.RunNow(context.Background(), dto.ScanModeFull, 0)
	assert.NoError(t, err)
}

func TestWatchdogMarksStalePipelineFailed(t *testing.T) {
	cfg := testServiceConfig(t)
	log := testServiceLogger(t)
	state := statestore.NewFileStore(cfg.StateFile)
	notifier := NewNotifierService(cfg, log, nil)

	require.NoError(t, state.SetStatus(statestore.StatusRunning, statestore.StageFetch))
	// a fresh heartbeat must not trip the watchdog
	s := NewSchedulerService(cfg, log, &fakeOrchestrator{}, state, notifier).(*schedulerService)
	s.checkStuck(context.Background())

	st, err := state.Load()
	require.NoError(t, err)
	assert.Equal(t, statestore.StatusRunning, st.Status)

	cfg.Scheduler.HeartbeatTimeout = time.Nanosecond
	time.Sleep(1100 * time.Millisecond)
	s.checkStuck(context.Background())

	st, err = state.Load()
	require.NoError(t, err)
	assert.Equal(t, statestore.StatusFailed, st.Status)
}

func TestBigBetsServiceRunFromFile(t *testing.T) {
	cfg := testServiceConfig(t)
	log := testServiceLogger(t)
	state := statestore.NewFileStore(cfg.StateFile)
	notifier := NewNotifierService(cfg, log, nil)
	svc := NewBigBetsService(cfg, log, state, notifier)

	headers := []string{"Name", "ROCE", "ROE", "OPM", "QtrProfitGrowth", "QtrSalesGrowth", "DebtEq", "RSI"}
	rows := make([]map[string]interface{}, 0, 8)
	for i := 0; i < 8; i++ {
		rows = append(rows, map[string]interface{}{
			"Name":            fmt.Sprintf("Stock %d", i),
			"ROCE":            20.0,
			"ROE":             18.0,
			"OPM":             16.0,
			"QtrProfitGrowth": 25.0,
			"QtrSalesGrowth":  15.0,
			"DebtEq":          0.2,
			"RSI":             60.0,
		})
	}
	path := filepath.Join(t.TempDir(), "screener.csv")
	require.NoError(t, export.WriteCSV(path, headers, rows))

	result, err := svc.RunFromFile(context.Background(), path, 90000)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Recommendations)

	// too few rows for training, the classifier abstains
	for _, rec := range result.Recommendations {
		assert.Equal(t, 0.0, rec.WinProbability)
	}

	st, err := state.Load()
	require.NoError(t, err)
	assert.True(t, st.Flags[statestore.FlagBigBetsComplete])
}

func TestBigBetsServiceUnsupportedFile(t *testing.T) {
	cfg := testServiceConfig(t)
	log := testServiceLogger(t)
	state := statestore.NewFileStore(cfg.StateFile)
	svc := NewBigBetsService(cfg, log, state, NewNotifierService(cfg, log, nil))

	_, err := svc.RunFromFile(context.Background(), "table.txt", 0)
	assert.Error(t, err)
}
