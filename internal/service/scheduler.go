package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"equityscan/config"
	"equityscan/internal/dto"
	"equityscan/internal/scan"
	"equityscan/pkg/logger"
	"equityscan/pkg/statestore"
	"equityscan/pkg/utils"
)

// SchedulerService owns the daily cron trigger and the watchdog that marks a
// silent pipeline as failed.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	RunNow(ctx context.Context, mode dto.ScanMode, limit int) (*scan.Result, error)
}

type schedulerService struct {
	cfg          *config.Config
	log          *logger.Logger
	orchestrator scan.Orchestrator
	state        statestore.Store
	notifier     NotifierService

	cron *cron.Cron
	stop chan struct{}

	mu      sync.Mutex
	running bool
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	orchestrator scan.Orchestrator,
	state statestore.Store,
	notifier NotifierService,
) SchedulerService {
	return &schedulerService{
		cfg:          cfg,
		log:          log,
		orchestrator: orchestrator,
		state:        state,
		notifier:     notifier,
		stop:         make(chan struct{}),
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithLocation(utils.GetISTTimeLocation()))

	_, err := s.cron.AddFunc(s.cfg.Scheduler.DailyRunCron, func() {
		if _, err := s.RunNow(ctx, dto.ScanModeFull, 0); err != nil {
			s.log.ErrorContext(ctx, "Scheduled scan failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register daily scan schedule: %w", err)
	}

	s.cron.Start()
	s.log.InfoContext(ctx, "Scheduler started",
		logger.StringField("daily_run_cron", s.cfg.Scheduler.DailyRunCron),
		logger.StringField("watchdog_interval", s.cfg.Scheduler.WatchdogInterval.String()))

	utils.GoSafe(func() {
		s.watchdogLoop(ctx)
	})
	return nil
}

func (s *schedulerService) Stop() {
	close(s.stop)
	if s.cron != nil {
		cronCtx := s.cron.Stop()
		<-cronCtx.Done()
	}
}

// RunNow executes one cycle immediately. Overlapping triggers (cron firing
// while a manual run is in flight) are rejected rather than queued.
func (s *schedulerService) RunNow(ctx context.Context, mode dto.ScanMode, limit int) (*scan.Result, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, fmt.Errorf("a scan is already running")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	result, err := s.orchestrator.Run(ctx, mode, limit)
	if err != nil {
		return nil, err
	}

	if mode == dto.ScanModeFull && result != nil {
		if err := s.notifier.SendRecommendations(ctx, result.RunDate, result.Recommendations, result.Changes); err != nil {
			s.log.WarnContext(ctx, "Failed to send recommendations", logger.ErrorField(err))
		}
	}
	return result, nil
}

// watchdogLoop periodically inspects the shared run state. A pipeline that
// reports RUNNING but has not emitted a heartbeat within the timeout is
// declared dead so the next trigger can start clean.
func (s *schedulerService) watchdogLoop(ctx context.Context) {
	interval := s.cfg.Scheduler.WatchdogInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.checkStuck(ctx)
		}
	}
}

func (s *schedulerService) checkStuck(ctx context.Context) {
	stuck, state, err := s.state.CheckStuck(s.cfg.Scheduler.HeartbeatTimeout)
	if err != nil {
		s.log.WarnContext(ctx, "Watchdog failed to read run state", logger.ErrorField(err))
		return
	}
	if !stuck {
		return
	}

	s.log.ErrorContextWithAlert(ctx, "Pipeline heartbeat timed out",
		logger.StringField("stage", state.Stage),
		logger.StringField("run_date", state.RunDate),
		logger.IntField("pid", state.PID),
		logger.IntField("total_scanned", state.TotalScanned))

	if err := s.state.SetStatus(statestore.StatusFailed, ""); err != nil {
		s.log.ErrorContext(ctx, "Failed to mark run as failed", logger.ErrorField(err))
		return
	}

	msg := fmt.Sprintf("⚠️ Scan %s stalled at stage %s (last heartbeat %s ago), marked FAILED",
		state.RunDate, state.Stage, time.Since(time.Unix(state.LastHeartbeat, 0)).Round(time.Second))
	if err := s.notifier.SendAlert(ctx, msg); err != nil {
		s.log.WarnContext(ctx, "Failed to send stall alert", logger.ErrorField(err))
	}
}
