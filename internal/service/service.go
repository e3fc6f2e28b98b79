package service

import (
	"equityscan/config"
	"equityscan/internal/repository"
	"equityscan/internal/scan"
	"equityscan/pkg/logger"
	"equityscan/pkg/statestore"
	"equityscan/pkg/telegram"
)

type Service struct {
	ScanService      ScanService
	SchedulerService SchedulerService
	BigBetsService   BigBetsService
	NotifierService  NotifierService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	state statestore.Store,
	sender *telegram.Sender,
) *Service {
	notifier := NewNotifierService(cfg, log, sender)
	orchestrator := scan.NewOrchestrator(cfg, log, repo, state)
	scheduler := NewSchedulerService(cfg, log, orchestrator, state, notifier)
	scanService := NewScanService(cfg, log, repo, state, scheduler)
	bigBets := NewBigBetsService(cfg, log, state, notifier)

	return &Service{
		ScanService:      scanService,
		SchedulerService: scheduler,
		BigBetsService:   bigBets,
		NotifierService:  notifier,
	}
}
