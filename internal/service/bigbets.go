package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"equityscan/config"
	"equityscan/internal/bigbets"
	"equityscan/pkg/export"
	"equityscan/pkg/logger"
	"equityscan/pkg/statestore"
)

// BigBetsService runs the medium-term screener over an uploaded or on-disk
// fundamentals table.
type BigBetsService interface {
	RunFromRows(ctx context.Context, rows []map[string]string, amount float64) (*bigbets.Result, error)
	RunFromFile(ctx context.Context, path string, amount float64) (*bigbets.Result, error)
}

type bigBetsService struct {
	cfg      *config.Config
	log      *logger.Logger
	engine   bigbets.Engine
	state    statestore.Store
	notifier NotifierService
}

func NewBigBetsService(cfg *config.Config, log *logger.Logger, state statestore.Store, notifier NotifierService) BigBetsService {
	return &bigBetsService{
		cfg:      cfg,
		log:      log,
		engine:   bigbets.NewEngine(cfg.BigBets),
		state:    state,
		notifier: notifier,
	}
}

func (b *bigBetsService) RunFromRows(ctx context.Context, rows []map[string]string, amount float64) (*bigbets.Result, error) {
	result, err := b.engine.Run(rows, amount)
	if err != nil {
		return nil, err
	}

	if len(result.MissingColumns) > 0 {
		b.log.WarnContext(ctx, "Screener input missing columns",
			logger.StringField("columns", strings.Join(result.MissingColumns, ",")))
	}

	if err := b.state.MarkFlag(statestore.FlagBigBetsComplete, true); err != nil {
		b.log.WarnContext(ctx, "Failed to mark big bets flag", logger.ErrorField(err))
	}

	if err := b.notifier.SendBigBets(ctx, result); err != nil {
		b.log.WarnContext(ctx, "Failed to send big bets message", logger.ErrorField(err))
	}

	b.log.InfoContext(ctx, "Big bets run completed",
		logger.IntField("input_rows", len(rows)),
		logger.IntField("candidates", len(result.Candidates)),
		logger.IntField("recommendations", len(result.Recommendations)))
	return result, nil
}

// RunFromFile loads a screener export (CSV or XLSX) and feeds it through the
// engine.
func (b *bigBetsService) RunFromFile(ctx context.Context, path string, amount float64) (*bigbets.Result, error) {
	var rows []map[string]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		_, rows, err = export.ReadCSV(path)
	case ".xlsx":
		_, rows, err = export.ReadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported screener file type: %s", path)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows found in %s", path)
	}

	return b.RunFromRows(ctx, rows, amount)
}
