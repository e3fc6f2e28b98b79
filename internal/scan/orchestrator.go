package scan

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"equityscan/config"
	"equityscan/internal/analysis"
	"equityscan/internal/dto"
	"equityscan/internal/forecast"
	"equityscan/internal/indicator"
	"equityscan/internal/model"
	"equityscan/internal/rank"
	"equityscan/internal/repository"
	"equityscan/pkg/logger"
	"equityscan/pkg/statestore"
	"equityscan/pkg/utils"
)

// Result is one completed cycle's output.
type Result struct {
	RunDate         string                `json:"run_date"`
	Recommendations []*dto.Recommendation `json:"recommendations"`
	Changes         []dto.PortfolioChange `json:"changes,omitempty"`
}

// Orchestrator drives one daily scan cycle through its stages: fetch and
// lightweight scoring across the universe, forecast refinement on the top
// candidates, then allocation and portfolio bookkeeping.
type Orchestrator interface {
	Run(ctx context.Context, mode dto.ScanMode, limit int) (*Result, error)
}

type orchestrator struct {
	cfg       *config.Config
	log       *logger.Logger
	repo      *repository.Repository
	state     statestore.Store
	ranker    rank.Ranker
	sentiment analysis.SentimentScorer
	tracker   Tracker
}

func NewOrchestrator(cfg *config.Config, log *logger.Logger, repo *repository.Repository, state statestore.Store) Orchestrator {
	return &orchestrator{
		cfg:       cfg,
		log:       log,
		repo:      repo,
		state:     state,
		ranker:    rank.NewRanker(cfg.Scan.Weights),
		sentiment: analysis.NewSentimentScorer(),
		tracker:   NewTracker(repo.PortfolioHistoryRepo, log),
	}
}

func (o *orchestrator) Run(ctx context.Context, mode dto.ScanMode, limit int) (*Result, error) {
	runDate := utils.TodayRunDate()

	if err := o.state.SetRunDate(runDate); err != nil {
		return nil, fmt.Errorf("failed to initialize run state: %w", err)
	}
	_ = o.state.SetPID(os.Getpid())
	if err := o.state.SetStatus(statestore.StatusRunning, statestore.StageStartup); err != nil {
		return nil, err
	}

	result, err := o.run(ctx, mode, limit, runDate)
	if err != nil {
		o.log.ErrorContextWithAlert(ctx, "Scan run failed",
			logger.StringField("run_date", runDate),
			logger.ErrorField(err))
		_ = o.state.SetStatus(statestore.StatusFailed, "")
		return nil, err
	}

	_ = o.state.SetStatus(statestore.StatusCompleted, "")
	return result, nil
}

func (o *orchestrator) run(ctx context.Context, mode dto.ScanMode, limit int, runDate string) (*Result, error) {
	if mode != dto.ScanModeAnalyzeOnly {
		universe, err := o.repo.UniverseRepo.GetEquityList(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load scan universe: %w", err)
		}
		if limit > 0 && limit < len(universe) {
			universe = universe[:limit]
		}

		if err := o.state.SetStatus(statestore.StatusRunning, statestore.StageFetch); err != nil {
			return nil, err
		}

		// Resume support: tickers persisted by an interrupted run are
		// skipped, so a restart only pays for the remainder.
		scanned, err := o.repo.ScanResultRepo.GetScannedTickers(ctx, runDate)
		if err != nil {
			return nil, fmt.Errorf("failed to load prior progress: %w", err)
		}

		if err := o.scanUniverse(ctx, runDate, universe, scanned); err != nil {
			return nil, err
		}
		if err := o.state.MarkFlag(statestore.FlagFetchComplete, true); err != nil {
			return nil, err
		}
	}

	results, err := o.loadResults(ctx, runDate)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		o.log.WarnContext(ctx, "Scan produced no scorable entities", logger.StringField("run_date", runDate))
		return &Result{RunDate: runDate}, nil
	}

	if mode == dto.ScanModeFetchOnly {
		if err := writeAnalysisArtifacts(o.cfg.DataDir, runDate, results); err != nil {
			return nil, err
		}
		return &Result{RunDate: runDate}, nil
	}

	if err := o.state.SetStatus(statestore.StatusRunning, statestore.StageModel); err != nil {
		return nil, err
	}

	forecastScores := o.forecastTopCandidates(ctx, results)
	o.ranker.Finalize(results, forecastScores)

	if err := o.persistResults(ctx, runDate, results); err != nil {
		return nil, err
	}
	if err := o.state.MarkFlag(statestore.FlagModelComplete, true); err != nil {
		return nil, err
	}

	if err := o.state.SetStatus(statestore.StatusRunning, statestore.StageAllocation); err != nil {
		return nil, err
	}

	topN := results
	if o.cfg.Scan.TopN < len(topN) {
		topN = topN[:o.cfg.Scan.TopN]
	}
	recs := o.ranker.Allocate(topN, o.cfg.Scan.MonthlyBudget)

	changes, err := o.tracker.Update(ctx, runDate, recs)
	if err != nil {
		return nil, fmt.Errorf("failed to update portfolio ledger: %w", err)
	}
	o.log.InfoContext(ctx, "Portfolio ledger updated",
		logger.StringField("run_date", runDate),
		logger.IntField("changes", len(changes)))

	if err := writeAnalysisArtifacts(o.cfg.DataDir, runDate, results); err != nil {
		return nil, err
	}
	if err := writeRecommendationArtifacts(o.cfg.DataDir, runDate, recs); err != nil {
		return nil, err
	}

	return &Result{RunDate: runDate, Recommendations: recs, Changes: changes}, nil
}

// scanUniverse fans the universe out over a bounded worker pool. Completions
// arrive in arbitrary order; results accumulate under one lock and every
// batch-sized completion flushes whatever succeeded and emits a heartbeat so
// a supervisor can tell a slow run from a dead one.
func (o *orchestrator) scanUniverse(ctx context.Context, runDate string, universe []dto.StockInfo, alreadyScanned map[string]bool) error {
	sem := make(chan struct{}, o.cfg.Scan.MaxConcurrency)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var pending []model.ScanResult
	processed := len(alreadyScanned)

	flush := func(batch []model.ScanResult, count int) {
		if len(batch) > 0 {
			if err := o.repo.ScanResultRepo.Upsert(ctx, batch); err != nil {
				o.log.ErrorContext(ctx, "Failed to persist scan batch", logger.ErrorField(err))
			}
		}
		if err := o.state.Heartbeat(count); err != nil {
			o.log.WarnContext(ctx, "Failed to emit heartbeat", logger.ErrorField(err))
		}
	}

	total := len(universe)
	for _, stock := range universe {
		if alreadyScanned[stock.Ticker] {
			continue
		}
		if !utils.ShouldContinue(ctx, o.log) {
			break
		}

		stock := stock
		wg.Add(1)
		sem <- struct{}{}
		utils.GoSafe(func() {
			defer wg.Done()
			defer func() { <-sem }()

			entityCtx := ctx
			if o.cfg.Scan.EntityTimeout > 0 {
				var cancel context.CancelFunc
				entityCtx, cancel = context.WithTimeout(ctx, o.cfg.Scan.EntityTimeout)
				defer cancel()
			}

			res, err := o.processStock(entityCtx, stock)

			mu.Lock()
			processed++
			count := processed
			if err != nil {
				// Per-entity isolation: one bad symbol never aborts the batch.
				o.log.DebugContext(ctx, "Skipping entity",
					logger.StringField("ticker", stock.Ticker),
					logger.ErrorField(err))
			} else if res != nil {
				pending = append(pending, toModel(runDate, res))
			}

			// The heartbeat keys off completions, not successes: a stretch of
			// failing entities must still prove the run is alive.
			var batch []model.ScanResult
			doFlush := o.cfg.Scan.BatchSize > 0 && count%o.cfg.Scan.BatchSize == 0
			if doFlush {
				batch = pending
				pending = nil
			}
			mu.Unlock()

			if doFlush {
				flush(batch, count)
			}
			if count%20 == 0 {
				o.log.InfoContext(ctx, "Scan progress",
					logger.IntField("processed", count),
					logger.IntField("total", total))
			}
		})
	}

	wg.Wait()

	mu.Lock()
	batch := pending
	pending = nil
	count := processed
	mu.Unlock()
	flush(batch, count)

	return ctx.Err()
}

// processStock runs the full per-entity pipeline: fetch history,
// fundamentals and headlines, enrich indicators, then score. Missing
// fundamentals or news degrade the score, not the run.
func (o *orchestrator) processStock(ctx context.Context, stock dto.StockInfo) (*dto.ScoredStock, error) {
	var (
		series    dto.PriceSeries
		funds     dto.FundamentalsSnapshot
		headlines []string
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		series, err = o.repo.MarketDataRepo.GetHistory(gCtx, dto.GetStockHistoryParam{
			Ticker: stock.Ticker,
			Period: o.cfg.Scan.HistoryPeriod,
		})
		return err
	})
	g.Go(func() error {
		// Fundamentals are optional; an empty snapshot just scores lower.
		snap, err := o.repo.FundamentalsRepo.Get(gCtx, stock.Ticker)
		if err == nil {
			funds = snap
		}
		return nil
	})
	g.Go(func() error {
		lines, err := o.repo.NewsRepo.GetHeadlines(gCtx, stock.Name)
		if err == nil {
			headlines = lines
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := indicator.Enrich(series); err != nil {
		return nil, err
	}

	techScore := analysis.TechnicalScore(series)
	fundScore := analysis.FundamentalScore(funds)
	sentScore := o.sentiment.Score(headlines)

	lastClose := series.LastClose()
	intrinsic := analysis.GrahamNumber(funds)
	margin := analysis.MarginOfSafety(funds, lastClose)
	preScore := o.ranker.PreScore(techScore, fundScore, sentScore)

	reason := analysis.InvestmentThesis(techScore, sentScore, lastClose, funds)
	reason = analysis.ApplyValuationPrefix(reason, margin)

	return &dto.ScoredStock{
		Ticker:         stock.Ticker,
		Name:           stock.Name,
		Sector:         funds.String(dto.KeySector),
		Close:          lastClose,
		TechScore:      techScore,
		FundScore:      fundScore,
		SentScore:      sentScore,
		PreScore:       preScore,
		FinalScore:     preScore,
		IntrinsicValue: intrinsic,
		MarginOfSafety: margin,
		Reason:         reason,
		Fundamentals:   funds,
	}, nil
}

// forecastTopCandidates refines only the top-K pre-scores. Forecasting is by
// far the most expensive step; everyone else keeps final = pre.
func (o *orchestrator) forecastTopCandidates(ctx context.Context, results []*dto.ScoredStock) map[string]float64 {
	candidates := o.ranker.TopCandidates(results, o.cfg.Scan.TopCandidates)
	scores := make(map[string]float64, len(candidates))

	for _, candidate := range candidates {
		if !utils.ShouldContinue(ctx, o.log) {
			break
		}

		series, err := o.repo.MarketDataRepo.GetHistory(ctx, dto.GetStockHistoryParam{
			Ticker: candidate.Ticker,
			Period: o.cfg.Scan.HistoryPeriod,
		})
		if err != nil {
			o.log.WarnContext(ctx, "Forecast fetch failed, keeping pre-score",
				logger.StringField("ticker", candidate.Ticker),
				logger.ErrorField(err))
			continue
		}

		// Each candidate gets its own model; fits share no state.
		f := forecast.New(o.cfg.Scan.LookbackDays, o.cfg.Scan.ForecastHorizon)
		scores[candidate.Ticker] = f.Score(series.Closes())
	}
	return scores
}

func (o *orchestrator) loadResults(ctx context.Context, runDate string) ([]*dto.ScoredStock, error) {
	models, err := o.repo.ScanResultRepo.GetByRunDate(ctx, model.GetScanResultParam{RunDate: runDate})
	if err != nil {
		return nil, fmt.Errorf("failed to load scan results: %w", err)
	}

	results := make([]*dto.ScoredStock, 0, len(models))
	for _, m := range models {
		results = append(results, FromModel(m))
	}
	return results, nil
}

func (o *orchestrator) persistResults(ctx context.Context, runDate string, results []*dto.ScoredStock) error {
	models := make([]model.ScanResult, 0, len(results))
	for _, s := range results {
		models = append(models, toModel(runDate, s))
	}
	if err := o.repo.ScanResultRepo.Upsert(ctx, models); err != nil {
		return fmt.Errorf("failed to persist final scores: %w", err)
	}
	return nil
}
