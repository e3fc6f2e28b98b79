package repository

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"equityscan/config"
	"equityscan/internal/dto"
	"equityscan/pkg/cache"
	"equityscan/pkg/common"
	"equityscan/pkg/httpclient"
	"equityscan/pkg/logger"
)

type FundamentalsRepository interface {
	Get(ctx context.Context, ticker string) (dto.FundamentalsSnapshot, error)
}

type fundamentalsRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	cache          cache.Cache
	requestLimiter *rate.Limiter
	mu             sync.Mutex
}

func NewFundamentalsRepository(cfg *config.Config, log *logger.Logger, c cache.Cache) FundamentalsRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)

	return &fundamentalsRepository{
		httpClient:     httpclient.New(cfg.YahooFinance.QuoteSummaryURL, cfg.YahooFinance.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		cache:          c,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

var summaryModules = "price,summaryDetail,defaultKeyStatistics,financialData,summaryProfile"

func (r *fundamentalsRepository) Get(ctx context.Context, ticker string) (dto.FundamentalsSnapshot, error) {
	cacheKey := fmt.Sprintf(common.KEY_STOCK_FUNDAMENTALS, ticker)
	if cached, ok := r.cache.Get(cacheKey); ok {
		if snap, sok := cached.(dto.FundamentalsSnapshot); sok {
			return snap, nil
		}
	}

	r.mu.Lock()
	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	queryParams := map[string]string{
		"modules": summaryModules,
	}

	var summaryResp dto.YahooQuoteSummaryResponse
	resp, err := r.httpClient.Get(ctx, "/"+ticker, queryParams, browserHeaders, &summaryResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fundamentals: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Fundamentals API returned non-OK status",
			logger.StringField("ticker", ticker),
			logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("fundamentals api returned status: %d", resp.StatusCode)
	}
	if len(summaryResp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no fundamentals returned for symbol: %s", ticker)
	}

	result := summaryResp.QuoteSummary.Result[0]
	snap := dto.FundamentalsSnapshot{}

	setRaw := func(m *dto.YahooModule, field, key string) {
		if m == nil {
			return
		}
		if v, ok := m.Raw(field); ok {
			snap[key] = v
		}
	}
	setStr := func(m *dto.YahooModule, field, key string) {
		if m == nil {
			return
		}
		if s, ok := m.Str(field); ok {
			snap[key] = s
		}
	}

	setRaw(result.Price, "regularMarketPrice", dto.KeyCurrentPrice)
	setRaw(result.Price, "regularMarketPreviousClose", dto.KeyPreviousClose)
	setRaw(result.Price, "marketCap", dto.KeyMarketCap)
	setStr(result.Price, "longName", dto.KeyLongName)

	setRaw(result.SummaryDetail, "trailingPE", dto.KeyTrailingPE)
	setRaw(result.SummaryDetail, "dividendYield", dto.KeyDividendYield)

	setRaw(result.DefaultKeyStatistics, "trailingEps", dto.KeyTrailingEps)
	setRaw(result.DefaultKeyStatistics, "bookValue", dto.KeyBookValue)
	setRaw(result.DefaultKeyStatistics, "pegRatio", dto.KeyPegRatio)

	setRaw(result.FinancialData, "returnOnEquity", dto.KeyReturnOnEquity)
	setRaw(result.FinancialData, "returnOnAssets", dto.KeyReturnOnAssets)
	setRaw(result.FinancialData, "operatingCashflow", dto.KeyOperatingCashflow)
	setRaw(result.FinancialData, "revenuePerShare", dto.KeyRevenuePerShare)
	setRaw(result.FinancialData, "currentRatio", dto.KeyCurrentRatio)
	setRaw(result.FinancialData, "debtToEquity", dto.KeyDebtToEquity)

	setStr(result.SummaryProfile, "sector", dto.KeySector)

	r.cache.Set(cacheKey, snap, r.cfg.Cache.DefaultExpiration)
	return snap, nil
}
