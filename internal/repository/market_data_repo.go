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

type MarketDataRepository interface {
	GetHistory(ctx context.Context, param dto.GetStockHistoryParam) (dto.PriceSeries, error)
}

type marketDataRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	cache          cache.Cache
	requestLimiter *rate.Limiter
	mu             sync.Mutex
}

func NewMarketDataRepository(cfg *config.Config, log *logger.Logger, c cache.Cache) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)

	return &marketDataRepository{
		httpClient:     httpclient.New(cfg.YahooFinance.BaseURL, cfg.YahooFinance.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		cache:          c,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         "https://finance.yahoo.com/",
}

func (r *marketDataRepository) GetHistory(ctx context.Context, param dto.GetStockHistoryParam) (dto.PriceSeries, error) {
	if param.Period == "" {
		param.Period = r.cfg.Scan.HistoryPeriod
	}

	cacheKey := fmt.Sprintf(common.KEY_STOCK_HISTORY, param.Ticker, param.Period)
	if cached, ok := r.cache.Get(cacheKey); ok {
		if series, sok := cached.(dto.PriceSeries); sok {
			return series, nil
		}
	}

	r.mu.Lock()
	if !r.requestLimiter.Allow() {
		r.logger.WarnContext(ctx, "Market data request limit exceeded, waiting",
			logger.IntField("max_request_per_minute", r.cfg.YahooFinance.MaxRequestPerMinute))
	}
	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.mu.Unlock()

	period1, period2 := mapPeriodToUnixRange(param.Period)
	if period1 == 0 || period2 == 0 {
		return nil, fmt.Errorf("invalid history period: %s", param.Period)
	}

	queryParams := map[string]string{
		"period1":        fmt.Sprintf("%d", period1),
		"period2":        fmt.Sprintf("%d", period2),
		"interval":       "1d",
		"includePrePost": "false",
		"events":         "div,split",
	}

	var chartResp dto.YahooChartResponse
	resp, err := r.httpClient.Get(ctx, "/"+param.Ticker, queryParams, browserHeaders, &chartResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch market data: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.ErrorContext(ctx, "Market data API returned non-OK status",
			logger.StringField("ticker", param.Ticker),
			logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("market data api returned status: %d", resp.StatusCode)
	}
	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("market data api error: %v", chartResp.Chart.Error)
	}
	if len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data returned for symbol: %s", param.Ticker)
	}

	result := chartResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data available for symbol: %s", param.Ticker)
	}

	quote := result.Indicators.Quote[0]
	series := make(dto.PriceSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		point := dto.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: quote.Close[i],
		}
		if i < len(quote.Open) {
			point.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			point.High = quote.High[i]
		}
		if i < len(quote.Low) {
			point.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			point.Volume = quote.Volume[i]
		}
		series = append(series, point)
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("empty price series for symbol: %s", param.Ticker)
	}

	r.cache.Set(cacheKey, series, r.cfg.Cache.DefaultExpiration)
	return series, nil
}

// mapPeriodToUnixRange converts a relative period string into a unix
// timestamp pair ending now. Unknown periods return zeros.
func mapPeriodToUnixRange(period string) (int64, int64) {
	now := time.Now()

	var d time.Duration
	switch period {
	case "1mo":
		d = 30 * 24 * time.Hour
	case "3mo":
		d = 91 * 24 * time.Hour
	case "6mo":
		d = 182 * 24 * time.Hour
	case "1y":
		d = 365 * 24 * time.Hour
	case "2y":
		d = 2 * 365 * 24 * time.Hour
	case "5y":
		d = 5 * 365 * 24 * time.Hour
	default:
		return 0, 0
	}

	return now.Add(-d).Unix(), now.Unix()
}
