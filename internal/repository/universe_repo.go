package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"equityscan/config"
	"equityscan/internal/dto"
	"equityscan/pkg/cache"
	"equityscan/pkg/common"
	"equityscan/pkg/httpclient"
	"equityscan/pkg/logger"
)

// minUniverseSize guards against truncated exchange downloads. A list this
// small means the download failed halfway; the fallback list is safer.
const minUniverseSize = 500

const exchangeArchiveURL = "https://archives.nseindia.com"

type UniverseRepository interface {
	GetEquityList(ctx context.Context) ([]dto.StockInfo, error)
}

type universeRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
	cache      cache.Cache
}

func NewUniverseRepository(cfg *config.Config, log *logger.Logger, c cache.Cache) UniverseRepository {
	return &universeRepository{
		httpClient: httpclient.New(exchangeArchiveURL, 30*time.Second, ""),
		cfg:        cfg,
		logger:     log,
		cache:      c,
	}
}

// fallbackSymbols is the NIFTY heavyweights plus liquid ETFs, used when the
// exchange list cannot be downloaded.
var fallbackSymbols = []string{
	"RELIANCE", "TCS", "INFY", "HDFCBANK", "ICICIBANK", "LT", "SBIN", "AXISBANK", "ITC", "HINDUNILVR",
	"NIFTYBEES", "BANKBEES", "GOLDBEES", "LIQUIDBEES", "SILVERBEES",
}

func (r *universeRepository) GetEquityList(ctx context.Context) ([]dto.StockInfo, error) {
	if cached, ok := r.cache.Get(common.KEY_EQUITY_UNIVERSE); ok {
		if list, lok := cached.([]dto.StockInfo); lok {
			return list, nil
		}
	}

	list, err := r.downloadEquityList(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "Equity list download failed, using fallback universe",
			logger.ErrorField(err))
		list = r.fallbackList()
	}

	r.cache.Set(common.KEY_EQUITY_UNIVERSE, list, r.cfg.Cache.DefaultExpiration)
	return list, nil
}

func (r *universeRepository) downloadEquityList(ctx context.Context) ([]dto.StockInfo, error) {
	resp, err := r.httpClient.Get(ctx, "/content/equities/EQUITY_L.csv", nil, map[string]string{
		"User-Agent": "Mozilla/5.0",
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download equity list: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("equity list download returned status: %d", resp.StatusCode)
	}

	reader := csv.NewReader(bytes.NewReader(resp.Body))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read equity list header: %w", err)
	}

	symbolIdx, nameIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "SYMBOL":
			symbolIdx = i
		case "NAME OF COMPANY":
			nameIdx = i
		}
	}
	if symbolIdx < 0 {
		return nil, fmt.Errorf("equity list missing SYMBOL column")
	}

	var list []dto.StockInfo
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse equity list: %w", err)
		}
		if symbolIdx >= len(record) {
			continue
		}
		symbol := strings.TrimSpace(record[symbolIdx])
		if symbol == "" {
			continue
		}

		name := symbol
		if nameIdx >= 0 && nameIdx < len(record) && strings.TrimSpace(record[nameIdx]) != "" {
			name = strings.TrimSpace(record[nameIdx])
		}
		list = append(list, dto.StockInfo{Ticker: symbol + ".NS", Name: name})
	}

	if len(list) < minUniverseSize {
		return nil, fmt.Errorf("equity list suspiciously small: %d entries", len(list))
	}
	return list, nil
}

func (r *universeRepository) fallbackList() []dto.StockInfo {
	list := make([]dto.StockInfo, 0, len(fallbackSymbols))
	for _, s := range fallbackSymbols {
		list = append(list, dto.StockInfo{Ticker: s + ".NS", Name: s})
	}
	return list
}
