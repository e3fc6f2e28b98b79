package repository

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"equityscan/config"
	"equityscan/pkg/cache"
	"equityscan/pkg/common"
	"equityscan/pkg/httpclient"
	"equityscan/pkg/logger"
	"equityscan/pkg/ratelimit"
)

type NewsRepository interface {
	GetHeadlines(ctx context.Context, companyName string) ([]string, error)
}

type newsRepository struct {
	httpClient httpclient.HTTPClient
	cfg        *config.Config
	logger     *logger.Logger
	cache      cache.Cache
	limiter    *ratelimit.TokenLimiter
}

func NewNewsRepository(cfg *config.Config, log *logger.Logger, c cache.Cache) NewsRepository {
	return &newsRepository{
		httpClient: httpclient.New(cfg.News.BaseURL, cfg.News.Timeout, ""),
		cfg:        cfg,
		logger:     log,
		cache:      c,
		limiter:    ratelimit.NewTokenLimiter(cfg.News.MaxRequestPerMinute),
	}
}

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title string `xml:"title"`
		} `xml:"item"`
	} `xml:"channel"`
}

// GetHeadlines returns up to the configured number of recent headline titles
// for a company. An empty result is normal for thinly covered names and is
// not an error.
func (r *newsRepository) GetHeadlines(ctx context.Context, companyName string) ([]string, error) {
	cacheKey := fmt.Sprintf(common.KEY_STOCK_NEWS, companyName)
	if cached, ok := r.cache.Get(cacheKey); ok {
		if headlines, hok := cached.([]string); hok {
			return headlines, nil
		}
	}

	if err := r.limiter.Wait(ctx, 1); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"q":  fmt.Sprintf("%s stock", companyName),
		"hl": "en-IN",
		"gl": "IN",
	}

	resp, err := r.httpClient.Get(ctx, "", queryParams, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.WarnContext(ctx, "News feed returned non-OK status",
			logger.StringField("company", companyName),
			logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("news feed returned status: %d", resp.StatusCode)
	}

	var feed rssFeed
	if err := xml.Unmarshal(resp.Body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}

	headlines := make([]string, 0, r.cfg.News.MaxHeadlines)
	for _, item := range feed.Channel.Items {
		if item.Title == "" {
			continue
		}
		headlines = append(headlines, item.Title)
		if len(headlines) >= r.cfg.News.MaxHeadlines {
			break
		}
	}

	r.cache.Set(cacheKey, headlines, r.cfg.Cache.DefaultExpiration)
	return headlines, nil
}
