package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log          Logger       `mapstructure:"logger"`
	DB           Database     `mapstructure:"database"`
	API          API          `mapstructure:"api"`
	Scheduler    Scheduler    `mapstructure:"scheduler"`
	Scan         Scan         `mapstructure:"scan"`
	YahooFinance YahooFinance `mapstructure:"yahoo_finance"`
	News         News         `mapstructure:"news"`
	Cache        Cache        `mapstructure:"cache"`
	Telegram     Telegram     `mapstructure:"telegram"`
	BigBets      BigBets      `mapstructure:"big_bets"`
	StateFile    string       `mapstructure:"state_file"`
	DataDir      string       `mapstructure:"data_dir"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Scheduler struct {
	DailyRunCron     string        `mapstructure:"daily_run_cron"`
	WatchdogInterval time.Duration `mapstructure:"watchdog_interval"`
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat_timeout"`
}

// Scan holds the scoring and allocation parameters of the daily pipeline.
type Scan struct {
	Weights         ScoreWeights  `mapstructure:"weights"`
	TopCandidates   int           `mapstructure:"top_candidates"`
	TopN            int           `mapstructure:"top_n"`
	MonthlyBudget   float64       `mapstructure:"monthly_budget"`
	HistoryPeriod   string        `mapstructure:"history_period"`
	LookbackDays    int           `mapstructure:"lookback_days"`
	ForecastHorizon int           `mapstructure:"forecast_horizon"`
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	BatchSize       int           `mapstructure:"batch_size"`
	EntityTimeout   time.Duration `mapstructure:"entity_timeout"`
}

type ScoreWeights struct {
	Technical   float64 `mapstructure:"technical"`
	Fundamental float64 `mapstructure:"fundamental"`
	Sentiment   float64 `mapstructure:"sentiment"`
	Forecast    float64 `mapstructure:"forecast"`
}

type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	QuoteSummaryURL     string        `mapstructure:"quote_summary_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type News struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxHeadlines        int           `mapstructure:"max_headlines"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Telegram struct {
	BotToken                  string `mapstructure:"bot_token"`
	ChatID                    int64  `mapstructure:"chat_id"`
	MaxGlobalRequestPerSecond int    `mapstructure:"max_global_request_per_second"`
	MaxChatRequestPerSecond   int    `mapstructure:"max_chat_request_per_second"`
}

type BigBets struct {
	MinTrainRows      int     `mapstructure:"min_train_rows"`
	MinPositiveLabels int     `mapstructure:"min_positive_labels"`
	DefaultAmount     float64 `mapstructure:"default_amount"`
}

func Load() (*Config, error) {
	// .env is optional; deployments usually rely on real environment variables.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("api.port", 8080)

	viper.SetDefault("scheduler.daily_run_cron", "30 3 * * 1-5")
	viper.SetDefault("scheduler.watchdog_interval", 5*time.Minute)
	viper.SetDefault("scheduler.heartbeat_timeout", 30*time.Minute)

	viper.SetDefault("scan.weights.technical", 0.4)
	viper.SetDefault("scan.weights.fundamental", 0.4)
	viper.SetDefault("scan.weights.sentiment", 0.2)
	viper.SetDefault("scan.weights.forecast", 0.2)
	viper.SetDefault("scan.top_candidates", 20)
	viper.SetDefault("scan.top_n", 10)
	viper.SetDefault("scan.monthly_budget", 50000)
	viper.SetDefault("scan.history_period", "2y")
	viper.SetDefault("scan.lookback_days", 60)
	viper.SetDefault("scan.forecast_horizon", 5)
	viper.SetDefault("scan.max_concurrency", 10)
	viper.SetDefault("scan.batch_size", 10)
	viper.SetDefault("scan.entity_timeout", 2*time.Minute)

	viper.SetDefault("yahoo_finance.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	viper.SetDefault("yahoo_finance.quote_summary_url", "https://query1.finance.yahoo.com/v10/finance/quoteSummary")
	viper.SetDefault("yahoo_finance.timeout", 30*time.Second)
	viper.SetDefault("yahoo_finance.max_request_per_minute", 60)

	viper.SetDefault("news.base_url", "https://news.google.com/rss/search")
	viper.SetDefault("news.timeout", 15*time.Second)
	viper.SetDefault("news.max_request_per_minute", 30)
	viper.SetDefault("news.max_headlines", 5)

	viper.SetDefault("cache.default_expiration", 6*time.Hour)
	viper.SetDefault("cache.cleanup_interval", 30*time.Minute)

	viper.SetDefault("telegram.max_global_request_per_second", 30)
	viper.SetDefault("telegram.max_chat_request_per_second", 1)

	viper.SetDefault("big_bets.min_train_rows", 20)
	viper.SetDefault("big_bets.min_positive_labels", 2)
	viper.SetDefault("big_bets.default_amount", 100000)

	viper.SetDefault("state_file", "data/pipeline_state.json")
	viper.SetDefault("data_dir", "data")
}
