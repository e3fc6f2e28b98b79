package common

const (
	KEY_STOCK_HISTORY      = "stock_history:%s:%s"
	KEY_STOCK_FUNDAMENTALS = "stock_fundamentals:%s"
	KEY_STOCK_NEWS         = "stock_news:%s"
	KEY_EQUITY_UNIVERSE    = "equity_universe"
)

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)
