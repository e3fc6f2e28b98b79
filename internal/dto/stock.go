package dto

import "time"

// StockInfo identifies one listed equity in the scan universe.
type StockInfo struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// PricePoint is one trading day. The indicator engine enriches points in
// place with derived fields; SMA values stay nil until their window fills,
// which is not the same thing as zero.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`

	RSI      float64  `json:"rsi,omitempty"`
	SMA50    *float64 `json:"sma_50,omitempty"`
	SMA200   *float64 `json:"sma_200,omitempty"`
	MACDDiff float64  `json:"macd_diff,omitempty"`
}

// PriceSeries is chronological, one point per trading day.
type PriceSeries []PricePoint

func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}
	return closes
}

func (s PriceSeries) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

type GetStockHistoryParam struct {
	Ticker string
	Period string
}
