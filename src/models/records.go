package models

// -----------------------------------------------------------------------------
// Record Models
// -----------------------------------------------------------------------------

// MMasterRecord is one row of the a_stock_master table: identity plus the
// latest price and fundamental fields for a single security code.
type MMasterRecord struct {
	Code        string  `json:"code"`
	MarketID    int     `json:"market_id"`
	Name        string  `json:"name"`
	Last        float64 `json:"last"`
	ChgPct      float64 `json:"chg_pct"`
	Chg         float64 `json:"chg"`
	Volume      float64 `json:"volume"`
	Amount      float64 `json:"amount"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Open        float64 `json:"open"`
	PreClose    float64 `json:"pre_close"`
	TotalMV     float64 `json:"total_mv"`
	FloatMV     float64 `json:"float_mv"`
	PEDynamic   float64 `json:"pe_dynamic"`
	PB          float64 `json:"pb"`
	LastUpdated string  `json:"last_updated"`
}

// -----------------------------------------------------------------------------

// MRealtimeQuote is a transient single-security snapshot. Price-class fields
// are already descaled (the provider ships them multiplied by 100).
type MRealtimeQuote struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Last         float64 `json:"last"`
	PreClose     float64 `json:"pre_close"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Open         float64 `json:"open"`
	Volume       float64 `json:"volume"`
	AvgPrice     float64 `json:"avg_price"`
	TurnoverRate float64 `json:"turnover_rate"`
	VolumeRatio  float64 `json:"volume_ratio"`
}

// -----------------------------------------------------------------------------

// MKlineRecord is one daily front-adjusted candle, unique per (code, date).
type MKlineRecord struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume float64 `json:"volume"`
	Amount float64 `json:"amount"`
}

// -----------------------------------------------------------------------------

// MQuoteUpdate is the payload pushed to websocket clients after a realtime
// refresh pass.
type MQuoteUpdate struct {
	Type      string           `json:"type"`
	Quotes    []MRealtimeQuote `json:"quotes"`
	Timestamp int64            `json:"timestamp"`
}
