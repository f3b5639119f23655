package eastmoney

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"astock-collector/src/interfaces"
	"astock-collector/src/logger"
	"astock-collector/src/models"
	"astock-collector/src/utils"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	// Provider field lists. clist returns the master-table columns, the
	// realtime endpoint the snapshot columns (price fields scaled x100).
	clistFields    = "f12,f13,f14,f2,f3,f4,f5,f6,f15,f16,f17,f18,f20,f21,f9,f23"
	realtimeFields = "f57,f58,f43,f60,f44,f45,f46,f47,f71,f168,f164"

	clistToken    = "bd1d9ddb04089700cf9c27f6f7426281"
	realtimeToken = "7eea3edcaed734bea9cbfc24409ed989"

	// A-share universe filter: SZ main/ChiNext + SH main/STAR.
	clistMarketFilter = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23"

	// Kline request bounds for "everything the provider has".
	BegEarliest = "0"
	EndLatest   = "99999999"
)

// priceScale descales the realtime price-class fields.
const priceScale = 100.0

// -----------------------------------------------------------------------------

type EastmoneySource struct {
	Config  *models.MConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewEastmoneySource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *EastmoneySource {
	return &EastmoneySource{
		Config:  cfg,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg.LogLevel, "EastmoneySource"),
	}
}

// -----------------------------------------------------------------------------
// Master List
// -----------------------------------------------------------------------------

// FetchMasterList pages the clist endpoint until lastPage reports end-of-data.
// Any transport error aborts the pull; pages already fetched are discarded so
// the caller either gets the full list or nothing.
func (s *EastmoneySource) FetchMasterList() ([]models.MMasterRecord, error) {
	var records []models.MMasterRecord

	for page := 1; ; page++ {
		items, err := s.fetchMasterPage(page)
		if err != nil {
			return nil, fmt.Errorf("master list page %d: %w", page, err)
		}
		if lastPage(items) {
			break
		}
		for _, item := range items {
			records = append(records, mapMasterItem(item))
		}
	}

	s.Logger.Info("Fetched master list: %d records", len(records))
	return records, nil
}

// -----------------------------------------------------------------------------

// lastPage is the explicit pagination-termination predicate: the provider
// signals end-of-data with an empty item set, not a count or cursor.
func lastPage(items []map[string]interface{}) bool {
	return len(items) == 0
}

// -----------------------------------------------------------------------------

func (s *EastmoneySource) fetchMasterPage(page int) ([]map[string]interface{}, error) {
	params := map[string]string{
		"pn":     strconv.Itoa(page),
		"pz":     strconv.Itoa(s.Config.Provider.PageSize),
		"po":     "1",
		"np":     "1",
		"ut":     clistToken,
		"fltt":   "2",
		"invt":   "2",
		"fid":    "f3",
		"fs":     clistMarketFilter,
		"fields": clistFields,
	}

	body, err := s.Network.Get(s.Config.Provider.ListURL, params)
	if err != nil {
		return nil, err
	}

	var env clistEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("clist envelope: %w", err)
	}
	if env.Data == nil {
		return nil, nil
	}
	return decodeDiff(env.Data.Diff)
}

// -----------------------------------------------------------------------------

func mapMasterItem(item map[string]interface{}) models.MMasterRecord {
	return models.MMasterRecord{
		Code:      utils.NormalizeString(item["f12"]),
		MarketID:  int(utils.NormalizeNumber(item["f13"])),
		Name:      utils.NormalizeString(item["f14"]),
		Last:      utils.NormalizeNumber(item["f2"]),
		ChgPct:    utils.NormalizeNumber(item["f3"]),
		Chg:       utils.NormalizeNumber(item["f4"]),
		Volume:    utils.NormalizeNumber(item["f5"]),
		Amount:    utils.NormalizeNumber(item["f6"]),
		High:      utils.NormalizeNumber(item["f15"]),
		Low:       utils.NormalizeNumber(item["f16"]),
		Open:      utils.NormalizeNumber(item["f17"]),
		PreClose:  utils.NormalizeNumber(item["f18"]),
		TotalMV:   utils.NormalizeNumber(item["f20"]),
		FloatMV:   utils.NormalizeNumber(item["f21"]),
		PEDynamic: utils.NormalizeNumber(item["f9"]),
		PB:        utils.NormalizeNumber(item["f23"]),
	}
}

// -----------------------------------------------------------------------------
// Realtime Snapshot
// -----------------------------------------------------------------------------

// FetchRealtimeQuote fetches one security and descales the five price-class
// fields; volume, turnover rate and volume ratio arrive unscaled.
func (s *EastmoneySource) FetchRealtimeQuote(code string) (models.MRealtimeQuote, error) {
	params := map[string]string{
		"secid":  utils.ToSecurityID(code),
		"fields": realtimeFields,
		"fltt":   "2",
		"invt":   "2",
		"ut":     realtimeToken,
	}

	body, err := s.Network.Get(s.Config.Provider.RealtimeURL, params)
	if err != nil {
		return models.MRealtimeQuote{}, fmt.Errorf("realtime quote %s: %w", code, err)
	}

	var env realtimeEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return models.MRealtimeQuote{}, fmt.Errorf("realtime envelope %s: %w", code, err)
	}
	data := env.Data

	p := func(field string, scale float64) float64 {
		return utils.NormalizeNumber(data[field]) / scale
	}

	quote := models.MRealtimeQuote{
		Code:         utils.NormalizeString(data["f57"]),
		Name:         utils.NormalizeString(data["f58"]),
		Last:         p("f43", priceScale),
		PreClose:     p("f60", priceScale),
		High:         p("f44", priceScale),
		Low:          p("f45", priceScale),
		Open:         p("f46", priceScale),
		Volume:       p("f47", 1),
		AvgPrice:     p("f71", priceScale),
		TurnoverRate: p("f168", 1),
		VolumeRatio:  p("f164", 1),
	}
	if quote.Code == "" {
		quote.Code = code
	}
	return quote, nil
}

// -----------------------------------------------------------------------------
// Daily History
// -----------------------------------------------------------------------------

// FetchDailyHistory fetches front-adjusted daily candles. Each candle is a
// comma-delimited line; lines with fewer than 7 fields are dropped.
func (s *EastmoneySource) FetchDailyHistory(code, beg, end string) ([]models.MKlineRecord, error) {
	params := map[string]string{
		"secid": utils.ToSecurityID(code),
		"klt":   "101",
		"fqt":   "1",
		"beg":   beg,
		"end":   end,
	}

	body, err := s.Network.Get(s.Config.Provider.KlineURL, params)
	if err != nil {
		return nil, fmt.Errorf("kline history %s: %w", code, err)
	}

	var env klineEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("kline envelope %s: %w", code, err)
	}

	records := []models.MKlineRecord{}
	if env.Data == nil {
		return records, nil
	}

	for _, row := range env.Data.Klines {
		// Row format: date,open,close,high,low,volume,amount,...
		parts := strings.Split(row, ",")
		if len(parts) < 7 {
			s.Logger.Debug("Skipping malformed kline row for %s: %q", code, row)
			continue
		}
		records = append(records, models.MKlineRecord{
			Date:   parts[0],
			Open:   utils.NormalizeNumber(parts[1]),
			Close:  utils.NormalizeNumber(parts[2]),
			High:   utils.NormalizeNumber(parts[3]),
			Low:    utils.NormalizeNumber(parts[4]),
			Volume: utils.NormalizeNumber(parts[5]),
			Amount: utils.NormalizeNumber(parts[6]),
		})
	}

	return records, nil
}
