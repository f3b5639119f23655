package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"astock-collector/src/logger"
	"astock-collector/src/models"
	"astock-collector/src/storage"
	"astock-collector/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Stubs
// -----------------------------------------------------------------------------

type stubSource struct {
	quotes  map[string]models.MRealtimeQuote
	history []models.MKlineRecord
	err     error
}

func (s *stubSource) FetchMasterList() ([]models.MMasterRecord, error) {
	return nil, s.err
}

func (s *stubSource) FetchRealtimeQuote(code string) (models.MRealtimeQuote, error) {
	if s.err != nil {
		return models.MRealtimeQuote{}, s.err
	}
	return s.quotes[code], nil
}

func (s *stubSource) FetchDailyHistory(code, beg, end string) ([]models.MKlineRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.history, nil
}

// -----------------------------------------------------------------------------
// Test Harness
// -----------------------------------------------------------------------------

type apiResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, source *stubSource) (*FacadeServer, *storage.SQLiteDB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &models.MConfig{
		Name:     "test",
		Host:     "127.0.0.1",
		Port:     8880,
		LogLevel: "ERROR",
		Storage: models.MStorageConfig{
			DBType: "sqlite",
			DBPath: filepath.Join(t.TempDir(), "test.db"),
		},
		Market: models.MMarketConfig{UTCOffsetHours: 8},
	}

	log := logger.NewLogger("ERROR", "test")
	db, err := storage.NewSQLiteDB(cfg, log)
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })

	srv := NewFacadeServer(cfg, log, db, source, utils.NewTradingCalendar(8))
	go srv.handleWebsockets()
	return srv, db
}

func doGet(t *testing.T, srv *FacadeServer, path string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var body apiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

// Wednesday 10:00 and Saturday 10:00, exchange-local.
var (
	inSessionClock  = func() time.Time { return time.Date(2024, 1, 3, 10, 0, 0, 0, utils.ExchangeZone(8)) }
	offSessionClock = func() time.Time { return time.Date(2024, 1, 6, 10, 0, 0, 0, utils.ExchangeZone(8)) }
)

// -----------------------------------------------------------------------------
// Quotes
// -----------------------------------------------------------------------------

func TestGetQuotesMissingParam(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{})

	w, body := doGet(t, srv, "/api/quotes")
	assert.Equal(t, 400, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "codes required", body.Error)
}

func TestGetQuotesPersistsDuringSession(t *testing.T) {
	source := &stubSource{quotes: map[string]models.MRealtimeQuote{
		"600000": {Code: "600000", Name: "浦发银行", Last: 12.34, PreClose: 12.00},
	}}
	srv, db := newTestServer(t, source)
	srv.now = inSessionClock

	w, body := doGet(t, srv, "/api/quotes?codes=600000")
	require.Equal(t, 200, w.Code)
	assert.True(t, body.Success)

	var quotes []models.MRealtimeQuote
	require.NoError(t, json.Unmarshal(body.Data, &quotes))
	require.Len(t, quotes, 1)
	assert.Equal(t, 12.34, quotes[0].Last)

	rows, err := db.MasterByCodes([]string{"600000"})
	require.NoError(t, err)
	require.Len(t, rows, 1, "in-session quotes are written through to the master table")
	assert.Equal(t, 12.34, rows[0].Last)
}

func TestGetQuotesReadOnlyOffSession(t *testing.T) {
	source := &stubSource{quotes: map[string]models.MRealtimeQuote{
		"600000": {Code: "600000", Last: 12.34},
	}}
	srv, db := newTestServer(t, source)
	srv.now = offSessionClock

	w, body := doGet(t, srv, "/api/quotes?codes=600000")
	require.Equal(t, 200, w.Code)
	assert.True(t, body.Success)

	rows, err := db.MasterByCodes([]string{"600000"})
	require.NoError(t, err)
	assert.Empty(t, rows, "off-session quotes are returned but not persisted")
}

func TestGetQuotesUpstreamFailure(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{err: errors.New("bad status: 502")})

	w, body := doGet(t, srv, "/api/quotes?codes=600000")
	assert.Equal(t, 500, w.Code)
	assert.False(t, body.Success)
	assert.Contains(t, body.Error, "bad status")
}

// -----------------------------------------------------------------------------
// History
// -----------------------------------------------------------------------------

func TestGetHistoryMissingParam(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{})

	w, body := doGet(t, srv, "/api/history")
	assert.Equal(t, 400, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "code required", body.Error)
}

func TestGetHistoryPersistsAndTails(t *testing.T) {
	source := &stubSource{history: []models.MKlineRecord{
		{Date: "2024-01-02", Close: 1.0},
		{Date: "2024-01-03", Close: 2.0},
		{Date: "2024-01-04", Close: 3.0},
	}}
	srv, db := newTestServer(t, source)

	w, body := doGet(t, srv, "/api/history?code=000001&days=2")
	require.Equal(t, 200, w.Code)
	assert.True(t, body.Success)

	var candles []models.MKlineRecord
	require.NoError(t, json.Unmarshal(body.Data, &candles))
	require.Len(t, candles, 2)
	assert.Equal(t, "2024-01-03", candles[0].Date)
	assert.Equal(t, "2024-01-04", candles[1].Date)

	stored, err := db.KlineHistory("000001", 0)
	require.NoError(t, err)
	assert.Len(t, stored, 3, "the full fetch is persisted, the tail is returned")
}

func TestGetHistoryEmptyResult(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{history: []models.MKlineRecord{}})

	w, body := doGet(t, srv, "/api/history?code=000001")
	require.Equal(t, 200, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "[]", string(body.Data), "empty upstream history is a success with an empty collection")
}

func TestGetHistoryUpstreamFailure(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{err: errors.New("bad status: 500")})

	w, body := doGet(t, srv, "/api/history?code=000001")
	assert.Equal(t, 500, w.Code)
	assert.False(t, body.Success)
}

// -----------------------------------------------------------------------------
// Master / Health
// -----------------------------------------------------------------------------

func TestGetMasterSnapshot(t *testing.T) {
	srv, db := newTestServer(t, &stubSource{})

	w, body := doGet(t, srv, "/api/master")
	require.Equal(t, 200, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "[]", string(body.Data))

	require.NoError(t, db.UpsertMaster([]models.MMasterRecord{{Code: "600000", Name: "浦发银行"}}))

	w, body = doGet(t, srv, "/api/master")
	require.Equal(t, 200, w.Code)

	var records []models.MMasterRecord
	require.NoError(t, json.Unmarshal(body.Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "600000", records[0].Code)
}

func TestGetHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{})
	srv.now = inSessionClock

	req, err := http.NewRequest("GET", "/api/health", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, true, health["in_session"])
}
