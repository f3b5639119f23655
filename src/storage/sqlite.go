package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"astock-collector/src/logger"
	"astock-collector/src/models"
	"astock-collector/src/utils"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

const timestampLayout = "2006-01-02 15:04:05"

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

// createTables is idempotent: ingestion never drops or deletes rows, so the
// schema is created only if absent.
func (d *SQLiteDB) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS a_stock_master (
			code TEXT PRIMARY KEY,
			market_id INTEGER,
			name TEXT,
			last REAL,
			chg_pct REAL,
			chg REAL,
			volume REAL,
			amount REAL,
			high REAL,
			low REAL,
			open REAL,
			pre_close REAL,
			total_mv REAL,
			float_mv REAL,
			pe_dynamic REAL,
			pb REAL,
			last_updated TEXT
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create a_stock_master: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS a_stock_kline_daily (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT,
			date TEXT,
			open REAL,
			close REAL,
			high REAL,
			low REAL,
			volume REAL,
			amount REAL
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create a_stock_kline_daily: %w", err)
	}

	query = `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_kline_code_date
		ON a_stock_kline_daily(code, date);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create idx_kline_code_date: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// UpsertMaster fully replaces every column of each row, keyed on code. The
// whole batch runs in one transaction.
func (d *SQLiteDB) UpsertMaster(records []models.MMasterRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC().Format(timestampLayout)

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO a_stock_master (
			code, market_id, name, last, chg_pct, chg, volume, amount, high, low,
			open, pre_close, total_mv, float_mv, pe_dynamic, pb, last_updated
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			market_id=excluded.market_id,
			name=excluded.name,
			last=excluded.last,
			chg_pct=excluded.chg_pct,
			chg=excluded.chg,
			volume=excluded.volume,
			amount=excluded.amount,
			high=excluded.high,
			low=excluded.low,
			open=excluded.open,
			pre_close=excluded.pre_close,
			total_mv=excluded.total_mv,
			float_mv=excluded.float_mv,
			pe_dynamic=excluded.pe_dynamic,
			pb=excluded.pb,
			last_updated=excluded.last_updated
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.Code, r.MarketID, r.Name, r.Last, r.ChgPct, r.Chg, r.Volume,
			r.Amount, r.High, r.Low, r.Open, r.PreClose, r.TotalMV, r.FloatMV,
			r.PEDynamic, r.PB, now,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// RefreshRealtimeFields patches only the price-derived columns of an existing
// row, leaving name and fundamentals untouched. When the code is absent it
// inserts a row with the inferred market flag and zeroed fundamentals. The
// two statements are explicit (update then conditional insert) so the logic
// stays portable across engines.
//
// chg_pct is written as 0: the realtime payload carries no provider-computed
// percent and the next full master pull restores it.
func (d *SQLiteDB) RefreshRealtimeFields(code string, quote models.MRealtimeQuote) error {
	now := time.Now().UTC().Format(timestampLayout)
	chg := quote.Last - quote.PreClose

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE a_stock_master SET
			last = ?, chg_pct = 0, chg = ?, volume = ?, high = ?, low = ?,
			open = ?, pre_close = ?, last_updated = ?
		WHERE code = ?
	`, quote.Last, chg, quote.Volume, quote.High, quote.Low, quote.Open,
		quote.PreClose, now, code)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		_, err = tx.Exec(`
			INSERT INTO a_stock_master (
				code, market_id, name, last, chg_pct, chg, volume, amount, high,
				low, open, pre_close, total_mv, float_mv, pe_dynamic, pb, last_updated
			)
			VALUES (?, ?, ?, ?, 0, ?, ?, 0, ?, ?, ?, ?, 0, 0, 0, 0, ?)
		`, code, utils.InferMarketFlag(code), quote.Name, quote.Last, chg,
			quote.Volume, quote.High, quote.Low, quote.Open, quote.PreClose, now)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// UpsertKline inserts or replaces candles keyed on (code, date) in one
// transaction.
func (d *SQLiteDB) UpsertKline(code string, records []models.MKlineRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO a_stock_kline_daily (code, date, open, close, high, low, volume, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code, date) DO UPDATE SET
			open=excluded.open,
			close=excluded.close,
			high=excluded.high,
			low=excluded.low,
			volume=excluded.volume,
			amount=excluded.amount
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(code, r.Date, r.Open, r.Close, r.High, r.Low, r.Volume, r.Amount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

const masterColumns = `
	code, market_id, name, last, chg_pct, chg, volume, amount, high, low,
	open, pre_close, total_mv, float_mv, pe_dynamic, pb, last_updated
`

func scanMasterRows(rows *sql.Rows) ([]models.MMasterRecord, error) {
	records := []models.MMasterRecord{}
	for rows.Next() {
		var r models.MMasterRecord
		err := rows.Scan(
			&r.Code, &r.MarketID, &r.Name, &r.Last, &r.ChgPct, &r.Chg,
			&r.Volume, &r.Amount, &r.High, &r.Low, &r.Open, &r.PreClose,
			&r.TotalMV, &r.FloatMV, &r.PEDynamic, &r.PB, &r.LastUpdated,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) MasterSnapshot() ([]models.MMasterRecord, error) {
	rows, err := d.DB.Query(`SELECT ` + masterColumns + ` FROM a_stock_master ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMasterRows(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) MasterByCodes(codes []string) ([]models.MMasterRecord, error) {
	if len(codes) == 0 {
		return []models.MMasterRecord{}, nil
	}

	placeholders := strings.Repeat("?,", len(codes))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(codes))
	for i, c := range codes {
		args[i] = c
	}

	query := `SELECT ` + masterColumns + ` FROM a_stock_master WHERE code IN (` + placeholders + `) ORDER BY code`
	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMasterRows(rows)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) ListCodes(limit int) ([]string, error) {
	rows, err := d.DB.Query(`SELECT code FROM a_stock_master ORDER BY code LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) KlineHistory(code string, limit int) ([]models.MKlineRecord, error) {
	query := `
		SELECT date, open, close, high, low, volume, amount
		FROM a_stock_kline_daily WHERE code = ? ORDER BY date DESC
	`
	args := []interface{}{code}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.MKlineRecord{}
	for rows.Next() {
		var r models.MKlineRecord
		if err := rows.Scan(&r.Date, &r.Open, &r.Close, &r.High, &r.Low, &r.Volume, &r.Amount); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows were read newest-first; callers expect ascending dates.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
