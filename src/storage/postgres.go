package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"astock-collector/src/logger"
	"astock-collector/src/models"
	"astock-collector/src/utils"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// PostgresDB mirrors the SQLite backend on Postgres. Same tables, same upsert
// semantics; only placeholders and column types differ.
type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	return &PostgresDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db
	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS a_stock_master (
			code TEXT PRIMARY KEY,
			market_id INTEGER,
			name TEXT,
			last DOUBLE PRECISION,
			chg_pct DOUBLE PRECISION,
			chg DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			amount DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			open DOUBLE PRECISION,
			pre_close DOUBLE PRECISION,
			total_mv DOUBLE PRECISION,
			float_mv DOUBLE PRECISION,
			pe_dynamic DOUBLE PRECISION,
			pb DOUBLE PRECISION,
			last_updated TEXT
		)
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create a_stock_master: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS a_stock_kline_daily (
			id BIGSERIAL PRIMARY KEY,
			code TEXT,
			date TEXT,
			open DOUBLE PRECISION,
			close DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			amount DOUBLE PRECISION,
			UNIQUE (code, date)
		)
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create a_stock_kline_daily: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) UpsertMaster(records []models.MMasterRecord) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (code) DO UPDATE SET
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

func (d *PostgresDB) RefreshRealtimeFields(code string, quote models.MRealtimeQuote) error {
	now := time.Now().UTC().Format(timestampLayout)
	chg := quote.Last - quote.PreClose

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE a_stock_master SET
			last = $1, chg_pct = 0, chg = $2, volume = $3, high = $4, low = $5,
			open = $6, pre_close = $7, last_updated = $8
		WHERE code = $9
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
			VALUES ($1, $2, $3, $4, 0, $5, $6, 0, $7, $8, $9, $10, 0, 0, 0, 0, $11)
		`, code, utils.InferMarketFlag(code), quote.Name, quote.Last, chg,
			quote.Volume, quote.High, quote.Low, quote.Open, quote.PreClose, now)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) UpsertKline(code string, records []models.MKlineRecord) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code, date) DO UPDATE SET
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

func (d *PostgresDB) MasterSnapshot() ([]models.MMasterRecord, error) {
	rows, err := d.DB.Query(`SELECT ` + masterColumns + ` FROM a_stock_master ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMasterRows(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) MasterByCodes(codes []string) ([]models.MMasterRecord, error) {
	if len(codes) == 0 {
		return []models.MMasterRecord{}, nil
	}

	placeholders := make([]string, len(codes))
	args := make([]interface{}, len(codes))
	for i, c := range codes {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = c
	}

	query := `SELECT ` + masterColumns + ` FROM a_stock_master WHERE code IN (` +
		strings.Join(placeholders, ",") + `) ORDER BY code`
	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMasterRows(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) ListCodes(limit int) ([]string, error) {
	rows, err := d.DB.Query(`SELECT code FROM a_stock_master ORDER BY code LIMIT $1`, limit)
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

func (d *PostgresDB) KlineHistory(code string, limit int) ([]models.MKlineRecord, error) {
	query := `
		SELECT date, open, close, high, low, volume, amount
		FROM a_stock_kline_daily WHERE code = $1 ORDER BY date DESC
	`
	args := []interface{}{code}
	if limit > 0 {
		query += ` LIMIT $2`
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

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
