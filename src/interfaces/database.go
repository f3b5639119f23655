package interfaces

import "astock-collector/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// UpsertMaster inserts or fully replaces master rows keyed on code,
	// stamping last_updated. All rows of one call commit together.
	UpsertMaster(records []models.MMasterRecord) error

	// -----------------------------------------------------------------------------

	// RefreshRealtimeFields patches the price-derived fields of an existing
	// master row, or inserts a defaults row when the code is absent.
	// Name and fundamental columns are never touched on update.
	RefreshRealtimeFields(code string, quote models.MRealtimeQuote) error

	// -----------------------------------------------------------------------------

	// UpsertKline inserts or replaces daily candles keyed on (code, date).
	UpsertKline(code string, records []models.MKlineRecord) error

	// -----------------------------------------------------------------------------

	// MasterSnapshot returns every master row ordered by code.
	MasterSnapshot() ([]models.MMasterRecord, error)

	// -----------------------------------------------------------------------------

	// MasterByCodes returns the master rows for the given codes.
	MasterByCodes(codes []string) ([]models.MMasterRecord, error)

	// -----------------------------------------------------------------------------

	// ListCodes returns up to limit codes from the master table.
	ListCodes(limit int) ([]string, error)

	// -----------------------------------------------------------------------------

	// KlineHistory returns the most recent limit candles for a code in
	// ascending date order. limit <= 0 means no limit.
	KlineHistory(code string, limit int) ([]models.MKlineRecord, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
