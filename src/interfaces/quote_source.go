package interfaces

import "astock-collector/src/models"

// -----------------------------------------------------------------------------
// IQuoteSource defines the contract for the upstream quote provider.
// -----------------------------------------------------------------------------

type IQuoteSource interface {

	// -----------------------------------------------------------------------------

	// FetchMasterList pages the full security list until the provider returns
	// an empty page. A transport error aborts the whole pull.
	FetchMasterList() ([]models.MMasterRecord, error)

	// -----------------------------------------------------------------------------

	// FetchRealtimeQuote returns one descaled realtime snapshot.
	FetchRealtimeQuote(code string) (models.MRealtimeQuote, error)

	// -----------------------------------------------------------------------------

	// FetchDailyHistory returns front-adjusted daily candles for a code
	// between beg and end (provider date bounds, e.g. "0" to "99999999").
	FetchDailyHistory(code, beg, end string) ([]models.MKlineRecord, error)
}
