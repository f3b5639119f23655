package interfaces

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for outbound HTTP calls.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// Get performs a single GET request with query parameters and returns the
	// response body. Non-2xx statuses and transport failures surface as
	// errors; there is no internal retry.
	Get(url string, params map[string]string) ([]byte, error)
}
