package utils

import "strings"

// -----------------------------------------------------------------------------

// ToSecurityID converts a 6-digit code to the provider's composite security
// id. Codes starting with "6" are Shanghai-listed (market 1), everything
// else maps to Shenzhen (market 0). The code is passed through unvalidated.
func ToSecurityID(code string) string {
	code = strings.TrimSpace(code)
	if strings.HasPrefix(code, "6") {
		return "1." + code
	}
	return "0." + code
}

// -----------------------------------------------------------------------------

// InferMarketFlag applies the same prefix rule and returns 1 for Shanghai,
// 0 otherwise.
func InferMarketFlag(code string) int {
	if strings.HasPrefix(strings.TrimSpace(code), "6") {
		return 1
	}
	return 0
}
