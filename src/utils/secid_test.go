package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSecurityID(t *testing.T) {
	assert.Equal(t, "1.600000", ToSecurityID("600000"))
	assert.Equal(t, "0.000001", ToSecurityID("000001"))
	assert.Equal(t, "0.300750", ToSecurityID("300750"))
	assert.Equal(t, "1.688981", ToSecurityID("688981"))

	// Codes are trusted input: no length or charset validation.
	assert.Equal(t, "1.6", ToSecurityID("6"))
	assert.Equal(t, "0.", ToSecurityID(""))
}

func TestInferMarketFlag(t *testing.T) {
	assert.Equal(t, 1, InferMarketFlag("600000"))
	assert.Equal(t, 1, InferMarketFlag("688981"))
	assert.Equal(t, 0, InferMarketFlag("000001"))
	assert.Equal(t, 0, InferMarketFlag("300750"))
	assert.Equal(t, 0, InferMarketFlag(""))
}
