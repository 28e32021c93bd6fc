package stores

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatStoreResponseEmpty(t *testing.T) {
	got := FormatStoreResponse("Aero", nil)
	assert.Equal(t, "I couldn't find any nearby stores carrying Aero. You might want to check online retailers or call local stores directly.", got)
}

func TestFormatStoreResponse(t *testing.T) {
	ranked, err := FindWithProduct(mississauga, ReferenceStores(), "butterfinger", DefaultMaxDistanceKm, DefaultMaxResults)
	require.NoError(t, err)

	got := FormatStoreResponse("Butterfinger", ranked)
	assert.True(t, strings.HasPrefix(got, "Here are nearby stores where you can find Butterfinger:\n\n"))
	assert.Contains(t, got, "1. **Metro**\n")
	assert.Contains(t, got, "   📍 3045 Mavis Rd, Mississauga, ON L5B 4M6\n")
	assert.Contains(t, got, "   📏 Distance: 707m\n")
	assert.Contains(t, got, "2. **Walmart Supercentre**\n")
	assert.Contains(t, got, "   🕒 Hours: 7:00 AM - 11:00 PM\n")
	assert.True(t, strings.HasSuffix(got, callAheadTip))
}

func TestIsLocationQuery(t *testing.T) {
	assert.True(t, IsLocationQuery("Where can I buy KitKat nearby?"))
	assert.True(t, IsLocationQuery("any STORES NEAR the station"))
	assert.True(t, IsLocationQuery("open the store locator"))
	assert.False(t, IsLocationQuery("Tell me about the history of Smarties"))
}

func TestExtractProduct(t *testing.T) {
	assert.Equal(t, "kitkat", ExtractProduct("Where can I buy KitKat near me?"))
	assert.Equal(t, "kit kat", ExtractProduct("kit kat chunky"))
	assert.Equal(t, "quality street", ExtractProduct("Quality Street tins"))
	assert.Equal(t, "", ExtractProduct("stores near me"))
}
