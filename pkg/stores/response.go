package stores

import (
	"fmt"
	"strings"
)

const callAheadTip = "💡 *Tip: Call ahead to confirm product availability.*"

// FormatStoreResponse renders the chat answer for a product lookup.
func FormatStoreResponse(productName string, ranked []RankedStore) string {
	if len(ranked) == 0 {
		return fmt.Sprintf("I couldn't find any nearby stores carrying %s. You might want to check online retailers or call local stores directly.", productName)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Here are nearby stores where you can find %s:\n\n", productName)
	for i, s := range ranked {
		fmt.Fprintf(&sb, "%d. **%s**\n", i+1, s.Name)
		fmt.Fprintf(&sb, "   📍 %s\n", s.Address)
		fmt.Fprintf(&sb, "   📞 %s\n", s.Phone)
		fmt.Fprintf(&sb, "   🕒 Hours: %s\n", s.Hours)
		fmt.Fprintf(&sb, "   📏 Distance: %s\n\n", s.DistanceText)
	}
	sb.WriteString(callAheadTip)
	return sb.String()
}

// FormatNearbyResponse is used when the question names no product.
func FormatNearbyResponse(ranked []RankedStore) string {
	return FormatStoreResponse("Nestlé products", ranked)
}

const EnableLocationPrompt = "📍 I can help you find nearby stores, but I need your location first. Enable location sharing or mention your postal code and ask again."
