package stores

import "strings"

var locationKeywords = []string{
	"near me", "nearby", "close by", "in my area", "around here",
	"where can i buy", "where to buy", "stores near", "shops near",
	"find stores", "locate stores", "store locator",
}

// knownProducts is matched in order, the first hit wins.
var knownProducts = []string{
	"kitkat", "kit kat", "smarties", "quality street", "coffee crisp", "aero", "butterfinger",
}

func IsLocationQuery(message string) bool {
	lower := strings.ToLower(message)
	for _, k := range locationKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// ExtractProduct returns the lower cased product mentioned in message or ""
// when none of the known products is named.
func ExtractProduct(message string) string {
	lower := strings.ToLower(message)
	for _, p := range knownProducts {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return ""
}
