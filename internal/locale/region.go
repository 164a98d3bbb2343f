package locale

import (
	"strings"

	"github.com/AnasZiaf26/Zapit/internal/domain"
)

// zoneRegions maps IANA timezones to the region whose catalog applies
var zoneRegions = map[string]domain.Region{
	"Asia/Qatar":          "QA",
	"Asia/Riyadh":         "SA",
	"Asia/Dubai":          "AE",
	"Asia/Kuwait":         "KW",
	"Asia/Bahrain":        "BH",
	"Asia/Muscat":         "OM",
	"Asia/Amman":          "JO",
	"Asia/Beirut":         "LB",
	"Africa/Cairo":        "EG",
	"Africa/Casablanca":   "MA",
	"Africa/Algiers":      "DZ",
	"Africa/Tunis":        "TN",
	"Europe/Paris":        "FR",
	"Europe/Brussels":     "BE",
	"Europe/Luxembourg":   "LU",
	"Europe/Zurich":       "CH",
	"Europe/London":       "GB",
	"Europe/Berlin":       "DE",
	"Europe/Madrid":       "ES",
	"Europe/Rome":         "IT",
	"America/Toronto":     "CA",
	"America/Montreal":    "CA",
	"America/Vancouver":   "CA",
	"America/New_York":    "US",
	"America/Chicago":     "US",
	"America/Denver":      "US",
	"America/Phoenix":     "US",
	"America/Los_Angeles": "US",
	"America/Anchorage":   "US",
	"Pacific/Honolulu":    "US",
}

// ResolveRegion matches an IANA timezone against the known-region table,
// else returns def
func ResolveRegion(tzHint string, def domain.Region) domain.Region {
	if r, ok := zoneRegions[strings.TrimSpace(tzHint)]; ok {
		return r
	}
	return def
}

// FallbackChain returns the availability lookup order for a session region:
// the region itself, then the fallbacks, with duplicates removed
func FallbackChain(session domain.Region, fallbacks []domain.Region) []domain.Region {
	chain := make([]domain.Region, 0, len(fallbacks)+1)
	seen := make(map[domain.Region]bool, len(fallbacks)+1)
	for _, r := range append([]domain.Region{session}, fallbacks...) {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		chain = append(chain, r)
	}
	return chain
}
