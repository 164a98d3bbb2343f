package availability

import (
	"net/url"
	"strings"

	"github.com/AnasZiaf26/Zapit/internal/domain"
)

// DeepLink returns the best guess URL to watch title on a provider
func DeepLink(providerName, title string) string {
	name := strings.ToLower(providerName)
	t := encodeComponent(title)

	switch {
	case strings.Contains(name, "netflix"):
		return "https://www.netflix.com/search?q=" + t
	case strings.Contains(name, "disney"):
		return "https://www.disneyplus.com"
	case strings.Contains(name, "amazon"), strings.Contains(name, "prime"):
		return "https://www.primevideo.com/search/?phrase=" + t
	case strings.Contains(name, "apple"):
		return "https://tv.apple.com/search?term=" + t
	default:
		return "https://www.google.com/search?q=" + t + "+watch+on+" + encodeComponent(providerName) + "&btnI=I"
	}
}

// Links pairs the subscription providers of a record with their deep links
func Links(rec *domain.AvailabilityRecord, title string) []domain.WatchLink {
	providers := rec.Flatrate()
	links := make([]domain.WatchLink, 0, len(providers))
	for _, p := range providers {
		links = append(links, domain.WatchLink{Provider: p, URL: DeepLink(p.Name, title)})
	}
	return links
}

// encodeComponent escapes s for a query value, spaces as %20
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
