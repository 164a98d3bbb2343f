package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnasZiaf26/Zapit/internal/domain"
)

func TestDeepLink(t *testing.T) {
	tests := []struct {
		provider string
		title    string
		want     string
	}{
		{"Netflix", "La Casa de Papel", "https://www.netflix.com/search?q=La%20Casa%20de%20Papel"},
		{"Netflix basic with Ads", "Dark", "https://www.netflix.com/search?q=Dark"},
		{"Disney Plus", "Loki", "https://www.disneyplus.com"},
		{"Amazon Prime Video", "The Boys", "https://www.primevideo.com/search/?phrase=The%20Boys"},
		{"Prime Video", "Fallout", "https://www.primevideo.com/search/?phrase=Fallout"},
		{"Apple TV Plus", "Severance", "https://tv.apple.com/search?term=Severance"},
		{"OSN+", "Tom & Jerry", "https://www.google.com/search?q=Tom%20%26%20Jerry+watch+on+OSN%2B&btnI=I"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			assert.Equal(t, tt.want, DeepLink(tt.provider, tt.title))
		})
	}
}

func TestLinks_FlatrateOnly(t *testing.T) {
	rec := &domain.AvailabilityRecord{
		Region: "FR",
		Providers: []domain.Provider{
			{Name: "Netflix", Monetization: domain.MonetizationFlatrate},
			{Name: "Apple TV", Monetization: domain.MonetizationBuy},
			{Name: "Canal+", Monetization: domain.MonetizationFlatrate},
		},
	}

	links := Links(rec, "Lupin")
	assert.Len(t, links, 2)
	assert.Equal(t, "https://www.netflix.com/search?q=Lupin", links[0].URL)
	assert.Equal(t, "Canal+", links[1].Provider.Name)

	assert.Empty(t, Links(nil, "Lupin"))
}
