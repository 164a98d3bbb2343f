package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnasZiaf26/Zapit/internal/config"
	"github.com/AnasZiaf26/Zapit/internal/domain"
)

var supported = []string{"ar", "fr", "en"}

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		hint string
		want domain.Locale
	}{
		{"fr_FR.UTF-8", domain.Locale{Language: "fr", Tag: "fr-FR"}},
		{"fr-CA", domain.Locale{Language: "fr", Tag: "fr-FR"}},
		{"en_GB", domain.Locale{Language: "en", Tag: "en-US"}},
		{"ar_QA.UTF-8@latin", domain.Locale{Language: "ar", Tag: "ar-SA"}},
		{"de_DE.UTF-8", domain.Locale{Language: "ar", Tag: "ar-SA"}},
		{"C", domain.Locale{Language: "ar", Tag: "ar-SA"}},
		{"", domain.Locale{Language: "ar", Tag: "ar-SA"}},
		{"not a locale", domain.Locale{Language: "ar", Tag: "ar-SA"}},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			got := ResolveLocale(tt.hint, supported, "ar")
			assert.Equal(t, tt.want, got)
			assert.Contains(t, supported, got.Language)
		})
	}
}

func TestTag(t *testing.T) {
	assert.Equal(t, "ar-SA", Tag("ar"))
	assert.Equal(t, "fr-FR", Tag("fr"))
	assert.Equal(t, "en-US", Tag("en"))
	assert.Equal(t, "de-DE", Tag("de"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "français", DisplayName("fr"))
	assert.Equal(t, "English", DisplayName("en"))
	assert.Equal(t, "??", DisplayName("??"))
}

func TestResolveRegion(t *testing.T) {
	assert.Equal(t, domain.Region("QA"), ResolveRegion("Asia/Qatar", "US"))
	assert.Equal(t, domain.Region("FR"), ResolveRegion("Europe/Paris", "US"))
	assert.Equal(t, domain.Region("US"), ResolveRegion("Antarctica/Troll", "US"))
	assert.Equal(t, domain.Region("US"), ResolveRegion("", "US"))
}

func TestPolicy(t *testing.T) {
	p := NewPolicy(
		config.LocaleConfig{Supported: supported, Default: "ar", Fallback: "en"},
		config.RegionConfig{Default: "us", Fallbacks: []string{"fr", "us"}},
	)

	loc := p.Locale("fr_BE.UTF-8")
	assert.Equal(t, domain.Locale{Language: "fr", Fallback: "en", Tag: "fr-FR"}, loc)
	assert.Equal(t, domain.Region("QA"), p.Region("Asia/Qatar"))
	assert.Equal(t, domain.Region("US"), p.Region("Etc/UTC"))
	assert.Equal(t, []domain.Region{"FR", "US"}, p.Fallbacks)

	p.PinRegion = "MA"
	assert.Equal(t, domain.Region("MA"), p.Region("Asia/Qatar"))
}

func TestPolicy_Defaults(t *testing.T) {
	d := config.DefaultConfig()
	p := NewPolicy(d.Locale, d.Region)

	region := p.Region("Antarctica/Troll")
	assert.Equal(t, domain.Region("QA"), region)
	assert.Equal(t, []domain.Region{"QA", "FR", "US"}, FallbackChain(region, p.Fallbacks))
	assert.Equal(t, domain.Region("QA"), p.Region(""))
}

func TestFallbackChain(t *testing.T) {
	fb := []domain.Region{"FR", "US"}
	assert.Equal(t, []domain.Region{"QA", "FR", "US"}, FallbackChain("QA", fb))
	assert.Equal(t, []domain.Region{"FR", "US"}, FallbackChain("FR", fb))
	assert.Equal(t, []domain.Region{"US", "FR"}, FallbackChain("US", []domain.Region{"FR", "US", "FR"}))
	assert.Equal(t, []domain.Region{"FR", "US"}, FallbackChain("", fb))
}

func TestHints(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "fr_FR.UTF-8")
	t.Setenv("TZ", ":Europe/Paris")

	lang, tz := Hints()
	assert.Equal(t, "fr_FR.UTF-8", lang)
	assert.Equal(t, "Europe/Paris", tz)
}
