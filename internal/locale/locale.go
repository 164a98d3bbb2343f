// Package locale derives the content language and availability region of a
// session from environment hints.
package locale

import (
	"os"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/AnasZiaf26/Zapit/internal/config"
	"github.com/AnasZiaf26/Zapit/internal/domain"
)

// upstreamTags are the language parameters the catalog has the best coverage for
var upstreamTags = map[string]string{
	"ar": "ar-SA",
	"fr": "fr-FR",
	"en": "en-US",
}

// ResolveLocale picks the first supported language whose base matches the
// hint, else def. The hint may be POSIX ("fr_FR.UTF-8") or BCP-47 ("fr-CA").
func ResolveLocale(hint string, supported []string, def string) domain.Locale {
	lang := def
	if base, ok := baseLanguage(hint); ok {
		for _, s := range supported {
			if strings.EqualFold(s, base) {
				lang = strings.ToLower(s)
				break
			}
		}
	}
	return domain.Locale{Language: lang, Tag: Tag(lang)}
}

// baseLanguage returns the ISO 639 base of a locale hint
func baseLanguage(hint string) (string, bool) {
	hint = strings.TrimSpace(hint)
	if i := strings.IndexAny(hint, ".@"); i >= 0 {
		hint = hint[:i]
	}
	hint = strings.ReplaceAll(hint, "_", "-")
	if hint == "" || hint == "C" || hint == "POSIX" {
		return "", false
	}

	tag, err := language.Parse(hint)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	return base.String(), true
}

// Tag returns the upstream language parameter for a base language
func Tag(lang string) string {
	if t, ok := upstreamTags[lang]; ok {
		return t
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf == language.No {
		return base.String()
	}
	return base.String() + "-" + region.String()
}

// DisplayName returns the language's name in that language ("français")
func DisplayName(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return lang
}

// Policy applies the configured language and region settings
type Policy struct {
	Supported     []string
	Default       string
	Fallback      string
	DefaultRegion domain.Region
	PinRegion     domain.Region
	Fallbacks     []domain.Region
}

// NewPolicy builds a policy from configuration
func NewPolicy(lc config.LocaleConfig, rc config.RegionConfig) Policy {
	p := Policy{
		Supported:     lc.Supported,
		Default:       lc.Default,
		Fallback:      lc.Fallback,
		DefaultRegion: domain.Region(strings.ToUpper(rc.Default)),
		PinRegion:     domain.Region(strings.ToUpper(rc.Pin)),
	}
	for _, r := range rc.Fallbacks {
		p.Fallbacks = append(p.Fallbacks, domain.Region(strings.ToUpper(r)))
	}
	return p
}

// Locale resolves a language hint, filling in the fallback language
func (p Policy) Locale(hint string) domain.Locale {
	loc := ResolveLocale(hint, p.Supported, p.Default)
	loc.Fallback = p.Fallback
	return loc
}

// Region resolves the session region from a timezone hint unless pinned
func (p Policy) Region(tzHint string) domain.Region {
	if p.PinRegion != "" {
		return p.PinRegion
	}
	return ResolveRegion(tzHint, p.DefaultRegion)
}

// Hints reads the language and timezone hints from the environment
func Hints() (lang, tz string) {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			lang = v
			break
		}
	}

	tz = os.Getenv("TZ")
	if tz == "" {
		tz = time.Local.String()
	}
	tz = strings.TrimPrefix(tz, ":")
	return lang, tz
}
