package domain

// Monetization is how a provider offers a title
type Monetization string

const (
	MonetizationFlatrate   Monetization = "flatrate"
	MonetizationRent       Monetization = "rent"
	MonetizationBuy        Monetization = "buy"
	MonetizationAds        Monetization = "ads"
	MonetizationFree       Monetization = "free"
	MonetizationTheatrical Monetization = "theatrical"
)

// Provider is one way to watch a title in a region
type Provider struct {
	ID              int
	Name            string
	LogoPath        string
	Monetization    Monetization
	DisplayPriority int
}

// RegionProviders is the availability for a single region as returned upstream
type RegionProviders struct {
	Link      string
	Providers []Provider
}

// Empty reports whether the region lists no provider at all
func (r RegionProviders) Empty() bool {
	return len(r.Providers) == 0
}

// AvailabilityRecord is the resolved "where to watch" answer for one title
type AvailabilityRecord struct {
	TitleID   int
	Kind      MediaKind
	Region    Region // Region the record was taken from
	Link      string
	Providers []Provider
}

// Flatrate returns the subscription providers, in upstream display order
func (r *AvailabilityRecord) Flatrate() []Provider {
	return r.ByMonetization(MonetizationFlatrate)
}

// ByMonetization returns providers offering the title the given way
func (r *AvailabilityRecord) ByMonetization(m Monetization) []Provider {
	if r == nil {
		return nil
	}
	var out []Provider
	for _, p := range r.Providers {
		if p.Monetization == m {
			out = append(out, p)
		}
	}
	return out
}

// WatchLink is a provider paired with its synthesized deep link
type WatchLink struct {
	Provider Provider
	URL      string
}
