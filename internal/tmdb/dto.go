package tmdb

import "encoding/json"

// Payload is a decoded upstream response envelope
type Payload struct {
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	Results    json.RawMessage `json:"results"` // List for catalog endpoints, region map for watch providers
	Genres     []GenreDTO      `json:"genres"`
}

// HasResults reports whether the payload carried a results value
func (p *Payload) HasResults() bool {
	return len(p.Results) > 0 && string(p.Results) != "null"
}

// ResultDTO is a catalog entry (movie, tv, or person for search)
type ResultDTO struct {
	ID           int     `json:"id"`
	MediaType    string  `json:"media_type,omitempty"`
	Title        string  `json:"title,omitempty"` // Movies
	Name         string  `json:"name,omitempty"`  // Series and people
	Overview     string  `json:"overview,omitempty"`
	PosterPath   string  `json:"poster_path,omitempty"`
	BackdropPath string  `json:"backdrop_path,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
	VoteAverage  float64 `json:"vote_average,omitempty"`
	GenreIDs     []int   `json:"genre_ids,omitempty"`
}

// GenreDTO is a genre list entry
type GenreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProviderDTO is one watch provider offer
type ProviderDTO struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	LogoPath        string `json:"logo_path,omitempty"`
	DisplayPriority int    `json:"display_priority"`
}

// RegionDTO is the availability of a title in one region
type RegionDTO struct {
	Link       string        `json:"link,omitempty"`
	Flatrate   []ProviderDTO `json:"flatrate,omitempty"`
	Free       []ProviderDTO `json:"free,omitempty"`
	Ads        []ProviderDTO `json:"ads,omitempty"`
	Rent       []ProviderDTO `json:"rent,omitempty"`
	Buy        []ProviderDTO `json:"buy,omitempty"`
	Theatrical []ProviderDTO `json:"theatrical,omitempty"`
}

// errorDTO is the body upstream sends with a rejection
type errorDTO struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
