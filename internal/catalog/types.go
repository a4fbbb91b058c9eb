package catalog

import "encoding/json"

// Item is a playable catalog entry. URL is set only for direct-URL
// entries, which bypass stream resolution.
type Item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
	Slug string `json:"slug,omitempty"`
	URL  string `json:"url,omitempty"`
	Kind string `json:"type"`
}

// SliderItem is a featured entry at the top of the home screen.
type SliderItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Slug      string `json:"slug,omitempty"`
	Kind      string `json:"type"`
}

// Item converts the slider entry to a playable item.
func (s SliderItem) Item() Item {
	return Item{ID: s.ID, Name: s.Title, Logo: s.Thumbnail, Slug: s.Slug, Kind: s.Kind}
}

// HomeSections is the home payload. Chunks are kept raw; Load turns them
// into sections.
type HomeSections struct {
	Slider []SliderItem       `json:"slider"`
	Chunks []json.RawMessage `json:"chunks"`
}

// Section is a titled row of items.
type Section struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Catalog is everything the home screen needs.
type Catalog struct {
	Slider   []SliderItem `json:"slider"`
	Sections []Section    `json:"sections"`
	Movies   []Item       `json:"movies"`
	Sports   []Item       `json:"sports"`
	Channels []Item       `json:"channels"`
	Premium  []Item       `json:"premium"`
}

// Item kinds.
const (
	KindChannel = "channel"
	KindVOD     = "vod"
)

// ID prefixes by origin.
const (
	prefixSlider  = "slide-"
	prefixChannel = "jazz-"
	prefixGenre   = "gen-"
	prefixProgram = "pg-"
)
