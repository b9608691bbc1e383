package catalog

// Author is one creator entry of a catalog record.
type Author struct {
	Name      string `json:"name"`
	BirthYear *int   `json:"birth_year"`
	DeathYear *int   `json:"death_year"`
}

// Record is the raw book metadata shape returned by the Gutendex catalog.
type Record struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Authors     []Author          `json:"authors"`
	Subjects    []string          `json:"subjects"`
	Languages   []string          `json:"languages"`
	Bookshelves []string          `json:"bookshelves"`
	Formats     map[string]string `json:"formats"`
	Summaries   []string          `json:"summaries"`
}

// PrimaryAuthor returns the first listed author, or "Unknown" when the
// catalog has none.
func (r Record) PrimaryAuthor() string {
	if len(r.Authors) == 0 || r.Authors[0].Name == "" {
		return "Unknown"
	}
	return r.Authors[0].Name
}

// page is one response of the paginated /books listing.
type page struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []Record `json:"results"`
}
