package client

// Resource names a paginated SWAPI collection.
type Resource string

const (
	// ResourcePeople is the character collection.
	ResourcePeople Resource = "people"

	// ResourcePlanets is the planet collection.
	ResourcePlanets Resource = "planets"
)

// Page is one page of a paginated SWAPI collection.
type Page[T any] struct {
	// Count is the total number of records across all pages.
	Count int `json:"count"`

	// Next is the URL of the following page, nil on the last page.
	Next *string `json:"next"`

	// Previous is the URL of the preceding page, nil on the first page.
	Previous *string `json:"previous"`

	// Results holds the records of this page in API order.
	Results []T `json:"results"`
}

// HasNext reports whether the API advertises a following page.
func (p *Page[T]) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// HasPrevious reports whether the API advertises a preceding page.
func (p *Page[T]) HasPrevious() bool {
	return p.Previous != nil && *p.Previous != ""
}

// Character is a person record from /people/.
type Character struct {
	Name      string `json:"name"`
	BirthYear string `json:"birth_year"`
	Height    string `json:"height,omitempty"`
	Gender    string `json:"gender,omitempty"`
	URL       string `json:"url,omitempty"`
}

// PrimaryField returns the character name.
func (c Character) PrimaryField() string { return c.Name }

// SecondaryField returns the birth year, e.g. "19BBY".
func (c Character) SecondaryField() string { return c.BirthYear }

// Planet is a planet record from /planets/.
type Planet struct {
	Name          string `json:"name"`
	OrbitalPeriod string `json:"orbital_period"`
	Climate       string `json:"climate,omitempty"`
	Population    string `json:"population,omitempty"`
	URL           string `json:"url,omitempty"`
}

// PrimaryField returns the planet name.
func (p Planet) PrimaryField() string { return p.Name }

// SecondaryField returns the orbital period in days.
func (p Planet) SecondaryField() string { return p.OrbitalPeriod }
