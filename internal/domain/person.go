package domain

import "fmt"

// Localized holds a default-language value and an optional override-language value.
// A nil Override means the record has no override for this field.
type Localized[T any] struct {
	Default  T
	Override *T
}

// Coordinates is a WGS 84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are within range.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Person is a biographical record. Records are built once at startup and never mutated.
type Person struct {
	ID         string
	Name       Localized[string]
	Categories Localized[[]string]
	Bio        Localized[string]
	Education  Localized[string]
	Photo      string

	// Works is the number of published works, when known.
	Works *int

	BirthYear int

	// DeathYear is nil for a living person or an unknown end year.
	DeathYear *int

	// Coordinates is nil when the record has no birthplace location.
	Coordinates *Coordinates

	// Place is a free-text birthplace label.
	Place string
}

// HasLocation reports whether the person can be placed on the map.
func (p *Person) HasLocation() bool {
	return p.Coordinates != nil
}

// Validate checks the record invariants.
func (p *Person) Validate() error {
	if p.ID == "" {
		return NewValidationError("id", "must not be empty")
	}

	if p.Name.Default == "" {
		return NewValidationErrorWithValue("name", fmt.Sprintf("person %q has no name", p.ID), p.ID)
	}

	if p.Coordinates != nil && !p.Coordinates.Valid() {
		return NewValidationErrorWithValue("coordinates",
			fmt.Sprintf("person %q has coordinates out of range", p.ID), *p.Coordinates)
	}

	if p.DeathYear != nil && *p.DeathYear < p.BirthYear {
		return NewValidationErrorWithValue("death_year",
			fmt.Sprintf("person %q died before being born", p.ID), *p.DeathYear)
	}

	if o := p.Categories.Override; o != nil && len(*o) != len(p.Categories.Default) {
		return NewValidationErrorWithValue("categories",
			fmt.Sprintf("person %q has %d override categories for %d default ones", p.ID, len(*o), len(p.Categories.Default)),
			*o)
	}

	return nil
}
