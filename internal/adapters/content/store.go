// Package content provides the static content store: person records, quotes
// and UI string tables embedded into the binary as YAML and loaded once.
package content

import (
	"embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/alasharulary/alash/internal/domain"
)

//go:embed data/*.yaml
var embedded embed.FS

// personRecord is the YAML shape of a person. Never exposed outside this package.
type personRecord struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	NameEN      *string   `yaml:"name_en"`
	Photo       string    `yaml:"photo"`
	BirthYear   int       `yaml:"birth_year"`
	DeathYear   *int      `yaml:"death_year"`
	Fields      []string  `yaml:"fields"`
	FieldsEN    *[]string `yaml:"fields_en"`
	Bio         string    `yaml:"bio"`
	BioEN       *string   `yaml:"bio_en"`
	Education   string    `yaml:"education"`
	EducationEN *string   `yaml:"education_en"`
	Works       *int      `yaml:"works"`
	Place       string    `yaml:"place"`
	Lat         *float64  `yaml:"lat"`
	Lng         *float64  `yaml:"lng"`
}

type quoteRecord struct {
	Text   string `yaml:"text"`
	Author string `yaml:"author"`
}

type peopleFile struct {
	People []personRecord `yaml:"people"`
}

type quotesFile struct {
	Quotes map[domain.Language][]quoteRecord `yaml:"quotes"`
}

type stringsFile struct {
	Strings map[domain.Language]map[string]string `yaml:"strings"`
}

// Store is an immutable, in-memory content store.
// All accessors return copies of slices so callers cannot mutate the store.
type Store struct {
	people  []domain.Person
	byID    map[string]int
	quotes  map[domain.Language][]domain.Quote
	strings map[domain.Language]map[string]string
}

// Load parses and validates the embedded content.
func Load() (*Store, error) {
	people, err := readFile[peopleFile]("data/people.yaml")
	if err != nil {
		return nil, err
	}

	quotes, err := readFile[quotesFile]("data/quotes.yaml")
	if err != nil {
		return nil, err
	}

	tables, err := readFile[stringsFile]("data/strings.yaml")
	if err != nil {
		return nil, err
	}

	return build(people.People, quotes.Quotes, tables.Strings)
}

// build converts decoded records into a store and validates every invariant.
func build(
	records []personRecord,
	quotes map[domain.Language][]quoteRecord,
	tables map[domain.Language]map[string]string,
) (*Store, error) {
	s := &Store{
		people:  make([]domain.Person, 0, len(records)),
		byID:    make(map[string]int, len(records)),
		quotes:  make(map[domain.Language][]domain.Quote, len(domain.Languages)),
		strings: make(map[domain.Language]map[string]string, len(domain.Languages)),
	}

	for i := range records {
		p, err := records[i].toDomain()
		if err != nil {
			return nil, fmt.Errorf("person #%d: %w", i, err)
		}

		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("person #%d: %w", i, err)
		}

		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("person #%d: %w", i,
				domain.NewValidationErrorWithValue("id", "duplicate id", p.ID))
		}

		s.byID[p.ID] = len(s.people)
		s.people = append(s.people, *p)
	}

	for _, lang := range domain.Languages {
		list := quotes[lang]
		if len(list) == 0 {
			return nil, domain.NewValidationErrorWithValue("quotes", "no quotes for language", lang)
		}

		converted := make([]domain.Quote, 0, len(list))
		for _, q := range list {
			if q.Text == "" {
				return nil, domain.NewValidationErrorWithValue("quotes", "empty quote text", lang)
			}
			converted = append(converted, domain.Quote{Text: q.Text, Author: q.Author})
		}
		s.quotes[lang] = converted

		table, ok := tables[lang]
		if !ok {
			return nil, domain.NewValidationErrorWithValue("strings", "no string table for language", lang)
		}
		s.strings[lang] = table
	}

	if err := sameKeys(s.strings[domain.LangKazakh], s.strings[domain.LangEnglish]); err != nil {
		return nil, err
	}

	return s, nil
}

// People returns all person records in table order.
func (s *Store) People() []domain.Person {
	return slices.Clone(s.people)
}

// Person returns the record with the given id.
func (s *Store) Person(id string) (*domain.Person, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, domain.NewNotFoundError("person", id)
	}

	p := s.people[i]

	return &p, nil
}

// Quotes returns the quote list for a language.
func (s *Store) Quotes(lang domain.Language) []domain.Quote {
	return slices.Clone(s.quotes[lang])
}

// Strings returns the UI string table for a language.
func (s *Store) Strings(lang domain.Language) map[string]string {
	table := s.strings[lang]
	out := make(map[string]string, len(table))

	for k, v := range table {
		out[k] = v
	}

	return out
}

func (r *personRecord) toDomain() (*domain.Person, error) {
	p := &domain.Person{
		ID:         r.ID,
		Name:       domain.Localized[string]{Default: r.Name, Override: r.NameEN},
		Categories: domain.Localized[[]string]{Default: r.Fields, Override: r.FieldsEN},
		Bio:        domain.Localized[string]{Default: r.Bio, Override: r.BioEN},
		Education:  domain.Localized[string]{Default: r.Education, Override: r.EducationEN},
		Photo:      r.Photo,
		Works:      r.Works,
		BirthYear:  r.BirthYear,
		DeathYear:  r.DeathYear,
		Place:      r.Place,
	}

	switch {
	case r.Lat != nil && r.Lng != nil:
		p.Coordinates = &domain.Coordinates{Lat: *r.Lat, Lng: *r.Lng}
	case r.Lat != nil || r.Lng != nil:
		return nil, domain.NewValidationErrorWithValue("coordinates",
			fmt.Sprintf("person %q has only one coordinate", r.ID), r.ID)
	}

	return p, nil
}

func readFile[T any](name string) (*T, error) {
	raw, err := embedded.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	var out T
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	return &out, nil
}

// sameKeys fails when the two string tables do not define the same keys.
func sameKeys(a, b map[string]string) error {
	for k := range a {
		if _, ok := b[k]; !ok {
			return domain.NewValidationErrorWithValue("strings", "key missing from en table", k)
		}
	}

	for k := range b {
		if _, ok := a[k]; !ok {
			return domain.NewValidationErrorWithValue("strings", "key missing from kk table", k)
		}
	}

	return nil
}
