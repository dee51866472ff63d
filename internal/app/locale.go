// Package app contains application services that orchestrate use cases:
// locale resolution, search, the map script loader and marker sync,
// quote rotation and per-visitor sessions.
package app

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/alasharulary/alash/internal/domain"
)

// Pick returns override when lang asks for the override language and override is set,
// otherwise def.
func Pick[T any](def T, override *T, lang domain.Language) T {
	if lang.WantsOverride() && override != nil {
		return *override
	}

	return def
}

// Resolve applies Pick to a Localized value.
func Resolve[T any](l domain.Localized[T], lang domain.Language) T {
	return Pick(l.Default, l.Override, lang)
}

// LocalizedPerson is a person flattened for one language.
type LocalizedPerson struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Categories  []string            `json:"categories"`
	Bio         string              `json:"bio"`
	Education   string              `json:"education"`
	Photo       string              `json:"photo,omitempty"`
	Works       *int                `json:"works,omitempty"`
	BirthYear   int                 `json:"birth_year"`
	DeathYear   *int                `json:"death_year,omitempty"`
	Lifespan    string              `json:"lifespan"`
	Place       string              `json:"place,omitempty"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
	Color       string              `json:"color"`
}

// Localize resolves every bilingual field of p for lang.
func Localize(p *domain.Person, lang domain.Language, now time.Time) LocalizedPerson {
	return LocalizedPerson{
		ID:          p.ID,
		Name:        Resolve(p.Name, lang),
		Categories:  Resolve(p.Categories, lang),
		Bio:         Resolve(p.Bio, lang),
		Education:   Resolve(p.Education, lang),
		Photo:       p.Photo,
		Works:       p.Works,
		BirthYear:   p.BirthYear,
		DeathYear:   p.DeathYear,
		Lifespan:    Lifespan(p.BirthYear, p.DeathYear, lang, now),
		Place:       p.Place,
		Coordinates: p.Coordinates,
		Color:       domain.PersonMarkerColor(p),
	}
}

// LocalizeAll resolves a list of people, preserving order.
func LocalizeAll(people []domain.Person, lang domain.Language, now time.Time) []LocalizedPerson {
	out := make([]LocalizedPerson, 0, len(people))
	for i := range people {
		out = append(out, Localize(&people[i], lang, now))
	}

	return out
}

// Lifespan formats the number of years between birth and death.
// A nil death year counts up to now.
func Lifespan(birthYear int, deathYear *int, lang domain.Language, now time.Time) string {
	end := now.Year()
	if deathYear != nil {
		end = *deathYear
	}

	suffix := "жыл"
	if lang == domain.LangEnglish {
		suffix = "years"
	}

	return fmt.Sprintf("%d %s", end-birthYear, suffix)
}

var languageMatcher = language.NewMatcher([]language.Tag{
	language.Kazakh,
	language.English,
})

// NegotiateLanguage picks a supported language from an Accept-Language header.
// Anything unparseable or unsupported falls back to the default language.
func NegotiateLanguage(acceptLanguage string) domain.Language {
	if acceptLanguage == "" {
		return domain.DefaultLanguage
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return domain.DefaultLanguage
	}

	_, index, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return domain.DefaultLanguage
	}

	if index == 1 {
		return domain.LangEnglish
	}

	return domain.LangKazakh
}
