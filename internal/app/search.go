package app

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/alasharulary/alash/internal/domain"
)

// fold case-folds s. A Caser holds state, so one is made per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// normalizeQuery trims and case-folds a query. An empty result means "match everything".
func normalizeQuery(query string) string {
	return fold(strings.TrimSpace(query))
}

// FilterPeople returns the people whose name or categories, in either language,
// contain query. Matching ignores case; table order is preserved.
// A blank query returns people unchanged.
func FilterPeople(people []domain.Person, query string) []domain.Person {
	q := normalizeQuery(query)
	if q == "" {
		return people
	}

	out := make([]domain.Person, 0, len(people))
	for i := range people {
		if matchesPerson(&people[i], q) {
			out = append(out, people[i])
		}
	}

	return out
}

// FilterPlaces restricts people to those with a location and then matches
// query against name, categories and the place label.
func FilterPlaces(people []domain.Person, query string) []domain.Person {
	q := normalizeQuery(query)

	out := make([]domain.Person, 0, len(people))
	for i := range people {
		p := &people[i]
		if !p.HasLocation() {
			continue
		}

		if q == "" || matchesPerson(p, q) || strings.Contains(fold(p.Place), q) {
			out = append(out, *p)
		}
	}

	return out
}

func matchesPerson(p *domain.Person, q string) bool {
	if strings.Contains(fold(p.Name.Default), q) {
		return true
	}

	if p.Name.Override != nil && strings.Contains(fold(*p.Name.Override), q) {
		return true
	}

	if strings.Contains(fold(strings.Join(p.Categories.Default, " ")), q) {
		return true
	}

	return p.Categories.Override != nil &&
		strings.Contains(fold(strings.Join(*p.Categories.Override, " ")), q)
}
