// Package store persists countries and persons. All writes to stored state go through the
// interfaces of this package.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/persons-service/internal/model"
)

var (
	// ErrNotFound is returned by operations that must act on an existing record.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique column would hold the same value twice.
	ErrDuplicate = errors.New("duplicate record")
)

// Predicate selects persons in GetFilteredPersons.
type Predicate func(p *model.Person) bool

// CountryStore stores countries. Lookups return nil without an error when nothing matches.
type CountryStore interface {
	AddCountry(ctx context.Context, country *model.Country) (*model.Country, error)
	GetCountryByID(ctx context.Context, id uuid.UUID) (*model.Country, error)
	GetCountryByName(ctx context.Context, name string) (*model.Country, error)
	// GetAllCountries returns the countries in insertion order.
	GetAllCountries(ctx context.Context) ([]model.Country, error)
}

// PersonStore stores persons. Every returned person has its Country joined when the referenced
// country exists.
type PersonStore interface {
	AddPerson(ctx context.Context, person *model.Person) (*model.Person, error)
	// GetPersonByID returns nil without an error if no person has the id.
	GetPersonByID(ctx context.Context, id uuid.UUID) (*model.Person, error)
	GetAllPersons(ctx context.Context) ([]model.Person, error)
	GetFilteredPersons(ctx context.Context, predicate Predicate) ([]model.Person, error)
	// UpdatePerson overwrites all mutable fields of the stored person with the same id. It returns
	// ErrNotFound if there is no such person.
	UpdatePerson(ctx context.Context, person *model.Person) (*model.Person, error)
	// DeletePersonByID removes the person and reports whether a row was removed.
	DeletePersonByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// Store is the complete storage backend of the service.
type Store interface {
	CountryStore
	PersonStore
	Close() error
}

// filter returns the persons the predicate accepts. A nil predicate accepts all.
func filter(persons []model.Person, predicate Predicate) []model.Person {
	if predicate == nil {
		return persons
	}
	matching := make([]model.Person, 0, len(persons))
	for i := range persons {
		if predicate(&persons[i]) {
			matching = append(matching, persons[i])
		}
	}
	return matching
}
