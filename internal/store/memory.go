package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/persons-service/internal/model"
)

// MemoryStore keeps countries and persons in process memory. It is meant for development and
// tests; the data is lost when the process ends.
type MemoryStore struct {
	mu        sync.RWMutex
	countries []model.Country
	persons   []model.Person
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AddCountry(_ context.Context, country *model.Country) (*model.Country, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.countries {
		if c.ID == country.ID || c.Name == country.Name {
			return nil, ErrDuplicate
		}
	}
	stored := *country
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = insertionTime()
	}
	s.countries = append(s.countries, stored)
	return &stored, nil
}

func (s *MemoryStore) GetCountryByID(_ context.Context, id uuid.UUID) (*model.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countryByID(id), nil
}

func (s *MemoryStore) GetCountryByName(_ context.Context, name string) (*model.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.countries {
		if c.Name == name {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetAllCountries(_ context.Context) ([]model.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	countries := make([]model.Country, len(s.countries))
	copy(countries, s.countries)
	return countries, nil
}

// countryByID must be called with the lock held.
func (s *MemoryStore) countryByID(id uuid.UUID) *model.Country {
	for _, c := range s.countries {
		if c.ID == id {
			found := c
			return &found
		}
	}
	return nil
}

// joined returns a copy of the person with its country resolved. Must be called with the lock held.
func (s *MemoryStore) joined(p model.Person) model.Person {
	p.Country = nil
	if p.CountryID != nil {
		p.Country = s.countryByID(*p.CountryID)
	}
	return p
}

func (s *MemoryStore) AddPerson(_ context.Context, person *model.Person) (*model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.persons {
		if p.ID == person.ID {
			return nil, ErrDuplicate
		}
	}
	stored := *person
	stored.Country = nil
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = insertionTime()
	}
	s.persons = append(s.persons, stored)
	result := s.joined(stored)
	return &result, nil
}

func (s *MemoryStore) GetPersonByID(_ context.Context, id uuid.UUID) (*model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.persons {
		if p.ID == id {
			result := s.joined(p)
			return &result, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetAllPersons(ctx context.Context) ([]model.Person, error) {
	return s.GetFilteredPersons(ctx, nil)
}

func (s *MemoryStore) GetFilteredPersons(_ context.Context, predicate Predicate) ([]model.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	persons := make([]model.Person, 0, len(s.persons))
	for _, p := range s.persons {
		persons = append(persons, s.joined(p))
	}
	return filter(persons, predicate), nil
}

func (s *MemoryStore) UpdatePerson(_ context.Context, person *model.Person) (*model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.persons {
		if s.persons[i].ID != person.ID {
			continue
		}
		stored := &s.persons[i]
		stored.PersonName = person.PersonName
		stored.Email = person.Email
		stored.DateOfBirth = person.DateOfBirth
		stored.Gender = person.Gender
		stored.CountryID = person.CountryID
		stored.Address = person.Address
		stored.ReceiveNewsLetters = person.ReceiveNewsLetters
		result := s.joined(*stored)
		return &result, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) DeletePersonByID(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.persons[:0]
	for _, p := range s.persons {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	removed := len(kept) != len(s.persons)
	s.persons = kept
	return removed, nil
}

// Close does nothing; it exists to satisfy Store.
func (s *MemoryStore) Close() error {
	return nil
}
