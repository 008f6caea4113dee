package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/persons-service/internal/export"
	"gitlab.com/dirk.krummacker/persons-service/internal/metrics"
	"gitlab.com/dirk.krummacker/persons-service/internal/model"
	"gitlab.com/dirk.krummacker/persons-service/internal/store"
	"gitlab.com/dirk.krummacker/persons-service/internal/validation"
	api "gitlab.com/dirk.krummacker/persons-service/pkg/model"
	"go.uber.org/zap"
)

// PersonService implements the operations on persons. It holds no state of its own; all records
// live in the store.
type PersonService struct {
	persons   store.PersonStore
	countries *CountryDirectory
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewPersonService returns a service that stores persons in s and resolves country names through
// the country directory.
func NewPersonService(s store.PersonStore, countries *CountryDirectory, log *zap.Logger, m *metrics.Metrics) *PersonService {
	return &PersonService{
		persons:   s,
		countries: countries,
		log:       log.Named("persons"),
		metrics:   m,
		now:       time.Now,
	}
}

// toResponse builds the projection of a stored person. If the store did not join the country, it
// is looked up in the country directory.
func (s *PersonService) toResponse(ctx context.Context, p *model.Person) (api.PersonResponse, error) {
	if p.Country == nil && p.CountryID != nil {
		country, err := s.countries.GetCountryByID(ctx, *p.CountryID)
		if err != nil {
			return api.PersonResponse{}, err
		}
		if country != nil {
			p.Country = &model.Country{ID: country.CountryID, Name: country.CountryName}
		}
	}
	return p.ToResponse(s.now()), nil
}

func (s *PersonService) toResponses(ctx context.Context, persons []model.Person) ([]api.PersonResponse, error) {
	responses := make([]api.PersonResponse, 0, len(persons))
	for i := range persons {
		resp, err := s.toResponse(ctx, &persons[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// AddPerson validates the request and stores it as a new person under a freshly generated id.
func (s *PersonService) AddPerson(ctx context.Context, req *api.PersonAddRequest) (api.PersonResponse, error) {
	if req == nil {
		return api.PersonResponse{}, fmt.Errorf("add person: %w", ErrNilArgument)
	}
	if err := validation.Validate(req); err != nil {
		return api.PersonResponse{}, err
	}

	added, err := s.persons.AddPerson(ctx, model.NewPerson(uuid.New(), req))
	if err != nil {
		return api.PersonResponse{}, err
	}
	s.metrics.PersonsCreated.Inc()
	s.log.Info("person added", zap.Stringer("id", added.ID))
	return s.toResponse(ctx, added)
}

// GetAllPersons returns all persons in the natural order of the store.
func (s *PersonService) GetAllPersons(ctx context.Context) ([]api.PersonResponse, error) {
	persons, err := s.persons.GetAllPersons(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, persons)
}

// GetPersonByID returns nil if the id is uuid.Nil or no person has it.
func (s *PersonService) GetPersonByID(ctx context.Context, id uuid.UUID) (*api.PersonResponse, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	person, err := s.persons.GetPersonByID(ctx, id)
	if err != nil || person == nil {
		return nil, err
	}
	resp, err := s.toResponse(ctx, person)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetFilteredPersons returns the persons whose searchBy field contains searchString, ignoring
// case. All persons are returned if searchString is empty or searchBy does not name a searchable
// field. Persons without a value in the field do not match.
func (s *PersonService) GetFilteredPersons(ctx context.Context, searchBy, searchString string) ([]api.PersonResponse, error) {
	field := ParseField(searchBy)
	if searchString == "" || !field.Filterable() {
		return s.GetAllPersons(ctx)
	}

	now := s.now()
	persons, err := s.persons.GetFilteredPersons(ctx, func(p *model.Person) bool {
		resp := p.ToResponse(now)
		return field.matches(&resp, searchString)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, persons)
}

// GetSortedPersons returns a copy of persons sorted by the sortBy field. The sort is stable. The
// input order is kept if sortBy is empty or unknown.
func (s *PersonService) GetSortedPersons(persons []api.PersonResponse, sortBy string, order api.SortOrder) []api.PersonResponse {
	field := ParseField(sortBy)
	sorted := slices.Clone(persons)
	if field == FieldUnknown {
		return sorted
	}
	slices.SortStableFunc(sorted, func(a, b api.PersonResponse) int {
		if order == api.SortDescending {
			return field.compare(&b, &a)
		}
		return field.compare(&a, &b)
	})
	return sorted
}

// UpdatePerson validates the request and replaces all mutable fields of the person it names.
func (s *PersonService) UpdatePerson(ctx context.Context, req *api.PersonUpdateRequest) (api.PersonResponse, error) {
	if req == nil {
		return api.PersonResponse{}, fmt.Errorf("update person: %w", ErrNilArgument)
	}
	if err := validation.Validate(req); err != nil {
		return api.PersonResponse{}, err
	}

	matching, err := s.persons.GetPersonByID(ctx, req.PersonID)
	if err != nil {
		return api.PersonResponse{}, err
	}
	if matching == nil {
		return api.PersonResponse{}, fmt.Errorf("%w: %s", ErrPersonNotFound, req.PersonID)
	}

	matching.Apply(req)
	updated, err := s.persons.UpdatePerson(ctx, matching)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted after our lookup.
		return api.PersonResponse{}, fmt.Errorf("%w: %s", ErrPersonNotFound, req.PersonID)
	}
	if err != nil {
		return api.PersonResponse{}, err
	}
	s.metrics.PersonsUpdated.Inc()
	s.log.Info("person updated", zap.Stringer("id", updated.ID))
	return s.toResponse(ctx, updated)
}

// DeletePerson removes the person with the given id. It returns false if there is no such person.
func (s *PersonService) DeletePerson(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, fmt.Errorf("delete person: %w", ErrNilArgument)
	}
	person, err := s.persons.GetPersonByID(ctx, id)
	if err != nil {
		return false, err
	}
	if person == nil {
		return false, nil
	}
	removed, err := s.persons.DeletePersonByID(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		s.metrics.PersonsDeleted.Inc()
		s.log.Info("person deleted", zap.Stringer("id", id))
	}
	return removed, nil
}

// GetPersonsCSV returns all persons as CSV.
func (s *PersonService) GetPersonsCSV(ctx context.Context) ([]byte, error) {
	persons, err := s.GetAllPersons(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementExports("csv")
	return export.CSV(persons)
}

// GetPersonsExcel returns all persons as an xlsx workbook.
func (s *PersonService) GetPersonsExcel(ctx context.Context) ([]byte, error) {
	persons, err := s.GetAllPersons(ctx)
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementExports("xlsx")
	return export.Excel(persons)
}
