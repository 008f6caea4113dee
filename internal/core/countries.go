// Package core holds the business logic of the service: the country directory and the person
// service that validates requests, delegates to the store and builds projections.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/persons-service/internal/metrics"
	"gitlab.com/dirk.krummacker/persons-service/internal/model"
	"gitlab.com/dirk.krummacker/persons-service/internal/store"
	"gitlab.com/dirk.krummacker/persons-service/internal/validation"
	api "gitlab.com/dirk.krummacker/persons-service/pkg/model"
	"go.uber.org/zap"
)

// CountryDirectory manages countries. Names are unique; two names are the same only if they are
// equal byte for byte, so "usa" and "USA" are different countries.
type CountryDirectory struct {
	store   store.CountryStore
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewCountryDirectory returns a directory backed by the given store.
func NewCountryDirectory(s store.CountryStore, log *zap.Logger, m *metrics.Metrics) *CountryDirectory {
	return &CountryDirectory{store: s, log: log.Named("countries"), metrics: m}
}

// AddCountry stores a new country under a freshly generated id.
func (d *CountryDirectory) AddCountry(ctx context.Context, req *api.CountryAddRequest) (api.CountryResponse, error) {
	if req == nil {
		return api.CountryResponse{}, fmt.Errorf("add country: %w", ErrNilArgument)
	}
	if err := validation.Validate(req); err != nil {
		return api.CountryResponse{}, err
	}

	existing, err := d.store.GetCountryByName(ctx, req.CountryName)
	if err != nil {
		return api.CountryResponse{}, err
	}
	if existing != nil {
		return api.CountryResponse{}, fmt.Errorf("%w: %s", ErrDuplicateCountry, req.CountryName)
	}

	added, err := d.store.AddCountry(ctx, &model.Country{ID: uuid.New(), Name: req.CountryName})
	if errors.Is(err, store.ErrDuplicate) {
		// Another request added the same name after our check.
		return api.CountryResponse{}, fmt.Errorf("%w: %s", ErrDuplicateCountry, req.CountryName)
	}
	if err != nil {
		return api.CountryResponse{}, err
	}
	d.metrics.CountriesCreated.Inc()
	d.log.Info("country added", zap.Stringer("id", added.ID), zap.String("name", added.Name))
	return added.ToResponse(), nil
}

// GetCountryByID returns nil if the id is uuid.Nil or no country has it.
func (d *CountryDirectory) GetCountryByID(ctx context.Context, id uuid.UUID) (*api.CountryResponse, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	country, err := d.store.GetCountryByID(ctx, id)
	if err != nil || country == nil {
		return nil, err
	}
	resp := country.ToResponse()
	return &resp, nil
}

// GetAllCountries returns all countries in the order they were added.
func (d *CountryDirectory) GetAllCountries(ctx context.Context) ([]api.CountryResponse, error) {
	countries, err := d.store.GetAllCountries(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]api.CountryResponse, 0, len(countries))
	for _, c := range countries {
		responses = append(responses, c.ToResponse())
	}
	return responses, nil
}
