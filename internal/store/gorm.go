package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/persons-service/internal/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// GormStore keeps countries and persons in a database accessed through the gorm OR mapper.
type GormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// GormConfig is the gorm configuration shared by all dialects. Foreign keys are not created
// because a person's country is a weak reference.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	}
}

// OpenPostgres connects to the Postgres database described by dsn and migrates the schema.
func OpenPostgres(dsn string, log *zap.Logger) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return NewGormStore(db, log)
}

// NewGormStore defines the database schema with AutoMigrate and returns the store.
func NewGormStore(db *gorm.DB, log *zap.Logger) (*GormStore, error) {
	log = log.Named("gorm")
	log.Info("auto migrating tables")
	if err := db.AutoMigrate(&model.Country{}, &model.Person{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db, log: log}, nil
}

func (s *GormStore) AddCountry(ctx context.Context, country *model.Country) (*model.Country, error) {
	stored := *country
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = insertionTime()
	}
	if err := s.db.WithContext(ctx).Create(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("insert country: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("insert country: %w", err)
	}
	return &stored, nil
}

func (s *GormStore) GetCountryByID(ctx context.Context, id uuid.UUID) (*model.Country, error) {
	return s.firstCountry(ctx, "id = ?", id)
}

func (s *GormStore) GetCountryByName(ctx context.Context, name string) (*model.Country, error) {
	return s.firstCountry(ctx, "country_name = ?", name)
}

func (s *GormStore) firstCountry(ctx context.Context, query string, arg any) (*model.Country, error) {
	var countries []model.Country
	if err := s.db.WithContext(ctx).Where(query, arg).Limit(1).Find(&countries).Error; err != nil {
		return nil, fmt.Errorf("select country: %w", err)
	}
	if len(countries) == 0 {
		return nil, nil
	}
	return &countries[0], nil
}

func (s *GormStore) GetAllCountries(ctx context.Context) ([]model.Country, error) {
	var countries []model.Country
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&countries).Error; err != nil {
		return nil, fmt.Errorf("select countries: %w", err)
	}
	return countries, nil
}

func (s *GormStore) AddPerson(ctx context.Context, person *model.Person) (*model.Person, error) {
	stored := *person
	stored.Country = nil
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = insertionTime()
	}
	if err := s.db.WithContext(ctx).Create(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("insert person: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("insert person: %w", err)
	}
	added, err := s.GetPersonByID(ctx, stored.ID)
	if err != nil {
		return nil, err
	}
	if added == nil {
		return &stored, nil
	}
	return added, nil
}

func (s *GormStore) GetPersonByID(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	var persons []model.Person
	err := s.db.WithContext(ctx).
		Preload("Country").
		Where("id = ?", id).
		Limit(1).
		Find(&persons).Error
	if err != nil {
		return nil, fmt.Errorf("select person: %w", err)
	}
	if len(persons) == 0 {
		return nil, nil
	}
	return &persons[0], nil
}

func (s *GormStore) GetAllPersons(ctx context.Context) ([]model.Person, error) {
	return s.GetFilteredPersons(ctx, nil)
}

// GetFilteredPersons loads all persons with their countries and applies the predicate.
func (s *GormStore) GetFilteredPersons(ctx context.Context, predicate Predicate) ([]model.Person, error) {
	var persons []model.Person
	err := s.db.WithContext(ctx).
		Preload("Country").
		Order("created_at, id").
		Find(&persons).Error
	if err != nil {
		return nil, fmt.Errorf("select persons: %w", err)
	}
	return filter(persons, predicate), nil
}

func (s *GormStore) UpdatePerson(ctx context.Context, person *model.Person) (*model.Person, error) {
	// A map makes gorm write zero values such as an empty address or a false flag.
	result := s.db.WithContext(ctx).
		Model(&model.Person{}).
		Where("id = ?", person.ID).
		Updates(map[string]any{
			"person_name":          person.PersonName,
			"email":                person.Email,
			"date_of_birth":        person.DateOfBirth,
			"gender":               person.Gender,
			"country_id":           person.CountryID,
			"address":              person.Address,
			"receive_news_letters": person.ReceiveNewsLetters,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update person: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("update person %s: %w", person.ID, ErrNotFound)
	}
	updated, err := s.GetPersonByID(ctx, person.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("update person %s: %w", person.ID, ErrNotFound)
	}
	return updated, nil
}

func (s *GormStore) DeletePersonByID(ctx context.Context, id uuid.UUID) (bool, error) {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Person{})
	if result.Error != nil {
		return false, fmt.Errorf("delete person: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
