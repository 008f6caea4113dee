package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/persons-service/internal/model"
	"go.uber.org/zap"
)

// mysqlDuplicateEntry is the MySQL error number for a violated unique key.
const mysqlDuplicateEntry = 1062

// selectPersons joins the referenced country of each person. The country is a weak reference, so
// persons whose country is missing are still returned.
const selectPersons = `
	SELECT p.id, p.person_name, p.email, p.date_of_birth, p.gender, p.country_id, p.address,
		p.receive_news_letters, p.created_at, c.country_name
	FROM persons p
	LEFT JOIN countries c ON c.id = p.country_id`

// personRow is a person as read by selectPersons.
type personRow struct {
	model.Person
	CountryName sql.NullString `db:"country_name"`
}

func (r personRow) toPerson() model.Person {
	p := r.Person
	if r.CountryName.Valid && p.CountryID != nil {
		p.Country = &model.Country{ID: *p.CountryID, Name: r.CountryName.String}
	}
	return p
}

// MySQLStore keeps countries and persons in a MySQL database.
type MySQLStore struct {
	db  *sqlx.DB
	log *zap.Logger

	// insertPerson is a prepared statement for creating a person.
	insertPerson *sqlx.NamedStmt

	// selectPersonWhereId is a prepared statement for selecting persons with a given id.
	selectPersonWhereId *sqlx.Stmt

	// deletePersonWhereId is a prepared statement for deleting persons with a given id.
	deletePersonWhereId *sqlx.Stmt

	// insertCountry is a prepared statement for creating a country.
	insertCountry *sqlx.NamedStmt

	// selectCountryWhereId is a prepared statement for selecting countries with a given id.
	selectCountryWhereId *sqlx.Stmt

	// selectCountryWhereName is a prepared statement for selecting countries with a given name.
	selectCountryWhereName *sqlx.Stmt
}

// CreateDatabase opens a MySQL connection pool. The database must already contain the tables of
// scripts/database.sql.
func CreateDatabase(user, password, host, dbName string) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host
	cfg.DBName = dbName
	cfg.ParseTime = true
	// Report matched rather than changed rows, so that an update which leaves the values as they
	// are is not mistaken for a missing row.
	cfg.ClientFoundRows = true
	return sql.Open("mysql", cfg.FormatDSN())
}

// NewMySQLStore wraps the specified sql database and prepares all statements. The database
// argument can be a real database for production use or a mock database within unit tests.
func NewMySQLStore(ctx context.Context, sqlDB *sql.DB, log *zap.Logger) (*MySQLStore, error) {
	s := &MySQLStore{
		db:  sqlx.NewDb(sqlDB, "mysql"),
		log: log.Named("mysql"),
	}

	// Prepared statements offer a significant speed increase if executed many times.
	var err error
	s.insertPerson, err = s.db.PrepareNamedContext(ctx, `
		INSERT INTO persons (id, person_name, email, date_of_birth, gender, country_id, address,
			receive_news_letters, created_at)
		VALUES (:id, :person_name, :email, :date_of_birth, :gender, :country_id, :address,
			:receive_news_letters, :created_at)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert person: %w", err)
	}
	s.selectPersonWhereId, err = s.db.PreparexContext(ctx, selectPersons+`
		WHERE p.id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select person: %w", err)
	}
	s.deletePersonWhereId, err = s.db.PreparexContext(ctx, `
		DELETE FROM persons WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare delete person: %w", err)
	}
	s.insertCountry, err = s.db.PrepareNamedContext(ctx, `
		INSERT INTO countries (id, country_name, created_at)
		VALUES (:id, :country_name, :created_at)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert country: %w", err)
	}
	s.selectCountryWhereId, err = s.db.PreparexContext(ctx, `
		SELECT id, country_name, created_at FROM countries WHERE id = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select country: %w", err)
	}
	s.selectCountryWhereName, err = s.db.PreparexContext(ctx, `
		SELECT id, country_name, created_at FROM countries WHERE country_name = ?
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare select country by name: %w", err)
	}
	return s, nil
}

// translate maps driver errors onto the errors of this package.
func translate(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%w: %s", ErrDuplicate, mysqlErr.Message)
	}
	return err
}

func (s *MySQLStore) AddCountry(ctx context.Context, country *model.Country) (*model.Country, error) {
	stored := *country
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = insertionTime()
	}
	if _, err := s.insertCountry.ExecContext(ctx, &stored); err != nil {
		return nil, fmt.Errorf("insert country: %w", translate(err))
	}
	return &stored, nil
}

func (s *MySQLStore) GetCountryByID(ctx context.Context, id uuid.UUID) (*model.Country, error) {
	return s.selectOneCountry(ctx, s.selectCountryWhereId, id.String())
}

func (s *MySQLStore) GetCountryByName(ctx context.Context, name string) (*model.Country, error) {
	return s.selectOneCountry(ctx, s.selectCountryWhereName, name)
}

func (s *MySQLStore) selectOneCountry(ctx context.Context, stmt *sqlx.Stmt, arg any) (*model.Country, error) {
	var countries []model.Country
	if err := stmt.SelectContext(ctx, &countries, arg); err != nil {
		return nil, fmt.Errorf("select country: %w", err)
	}
	if len(countries) == 0 {
		return nil, nil
	}
	return &countries[0], nil
}

func (s *MySQLStore) GetAllCountries(ctx context.Context) ([]model.Country, error) {
	var countries []model.Country
	err := s.db.SelectContext(ctx, &countries, `
		SELECT id, country_name, created_at FROM countries ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("select countries: %w", err)
	}
	return countries, nil
}

func (s *MySQLStore) AddPerson(ctx context.Context, person *model.Person) (*model.Person, error) {
	stored := *person
	stored.Country = nil
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = insertionTime()
	}
	if _, err := s.insertPerson.ExecContext(ctx, &stored); err != nil {
		return nil, fmt.Errorf("insert person: %w", translate(err))
	}
	// Read the row back to join its country.
	added, err := s.GetPersonByID(ctx, stored.ID)
	if err != nil {
		return nil, err
	}
	if added == nil {
		return &stored, nil
	}
	return added, nil
}

func (s *MySQLStore) GetPersonByID(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	var rows []personRow
	if err := s.selectPersonWhereId.SelectContext(ctx, &rows, id.String()); err != nil {
		return nil, fmt.Errorf("select person: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	person := rows[0].toPerson()
	return &person, nil
}

func (s *MySQLStore) GetAllPersons(ctx context.Context) ([]model.Person, error) {
	return s.GetFilteredPersons(ctx, nil)
}

// GetFilteredPersons loads all persons and applies the predicate to the joined rows.
func (s *MySQLStore) GetFilteredPersons(ctx context.Context, predicate Predicate) ([]model.Person, error) {
	var rows []personRow
	if err := s.db.SelectContext(ctx, &rows, selectPersons+` ORDER BY p.created_at, p.id`); err != nil {
		return nil, fmt.Errorf("select persons: %w", err)
	}
	persons := make([]model.Person, 0, len(rows))
	for _, row := range rows {
		persons = append(persons, row.toPerson())
	}
	return filter(persons, predicate), nil
}

func (s *MySQLStore) UpdatePerson(ctx context.Context, person *model.Person) (*model.Person, error) {
	result, err := s.db.NamedExecContext(ctx, `
		UPDATE persons
		SET person_name = :person_name, email = :email, date_of_birth = :date_of_birth,
			gender = :gender, country_id = :country_id, address = :address,
			receive_news_letters = :receive_news_letters
		WHERE id = :id
	`, person)
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	if rowsAffected == 0 {
		return nil, fmt.Errorf("update person %s: %w", person.ID, ErrNotFound)
	}

	// Return the full person after the update.
	updated, err := s.GetPersonByID(ctx, person.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("update person %s: %w", person.ID, ErrNotFound)
	}
	return updated, nil
}

func (s *MySQLStore) DeletePersonByID(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := s.deletePersonWhereId.ExecContext(ctx, id.String())
	if err != nil {
		return false, fmt.Errorf("delete person: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete person: %w", err)
	}
	if rowsAffected > 1 {
		s.log.Warn("deleted more than one person", zap.Stringer("id", id), zap.Int64("rows", rowsAffected))
	}
	return rowsAffected > 0, nil
}

// Close closes the prepared statements and the database.
func (s *MySQLStore) Close() error {
	for _, stmt := range []*sqlx.Stmt{s.selectPersonWhereId, s.deletePersonWhereId, s.selectCountryWhereId, s.selectCountryWhereName} {
		stmt.Close()
	}
	s.insertPerson.Close()
	s.insertCountry.Close()
	return s.db.Close()
}
