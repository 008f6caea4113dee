package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/persons-service/internal/model"
	"go.uber.org/zap"
)

// personColumns are the columns returned by selectPersons.
var personColumns = []string{
	"id", "person_name", "email", "date_of_birth", "gender", "country_id", "address",
	"receive_news_letters", "created_at", "country_name",
}

// createMockObjects builds a mock database handle and a mock object for defining our expected SQL
// calls.
func createMockObjects(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	return db, mock
}

// expectPreparedStatements instructs the mock object to expect that several statements are being
// prepared.
func expectPreparedStatements(mock sqlmock.Sqlmock) {
	mock.ExpectPrepare("INSERT INTO persons")
	mock.ExpectPrepare("SELECT p.id.* WHERE p.id = \\?")
	mock.ExpectPrepare("DELETE FROM persons WHERE id = \\?")
	mock.ExpectPrepare("INSERT INTO countries")
	mock.ExpectPrepare("FROM countries WHERE id = \\?")
	mock.ExpectPrepare("FROM countries WHERE country_name = \\?")
}

// newMockStore sets up the MySQL store on top of the mock database.
func newMockStore(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock) *MySQLStore {
	expectPreparedStatements(mock)
	s, err := NewMySQLStore(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	return s
}

// expectSingleRowSelect instructs the mock object to expect that a select statement for a single
// person will be executed.
func expectSingleRowSelect(mock sqlmock.Sqlmock, id uuid.UUID, name string, countryID *uuid.UUID, countryName *string) {
	var country, countryNameValue any
	if countryID != nil {
		country = countryID.String()
	}
	if countryName != nil {
		countryNameValue = *countryName
	}
	rows := mock.NewRows(personColumns).
		AddRow(id.String(), name, "monica@example.com", time.Date(1990, time.November, 18, 0, 0, 0, 0, time.UTC),
			"Female", country, "548 7th Circle", true, time.Now(), countryNameValue)
	mock.ExpectQuery("FROM persons p LEFT JOIN countries c ON c.id = p.country_id WHERE p.id = \\?").
		WithArgs(id.String()).
		WillReturnRows(rows)
}

// TestMySQLGetPersonByID selects a person with a joined country. It expects the country to be
// resolved on the returned person.
func TestMySQLGetPersonByID(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newMockStore(t, db, mock)

	id := uuid.New()
	countryID := uuid.New()
	germany := "Germany"
	expectSingleRowSelect(mock, id, "Monica", &countryID, &germany)

	person, err := s.GetPersonByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, id, person.ID)
	assert.Equal(t, "Monica", person.PersonName)
	assert.Equal(t, time.Date(1990, time.November, 18, 0, 0, 0, 0, time.UTC), *person.DateOfBirth)
	assert.True(t, person.ReceiveNewsLetters)
	require.NotNil(t, person.CountryID)
	assert.Equal(t, countryID, *person.CountryID)
	require.NotNil(t, person.Country)
	assert.Equal(t, "Germany", person.Country.Name)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestMySQLGetPersonByIDMissingCountry selects a person whose country no longer exists. It expects
// the person to be returned without a country.
func TestMySQLGetPersonByIDMissingCountry(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newMockStore(t, db, mock)

	id := uuid.New()
	countryID := uuid.New()
	expectSingleRowSelect(mock, id, "Veronica", &countryID, nil)

	person, err := s.GetPersonByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, person)
	assert.Equal(t, countryID, *person.CountryID)
	assert.Nil(t, person.Country)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestMySQLGetPersonByIDNotFound expects nil without an error when no row matches.
func TestMySQLGetPersonByIDNotFound(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newMockStore(t, db, mock)

	id := uuid.New()
	mock.ExpectQuery("WHERE p.id = \\?").
		WithArgs(id.String()).
		WillReturnRows(mock.NewRows(personColumns))

	person, err := s.GetPersonByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, person)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestMySQLAddPerson inserts a person and expects it to be read back with its country.
func TestMySQLAddPerson(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newMockStore(t, db, mock)

	countryID := uuid.New()
	person := newTestPerson("Monica", &countryID)
	mock.ExpectExec("INSERT INTO persons").
		WithArgs(
			person.ID.String(),
			"Monica",
			"Monica@example.com",
			*person.DateOfBirth,
			"Female",
			countryID.String(),
			"548 7th Circle",
			false,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	germany := "Germany"
	expectSingleRowSelect(mock, person.ID, "Monica", &countryID, &germany)

	added, err := s.AddPerson(context.Background(), person)
	require.NoError(t, err)
	assert.Equal(t, person.ID, added.ID)
	require.NotNil(t, added.Country)
	assert.Equal(t, "Germany", added.Country.Name)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestMySQLAddPersonStorageFailure expects an insert error to be returned to the caller.
func TestMySQLAddPersonStorageFailure(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newMockStore(t, db, mock)

	failure := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO persons").WillReturnError(failure)

	_, err := s.AddPerson(context.Background(), newTestPerson("Monica", nil))
	assert.ErrorIs(t, err, failure)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestMySQLGetAllPersons selects all persons and expects them in the order of the rows.
func TestMySQLGetAllPersons(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newMockStore(t, db, mock)

	dob := time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)
	countryID := uuid.New()
	rows := mock.NewRows(personColumns).
		AddRow(uuid.NewString(), "Aaron", "aaron@example.com", dob, "Male", countryID.String(), "", false, time.Now(), "Norway").
		AddRow(uuid.NewString(), "Berta", "berta@example.com", dob, "Female", nil, "", true, time.Now(), nil)
	mock.ExpectQuery("FROM persons p LEFT JOIN countries c ON c.id = p.country_id ORDER BY p.created_at, p.id").
		WillReturnRows(rows)

	persons, err := s.GetAllPersons(context.Background())
	require.NoError(t, err)
	require.Len(t, persons, 2)
	assert.Equal(t, "Aaron", persons[0].PersonName)
	assert.Equal(t, "Norway", persons[0].Country.Name)
	assert.Equal(t, "Berta", persons[1].PersonName)
	assert.Nil(t, persons[1].CountryID)
	assert.Nil(t, persons[1].Country)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestMySQLUpdatePerson updates a person and expects the full person after the update.
func TestMySQLUpdatePerson(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newMockStore(t, db, mock)

	person := newTestPerson("Monica", nil)
	mock.ExpectExec("UPDATE persons").
		WithArgs("Monica", "Monica@example.com", *person.DateOfBirth, "Female", nil, "548 7th Circle", false,
			person.ID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectSingleRowSelect(mock, person.ID, "Monica", nil, nil)

	updated, err := s.UpdatePerson(context.Background(), person)
	require.NoError(t, err)
	assert.Equal(t, person.ID, updated.ID)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestMySQLUpdatePersonNotFound expects ErrNotFound when the update matches no row.
func TestMySQLUpdatePersonNotFound(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newMockStore(t, db, mock)

	mock.ExpectExec("UPDATE persons").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.UpdatePerson(context.Background(), newTestPerson("Nobody", nil))
	assert.ErrorIs(t, err, ErrNotFound)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestMySQLDeletePersonByID deletes an existing and a missing person.
func TestMySQLDeletePersonByID(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newMockStore(t, db, mock)

	id := uuid.New()
	mock.ExpectExec("DELETE FROM persons WHERE id = \\?").
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM persons WHERE id = \\?").
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := s.DeletePersonByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.DeletePersonByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, removed)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestMySQLAddCountryDuplicate expects a duplicate key error from MySQL to become ErrDuplicate.
func TestMySQLAddCountryDuplicate(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newMockStore(t, db, mock)

	mock.ExpectExec("INSERT INTO countries").
		WithArgs(sqlmock.AnyArg(), "USA", sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'USA'"})

	_, err := s.AddCountry(context.Background(), &model.Country{ID: uuid.New(), Name: "USA"})
	assert.ErrorIs(t, err, ErrDuplicate)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestMySQLCountryLookups selects countries by name, by id, and all of them.
func TestMySQLCountryLookups(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()
	s := newMockStore(t, db, mock)

	id := uuid.New()
	columns := []string{"id", "country_name", "created_at"}
	mock.ExpectQuery("FROM countries WHERE country_name = \\?").
		WithArgs("Canada").
		WillReturnRows(mock.NewRows(columns).AddRow(id.String(), "Canada", time.Now()))
	mock.ExpectQuery("FROM countries WHERE id = \\?").
		WithArgs(id.String()).
		WillReturnRows(mock.NewRows(columns))
	mock.ExpectQuery("FROM countries ORDER BY created_at, id").
		WillReturnRows(mock.NewRows(columns).
			AddRow(uuid.NewString(), "USA", time.Now()).
			AddRow(id.String(), "Canada", time.Now()))

	byName, err := s.GetCountryByName(context.Background(), "Canada")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, id, byName.ID)

	byID, err := s.GetCountryByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, byID)

	all, err := s.GetAllCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "USA", all[0].Name)
	assert.Equal(t, "Canada", all[1].Name)
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
