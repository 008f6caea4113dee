package integrationtest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/persons-service/internal/core"
	"gitlab.com/dirk.krummacker/persons-service/internal/metrics"
	"gitlab.com/dirk.krummacker/persons-service/internal/service"
	"gitlab.com/dirk.krummacker/persons-service/internal/store"
	api "gitlab.com/dirk.krummacker/persons-service/pkg/model"
	"go.uber.org/zap"
)

// setupRouter connects to the MySQL database named by the environment and returns the router of
// the persons service. The test is skipped if no database is configured.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	if os.Getenv("DBHOST") == "" {
		t.Skip("DBHOST not set, skipping integration test")
	}
	dbName := os.Getenv("DBNAME")
	if dbName == "" {
		dbName = "test"
	}
	sqlDB, err := store.CreateDatabase(os.Getenv("DBUSER"), os.Getenv("DBPWD"), os.Getenv("DBHOST"), dbName)
	require.NoError(t, err)
	s, err := store.NewMySQLStore(context.Background(), sqlDB, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	gin.SetMode(gin.ReleaseMode)
	m := metrics.New(prometheus.NewRegistry())
	countries := core.NewCountryDirectory(s, zap.NewNop(), m)
	persons := core.NewPersonService(s, countries, zap.NewNop(), m)
	return service.SetupHttpRouter(persons, countries, zap.NewNop(), service.Options{})
}

// serve executes the HTTP request with the specified arguments and returns the response.
func serve(router *gin.Engine, method string, url string, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest(method, url, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)
	return recorder
}

// createPerson posts a valid person with the given name and returns its id.
func createPerson(t *testing.T, router *gin.Engine, name string) string {
	t.Helper()
	recorder := serve(router, "POST", "/persons", `
		{
			"personName": "`+name+`",
			"email": "erika@example.com",
			"dateOfBirth": "1969-03-02T00:00:00Z",
			"gender": "Female"
		}
	`)
	require.Equal(t, http.StatusCreated, recorder.Code)
	var created api.PersonResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	return created.PersonID.String()
}

// deletePerson removes a person created by a test.
func deletePerson(t *testing.T, router *gin.Engine, id string) {
	t.Helper()
	recorder := serve(router, "DELETE", "/persons/"+id, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

// TestPersonHappyPath tests a POST, GET, PUT, and DELETE with valid data.
func TestPersonHappyPath(t *testing.T) {
	router := setupRouter(t)

	// test the endpoint for creating a person
	id := createPerson(t, router, "Erika Mustermann")

	// test the endpoint for finding a person
	getRecorder := serve(router, "GET", "/persons/"+id, "")
	assert.Equal(t, http.StatusOK, getRecorder.Code)
	var getBody map[string]interface{}
	require.NoError(t, json.Unmarshal(getRecorder.Body.Bytes(), &getBody))
	assert.Equal(t, id, getBody["personId"])
	assert.Equal(t, "Erika Mustermann", getBody["personName"])
	assert.Equal(t, "erika@example.com", getBody["email"])
	assert.Equal(t, "1969-03-02T00:00:00Z", getBody["dateOfBirth"])

	// test the endpoint for updating a person
	putRecorder := serve(router, "PUT", "/persons/"+id, `
		{
			"personName": "Rudi Völler",
			"email": "rudi@example.com",
			"dateOfBirth": "1960-04-13T00:00:00Z",
			"gender": "Male",
			"receiveNewsLetters": true
		}
	`)
	assert.Equal(t, http.StatusOK, putRecorder.Code)

	// test if a subsequent lookup of the person returns the updated values
	getAgainRecorder := serve(router, "GET", "/persons/"+id, "")
	assert.Equal(t, http.StatusOK, getAgainRecorder.Code)
	var getAgainBody map[string]interface{}
	require.NoError(t, json.Unmarshal(getAgainRecorder.Body.Bytes(), &getAgainBody))
	assert.Equal(t, "Rudi Völler", getAgainBody["personName"])
	assert.Equal(t, "Male", getAgainBody["gender"])
	assert.Equal(t, "1960-04-13T00:00:00Z", getAgainBody["dateOfBirth"])
	assert.Equal(t, true, getAgainBody["receiveNewsLetters"])

	// an update with unchanged values must still succeed
	putAgainRecorder := serve(router, "PUT", "/persons/"+id, `
		{
			"personName": "Rudi Völler",
			"email": "rudi@example.com",
			"dateOfBirth": "1960-04-13T00:00:00Z",
			"gender": "Male",
			"receiveNewsLetters": true
		}
	`)
	assert.Equal(t, http.StatusOK, putAgainRecorder.Code)

	// test the endpoint for deleting a person
	deletePerson(t, router, id)

	// test if a final lookup of the person will correctly not find it
	getFinalRecorder := serve(router, "GET", "/persons/"+id, "")
	assert.Equal(t, http.StatusNotFound, getFinalRecorder.Code)
}

// TestCreatePersonInvalidBody tests a POST with different forms of invalid request body data.
func TestCreatePersonInvalidBody(t *testing.T) {
	router := setupRouter(t)
	invalidRequestBodies := []string{
		"",
		"not JSON",
		"{}",
		`{
			"personName": "Erika"
			"email": "erika@example.com"
		}`, // commas missing
	}
	for _, body := range invalidRequestBodies {
		recorder := serve(router, "POST", "/persons", body)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "request body: "+body)
	}
}

// TestUpdatePersonInvalidId tests a PUT with an invalid id.
func TestUpdatePersonInvalidId(t *testing.T) {
	router := setupRouter(t)
	recorder := serve(router, "PUT", "/persons/invalid", `
		{
			"personName": "Rudi Völler",
			"email": "rudi@example.com",
			"dateOfBirth": "1960-04-13T00:00:00Z",
			"gender": "Male"
		}
	`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// TestFindPersonsWithSearchString retrieves all persons whose name contains certain letters and
// verifies that a previously created person with a matching name is among them, and another
// previously created person with a non-matching name is not.
func TestFindPersonsWithSearchString(t *testing.T) {
	router := setupRouter(t)
	marker := uuid.NewString()[:8]
	matchingId := createPerson(t, router, "Julius "+marker)
	nonMatchingId := createPerson(t, router, "Marc Anton")

	recorder := serve(router, "GET", "/persons?searchBy=PersonName&searchString="+strings.ToUpper(marker), "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	var persons []api.PersonResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &persons))
	var found bool
	for _, person := range persons {
		if person.PersonID.String() == matchingId {
			found = true
		} else if person.PersonID.String() == nonMatchingId {
			assert.Fail(t, "found person with non-matching name", person)
		}
	}
	assert.True(t, found, "could not find person with matching name")

	// clean up after the test
	deletePerson(t, router, matchingId)
	deletePerson(t, router, nonMatchingId)
}

// TestCreateCountryTwice verifies that country names are unique in the database.
func TestCreateCountryTwice(t *testing.T) {
	router := setupRouter(t)
	body := `{"countryName": "Atlantis ` + uuid.NewString()[:8] + `"}`

	recorder := serve(router, "POST", "/countries", body)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	recorder = serve(router, "POST", "/countries", body)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}
