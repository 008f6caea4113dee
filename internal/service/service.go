// Package service exposes the person and country operations as a REST API.
package service

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.com/dirk.krummacker/persons-service/internal/core"
	"gitlab.com/dirk.krummacker/persons-service/internal/logging"
	"gitlab.com/dirk.krummacker/persons-service/internal/validation"
	api "gitlab.com/dirk.krummacker/persons-service/pkg/model"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Options control the optional parts of the router.
type Options struct {
	// RequestLogging turns the per-request log line on or off.
	RequestLogging bool

	// CORSOrigins are the origins allowed to call the API from a browser. CORS is off when empty.
	CORSOrigins []string

	// Gatherer is the source of the /metrics endpoint. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// handler holds the dependencies of the HTTP endpoints.
type handler struct {
	persons   *core.PersonService
	countries *core.CountryDirectory
	log       *zap.Logger
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func SetupHttpRouter(persons *core.PersonService, countries *core.CountryDirectory, log *zap.Logger, opts Options) *gin.Engine {
	h := &handler{persons: persons, countries: countries, log: log.Named("http")}

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLogging {
		router.Use(logging.RequestLogger(h.log))
	} else {
		h.log.Info("Turning off HTTP request logging.")
	}
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
		}))
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router.GET("/healthcheck", healthcheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/persons", h.findPersons)
	router.POST("/persons", h.createPerson)
	router.GET("/persons/:id", h.findPersonByID)
	router.PUT("/persons/:id", h.updatePersonByID)
	router.DELETE("/persons/:id", h.deletePersonByID)
	router.GET("/countries", h.findCountries)
	router.POST("/countries", h.createCountry)
	router.GET("/countries/:id", h.findCountryByID)
	router.GET("/export/persons.csv", h.exportCSV)
	router.GET("/export/persons.xlsx", h.exportExcel)
	return router
}

// healthcheck answers as soon as the service is able to handle requests.
//
// Example REST API call:
//
//	> curl http://localhost:8080/healthcheck
func healthcheck(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{"message": "ok"})
}

// respondError translates an error of the core layer into an HTTP response.
func (h *handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, validation.ErrInvalid), errors.Is(err, core.ErrNilArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, core.ErrPersonNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "person not found"})
	case errors.Is(err, core.ErrDuplicateCountry):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		_ = c.Error(err)
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}

// parseID reads the id parameter of the request URL. A malformed id cannot name any record, so it
// is answered with NOT FOUND.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return uuid.Nil, false
	}
	return id, true
}

// findPersons responds with a list of persons as JSON.
//
// The URL parameter 'searchBy' names the person property to search in and 'searchString' is the
// text it must contain, ignoring case. Valid values for 'searchBy' are 'PersonName', 'Email',
// 'DateOfBirth', 'Gender', 'Country' and 'Address'; any other value is replaced by 'PersonName'.
// If 'searchString' is empty, all persons are returned.
//
// The URL parameter 'sortBy' names the property by which the results are sorted and defaults to
// 'PersonName'. 'sortOrder' is either 'ASC' (the default) or 'DESC'.
//
// REST API calls:
//
//	> curl "http://localhost:8080/persons"
//	> curl "http://localhost:8080/persons?searchBy=Email&searchString=google"
//	> curl "http://localhost:8080/persons?sortBy=DateOfBirth&sortOrder=DESC"
func (h *handler) findPersons(c *gin.Context) {
	searchBy := c.Query("searchBy")
	if !core.ParseField(searchBy).Filterable() {
		if searchBy != "" {
			h.log.Info("unsupported searchBy parameter, searching by PersonName", zap.String("searchBy", searchBy))
		}
		searchBy = core.FieldPersonName.String()
	}
	sortBy := c.DefaultQuery("sortBy", core.FieldPersonName.String())
	order, ok := api.ParseSortOrder(c.Query("sortOrder"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid sortOrder parameter"})
		return
	}

	persons, err := h.persons.GetFilteredPersons(c.Request.Context(), searchBy, c.Query("searchString"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, h.persons.GetSortedPersons(persons, sortBy, order))
}

// createPerson stores the person specified in the request's JSON. It responds with the full person
// data including the newly assigned id.
//
// Example REST API call:
//
//	> curl http://localhost:8080/persons --request "POST" --include --header "Content-Type: application/json" --data '{"personName": "Hans Wurst", "email": "hans@example.com", "dateOfBirth": "1969-03-02T00:00:00Z", "gender": "Male"}'
func (h *handler) createPerson(c *gin.Context) {
	var req api.PersonAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	added, err := h.persons.AddPerson(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, added)
}

// findPersonByID responds with the person whose id matches the id parameter of the request URL.
//
// Example REST API call:
//
//	> curl http://localhost:8080/persons/c03bbe45-9aeb-4d24-99e0-4f8bf0a2a3b4
func (h *handler) findPersonByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	person, err := h.persons.GetPersonByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if person == nil {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "person not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, person)
}

// updatePersonByID replaces all mutable fields of the person whose id matches the id parameter of
// the request URL, and responds with the new version of the person. The id in the URL takes
// precedence over one in the JSON.
//
// Example REST API call:
//
//	> curl http://localhost:8080/persons/c03bbe45-9aeb-4d24-99e0-4f8bf0a2a3b4 --request "PUT" --include --header "Content-Type: application/json" --data '{"personName": "Hans Wurst", "email": "hans@example.com", "dateOfBirth": "1969-03-02T00:00:00Z", "gender": "Male", "receiveNewsLetters": true}'
func (h *handler) updatePersonByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req api.PersonUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	req.PersonID = id

	updated, err := h.persons.UpdatePerson(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, updated)
}

// deletePersonByID deletes the person whose id matches the id parameter of the request URL.
//
// Example REST API call:
//
//	> curl http://localhost:8080/persons/c03bbe45-9aeb-4d24-99e0-4f8bf0a2a3b4 --request "DELETE"
func (h *handler) deletePersonByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	deleted, err := h.persons.DeletePerson(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if deleted {
		c.IndentedJSON(http.StatusOK, gin.H{"message": "person deleted"})
	} else {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "person not found"})
	}
}

// findCountries responds with all countries in the order they were added.
func (h *handler) findCountries(c *gin.Context) {
	countries, err := h.countries.GetAllCountries(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, countries)
}

// createCountry stores a new country. Country names must be unique.
//
// Example REST API call:
//
//	> curl http://localhost:8080/countries --request "POST" --include --header "Content-Type: application/json" --data '{"countryName": "Japan"}'
func (h *handler) createCountry(c *gin.Context) {
	var req api.CountryAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	added, err := h.countries.AddCountry(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, added)
}

func (h *handler) findCountryByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	country, err := h.countries.GetCountryByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if country == nil {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": "country not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, country)
}

// exportCSV responds with all persons as a CSV file download.
//
// Example REST API call:
//
//	> curl -O http://localhost:8080/export/persons.csv
func (h *handler) exportCSV(c *gin.Context) {
	data, err := h.persons.GetPersonsCSV(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="persons.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// exportExcel responds with all persons as an Excel workbook download.
func (h *handler) exportExcel(c *gin.Context) {
	data, err := h.persons.GetPersonsExcel(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="persons.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
