package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	api "gitlab.com/dirk.krummacker/persons-service/pkg/model"
)

// Country is a country a person can live in. Country names are unique.
type Country struct {
	ID   uuid.UUID `json:"id"   db:"id"           gorm:"type:uuid;primaryKey"`
	Name string    `json:"name" db:"country_name" gorm:"column:country_name;size:100;not null;uniqueIndex"`

	CreatedAt time.Time `json:"-" db:"created_at"`
}

// TableName sets the table name for the OR mapper.
func (Country) TableName() string {
	return "countries"
}

// ToResponse converts the country into its API representation.
func (c Country) ToResponse() api.CountryResponse {
	return api.CountryResponse{CountryID: c.ID, CountryName: c.Name}
}

// Person is the stored data of a person that we know.
// CountryID is a weak reference: the person stays valid when the country is missing. Country is
// only set when the storage layer has joined the referenced row.
type Person struct {
	ID                 uuid.UUID  `db:"id"                   gorm:"type:uuid;primaryKey"`
	PersonName         string     `db:"person_name"          gorm:"size:40"`
	Email              string     `db:"email"                gorm:"size:40"`
	DateOfBirth        *time.Time `db:"date_of_birth"        gorm:"type:date"`
	Gender             string     `db:"gender"               gorm:"size:10"`
	CountryID          *uuid.UUID `db:"country_id"           gorm:"type:uuid"`
	Address            string     `db:"address"              gorm:"size:200"`
	ReceiveNewsLetters bool       `db:"receive_news_letters"`
	CreatedAt          time.Time  `db:"created_at"`
	Country            *Country   `db:"-"                    gorm:"foreignKey:CountryID"`
}

// TableName sets the table name for the OR mapper.
func (Person) TableName() string {
	return "persons"
}

// NewPerson maps an add request onto a person with the given id.
func NewPerson(id uuid.UUID, req *api.PersonAddRequest) *Person {
	return &Person{
		ID:                 id,
		PersonName:         req.PersonName,
		Email:              req.Email,
		DateOfBirth:        req.DateOfBirth,
		Gender:             string(req.Gender),
		CountryID:          req.CountryID,
		Address:            req.Address,
		ReceiveNewsLetters: req.ReceiveNewsLetters,
	}
}

// Apply overwrites all mutable fields with the values of the update request.
func (p *Person) Apply(req *api.PersonUpdateRequest) {
	p.PersonName = req.PersonName
	p.Email = req.Email
	p.DateOfBirth = req.DateOfBirth
	p.Gender = string(req.Gender)
	p.CountryID = req.CountryID
	p.Address = req.Address
	p.ReceiveNewsLetters = req.ReceiveNewsLetters
	if p.Country != nil && (p.CountryID == nil || *p.CountryID != p.Country.ID) {
		p.Country = nil
	}
}

// ToResponse converts the person into its API projection. The age is computed relative to now.
func (p *Person) ToResponse(now time.Time) api.PersonResponse {
	resp := api.PersonResponse{
		PersonID:           p.ID,
		PersonName:         p.PersonName,
		Email:              p.Email,
		DateOfBirth:        p.DateOfBirth,
		Gender:             p.Gender,
		CountryID:          p.CountryID,
		Address:            p.Address,
		ReceiveNewsLetters: p.ReceiveNewsLetters,
	}
	if p.Country != nil {
		resp.Country = p.Country.Name
	}
	if p.DateOfBirth != nil {
		age := Age(*p.DateOfBirth, now)
		resp.Age = &age
	}
	return resp
}

// Age returns the number of years between the date of birth and now, rounded to the nearest
// whole year.
func Age(dateOfBirth time.Time, now time.Time) int {
	days := now.Sub(dateOfBirth).Hours() / 24
	return int(math.Round(days / 365.25))
}
