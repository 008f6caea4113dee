package model

import (
	"time"

	"github.com/google/uuid"
)

// Gender is one of the values a person's gender may take.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// SortOrder is the direction of a sorted person list.
type SortOrder string

const (
	SortAscending  SortOrder = "ASC"
	SortDescending SortOrder = "DESC"
)

// ParseSortOrder converts the text of a 'sortOrder' URL parameter. An empty value means ascending.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case "", SortAscending:
		return SortAscending, true
	case SortDescending:
		return SortDescending, true
	}
	return "", false
}

// CountryAddRequest is the body of a request for creating a country.
type CountryAddRequest struct {
	CountryName string `json:"countryName" validate:"required,notblank,max=100"`
}

// CountryResponse is a country as returned by the API.
type CountryResponse struct {
	CountryID   uuid.UUID `json:"countryId"`
	CountryName string    `json:"countryName"`
}

// PersonAddRequest is the body of a request for creating a person. Any id sent by the caller is
// ignored; the service generates a new one.
type PersonAddRequest struct {
	PersonName         string     `json:"personName"          validate:"required,notblank,max=40"`
	Email              string     `json:"email"               validate:"required,notblank,email,max=40"`
	DateOfBirth        *time.Time `json:"dateOfBirth"         validate:"required"`
	Gender             Gender     `json:"gender"              validate:"required,oneof=Male Female Other"`
	CountryID          *uuid.UUID `json:"countryId,omitempty"`
	Address            string     `json:"address,omitempty"   validate:"max=200"`
	ReceiveNewsLetters bool       `json:"receiveNewsLetters"`
}

// PersonUpdateRequest is the body of a request for replacing all mutable fields of a person. It
// carries the same constraints as PersonAddRequest.
type PersonUpdateRequest struct {
	PersonID           uuid.UUID  `json:"personId"            validate:"required"`
	PersonName         string     `json:"personName"          validate:"required,notblank,max=40"`
	Email              string     `json:"email"               validate:"required,notblank,email,max=40"`
	DateOfBirth        *time.Time `json:"dateOfBirth"         validate:"required"`
	Gender             Gender     `json:"gender"              validate:"required,oneof=Male Female Other"`
	CountryID          *uuid.UUID `json:"countryId,omitempty"`
	Address            string     `json:"address,omitempty"   validate:"max=200"`
	ReceiveNewsLetters bool       `json:"receiveNewsLetters"`
}

// PersonResponse is the projection of a stored person. Age is derived from the date of birth at
// read time and Country is the resolved name of the referenced country, if any.
type PersonResponse struct {
	PersonID           uuid.UUID  `json:"personId"`
	PersonName         string     `json:"personName"`
	Email              string     `json:"email"`
	DateOfBirth        *time.Time `json:"dateOfBirth,omitempty"`
	Gender             string     `json:"gender"`
	CountryID          *uuid.UUID `json:"countryId,omitempty"`
	Country            string     `json:"country,omitempty"`
	Address            string     `json:"address,omitempty"`
	ReceiveNewsLetters bool       `json:"receiveNewsLetters"`
	Age                *int       `json:"age,omitempty"`
}

// ToUpdateRequest builds the update request that would leave the person unchanged.
func (p PersonResponse) ToUpdateRequest() PersonUpdateRequest {
	return PersonUpdateRequest{
		PersonID:           p.PersonID,
		PersonName:         p.PersonName,
		Email:              p.Email,
		DateOfBirth:        p.DateOfBirth,
		Gender:             Gender(p.Gender),
		CountryID:          p.CountryID,
		Address:            p.Address,
		ReceiveNewsLetters: p.ReceiveNewsLetters,
	}
}
