package core

import "errors"

var (
	// ErrNilArgument is returned when a required request or id is absent.
	ErrNilArgument = errors.New("argument must not be nil")

	// ErrPersonNotFound is returned by UpdatePerson when no person has the requested id.
	ErrPersonNotFound = errors.New("given person id doesn't exist")

	// ErrDuplicateCountry is returned by AddCountry when the country name is already taken.
	ErrDuplicateCountry = errors.New("given country name already exists")
)
