package core

import (
	"cmp"
	"strings"
	"time"

	api "gitlab.com/dirk.krummacker/persons-service/pkg/model"
)

// Field is a person property that lists can be filtered or sorted by.
type Field int

const (
	// FieldUnknown stands for any name that is not recognised. Filtering and sorting by it leave
	// the list as it is.
	FieldUnknown Field = iota
	FieldPersonName
	FieldEmail
	FieldDateOfBirth
	FieldAge
	FieldGender
	FieldCountry
	FieldAddress
	FieldReceiveNewsLetters
)

// searchDateLayout is how dates of birth are rendered for searching, e.g. "06 June 2004".
const searchDateLayout = "02 January 2006"

var fieldNames = map[string]Field{
	"PersonName":         FieldPersonName,
	"Email":              FieldEmail,
	"DateOfBirth":        FieldDateOfBirth,
	"Age":                FieldAge,
	"Gender":             FieldGender,
	"Country":            FieldCountry,
	"CountryID":          FieldCountry,
	"Address":            FieldAddress,
	"ReceiveNewsLetters": FieldReceiveNewsLetters,
}

// ParseField maps a property name of PersonResponse onto a Field. Names are case-sensitive.
// CountryID is accepted as an alias of Country.
func ParseField(name string) Field {
	return fieldNames[name]
}

func (f Field) String() string {
	switch f {
	case FieldPersonName:
		return "PersonName"
	case FieldEmail:
		return "Email"
	case FieldDateOfBirth:
		return "DateOfBirth"
	case FieldAge:
		return "Age"
	case FieldGender:
		return "Gender"
	case FieldCountry:
		return "Country"
	case FieldAddress:
		return "Address"
	case FieldReceiveNewsLetters:
		return "ReceiveNewsLetters"
	default:
		return "Unknown"
	}
}

// Filterable reports whether the field can be searched by text.
func (f Field) Filterable() bool {
	switch f {
	case FieldPersonName, FieldEmail, FieldDateOfBirth, FieldGender, FieldCountry, FieldAddress:
		return true
	}
	return false
}

// text returns the searchable text of the field, or "" when the person has no value.
func (f Field) text(p *api.PersonResponse) string {
	switch f {
	case FieldPersonName:
		return p.PersonName
	case FieldEmail:
		return p.Email
	case FieldDateOfBirth:
		if p.DateOfBirth == nil {
			return ""
		}
		return p.DateOfBirth.Format(searchDateLayout)
	case FieldGender:
		return p.Gender
	case FieldCountry:
		return p.Country
	case FieldAddress:
		return p.Address
	}
	return ""
}

// matches reports whether the field contains searchString, ignoring case. An empty field never
// matches.
func (f Field) matches(p *api.PersonResponse, searchString string) bool {
	text := f.text(p)
	if text == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(text), strings.ToUpper(searchString))
}

// compare orders two persons by the field in ascending order. Strings compare ordinally ignoring
// case, missing dates and ages come first, and false comes before true.
func (f Field) compare(a, b *api.PersonResponse) int {
	switch f {
	case FieldPersonName:
		return compareFold(a.PersonName, b.PersonName)
	case FieldEmail:
		return compareFold(a.Email, b.Email)
	case FieldDateOfBirth:
		return comparePtr(a.DateOfBirth, b.DateOfBirth, func(x, y time.Time) int { return x.Compare(y) })
	case FieldAge:
		return comparePtr(a.Age, b.Age, cmp.Compare[int])
	case FieldGender:
		return compareFold(a.Gender, b.Gender)
	case FieldCountry:
		return compareFold(a.Country, b.Country)
	case FieldAddress:
		return compareFold(a.Address, b.Address)
	case FieldReceiveNewsLetters:
		return compareBool(a.ReceiveNewsLetters, b.ReceiveNewsLetters)
	}
	return 0
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
}

func comparePtr[T any](a, b *T, compare func(x, y T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compare(*a, *b)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
