package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gitlab.com/dirk.krummacker/persons-service/internal/model"
	"go.uber.org/zap"
)

// defaultCountries are the countries every new installation starts with.
var defaultCountries = []model.Country{
	{ID: uuid.MustParse("A308DFE4-479D-42E0-8506-5ED01B8F1C62"), Name: "USA"},
	{ID: uuid.MustParse("828EDC8D-438C-4C8A-A03F-3368F8C4EA19"), Name: "Canada"},
	{ID: uuid.MustParse("41E6C698-100B-45E6-8F21-831E106AAAE3"), Name: "UK"},
	{ID: uuid.MustParse("7CCF8F21-4757-415A-B696-94A8465A6D65"), Name: "France"},
	{ID: uuid.MustParse("06E1FDA9-68B4-4688-AEB3-5BBC33FAA559"), Name: "Germany"},
	{ID: uuid.MustParse("44E78C26-8B7D-4207-9980-3F7740D9C03E"), Name: "Norway"},
}

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func ref(id uuid.UUID) *uuid.UUID {
	return &id
}

// defaultPersons are demo persons, one per default country.
var defaultPersons = []model.Person{
	{
		ID:          uuid.MustParse("BF0DFD8F-EDE8-4D27-846D-6A2FA0414FAB"),
		PersonName:  "Jorey",
		Email:       "jnore0@google.com",
		DateOfBirth: date(2004, time.June, 6),
		Gender:      "Female",
		CountryID:   ref(defaultCountries[0].ID),
		Address:     "0913 Eggendart Lane",
	},
	{
		ID:                 uuid.MustParse("6402182C-55A1-47B0-A12B-A2F11E595A27"),
		PersonName:         "Jenda",
		Email:              "jmccahey1@plala.or.jp",
		DateOfBirth:        date(1995, time.November, 21),
		Gender:             "Female",
		CountryID:          ref(defaultCountries[1].ID),
		Address:            "0064 Monument Park",
		ReceiveNewsLetters: true,
	},
	{
		ID:                 uuid.MustParse("43F26DF8-2F58-4D81-B4FB-0133EA6A2219"),
		PersonName:         "Hewitt",
		Email:              "hzecchetti2@omniture.com",
		DateOfBirth:        date(2004, time.June, 23),
		Gender:             "Male",
		CountryID:          ref(defaultCountries[2].ID),
		Address:            "172 Badeau Street",
		ReceiveNewsLetters: true,
	},
	{
		ID:                 uuid.MustParse("0C77CCF3-58BA-4909-B263-C3067AB3564B"),
		PersonName:         "Lotta",
		Email:              "lwinkworth3@hhs.gov",
		DateOfBirth:        date(2008, time.August, 2),
		Gender:             "Female",
		CountryID:          ref(defaultCountries[3].ID),
		Address:            "350 Evergreen Junction",
		ReceiveNewsLetters: true,
	},
	{
		ID:                 uuid.MustParse("AB642EBB-0D06-4A01-9E99-6EF8BB8116A6"),
		PersonName:         "Dolly",
		Email:              "dhierro4@hatena.ne.jp",
		DateOfBirth:        date(2009, time.July, 12),
		Gender:             "Female",
		CountryID:          ref(defaultCountries[4].ID),
		Address:            "458 Kings Pass",
		ReceiveNewsLetters: true,
	},
	{
		ID:          uuid.MustParse("AEA39288-27D8-4D88-9FC8-9D8038C89157"),
		PersonName:  "Adlai",
		Email:       "akeesman5@slashdot.org",
		DateOfBirth: date(1997, time.July, 27),
		Gender:      "Male",
		CountryID:   ref(defaultCountries[5].ID),
		Address:     "66 Anthes Crossing",
	},
}

// Seed enters the default countries and persons into the store. Records that are already present
// (countries by name, persons by id) are not added again.
func Seed(ctx context.Context, s Store, log *zap.Logger) error {
	added := 0
	for _, country := range defaultCountries {
		existing, err := s.GetCountryByName(ctx, country.Name)
		if err != nil {
			return fmt.Errorf("seed country %s: %w", country.Name, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.AddCountry(ctx, &country); err != nil {
			return fmt.Errorf("seed country %s: %w", country.Name, err)
		}
		added++
	}
	for _, person := range defaultPersons {
		existing, err := s.GetPersonByID(ctx, person.ID)
		if err != nil {
			return fmt.Errorf("seed person %s: %w", person.ID, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.AddPerson(ctx, &person); err != nil {
			return fmt.Errorf("seed person %s: %w", person.ID, err)
		}
		added++
	}
	log.Info("seeded database", zap.Int("added", added))
	return nil
}
