// Package export renders person projections as CSV and as an Excel workbook.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
	"gitlab.com/dirk.krummacker/persons-service/pkg/model"
)

// Header is the fixed first row of every export.
var Header = []string{
	"PersonName", "Email", "DateOfBirth", "Age", "Gender", "Country", "Address", "ReceiveNewsLetters",
}

// SheetName is the name of the worksheet in the Excel export.
const SheetName = "PersonsSheet"

const dateLayout = "2006-01-02"

// record returns the export columns of a person in the order of Header.
func record(p model.PersonResponse) []string {
	var dateOfBirth, age string
	if p.DateOfBirth != nil {
		dateOfBirth = p.DateOfBirth.Format(dateLayout)
	}
	if p.Age != nil {
		age = strconv.Itoa(*p.Age)
	}
	return []string{
		p.PersonName,
		p.Email,
		dateOfBirth,
		age,
		p.Gender,
		p.Country,
		p.Address,
		strconv.FormatBool(p.ReceiveNewsLetters),
	}
}

// CSV encodes the persons as comma separated values with a header row.
func CSV(persons []model.PersonResponse) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range persons {
		if err := w.Write(record(p)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Excel encodes the persons as an xlsx workbook with a single sheet and a styled header row.
func Excel(persons []model.PersonResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// A new file starts with "Sheet1".
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D3D3D3"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, p := range persons {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{p.PersonName, p.Email, "", "", p.Gender, p.Country, p.Address, p.ReceiveNewsLetters}
		if p.DateOfBirth != nil {
			row[2] = p.DateOfBirth.Format(dateLayout)
		}
		if p.Age != nil {
			row[3] = *p.Age
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(SheetName, "A", "H", 20); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
