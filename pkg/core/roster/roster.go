package roster

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jakechorley/duty-rota/pkg/core/model"
)

var (
	// ErrSchema is returned when the roster columns are not exactly Columns
	ErrSchema = errors.New("roster columns do not match")

	// ErrInvalidRecord is returned when a roster row fails validation
	ErrInvalidRecord = errors.New("invalid roster record")
)

// Columns is the exact set of headers a roster must have, in any order
var Columns = []string{"Name", "Email", "Available"}

// Availability values accepted in the Available column (case-insensitive)
const (
	AvailableYes = "yes"
	AvailableNo  = "no"
)

// Record is a roster row as read from a spreadsheet
type Record struct {
	Row       int    `validate:"-"`
	Name      string `validate:"required"`
	Email     string `validate:"required,email"`
	Available string `validate:"required,oneof=yes no"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// CheckColumns trims the headers and verifies they are exactly Columns.
// It returns the index of each column.
func CheckColumns(headers []string) (map[string]int, error) {
	actual := make([]string, 0, len(headers))
	indexes := make(map[string]int, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		actual = append(actual, header)
		indexes[header] = i
	}

	expected := slices.Sorted(slices.Values(Columns))
	got := slices.Sorted(slices.Values(actual))
	if !slices.Equal(expected, got) {
		return nil, fmt.Errorf("%w: expected %v, got %v", ErrSchema, Columns, actual)
	}

	return indexes, nil
}

// ParseRows converts raw sheet rows (header first) into records.
// Cells are trimmed, availability is lower-cased and fully blank rows are skipped.
func ParseRows(rows [][]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrSchema)
	}

	indexes, err := CheckColumns(rows[0])
	if err != nil {
		return nil, err
	}

	cell := func(row []string, column string) string {
		idx := indexes[column]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		records = append(records, Record{
			Row:       i + 2,
			Name:      cell(row, "Name"),
			Email:     cell(row, "Email"),
			Available: strings.ToLower(cell(row, "Available")),
		})
	}

	return records, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Validate checks every record and that names are unique
func Validate(records []Record) error {
	var errs []error
	seen := make(map[string]int, len(records))

	for _, record := range records {
		if err := validate.Struct(record); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) {
				for _, fe := range fieldErrs {
					errs = append(errs, fmt.Errorf("%w: row %d: %s failed %q", ErrInvalidRecord, record.Row, fe.Field(), fe.Tag()))
				}
				continue
			}
			return fmt.Errorf("failed to validate row %d: %w", record.Row, err)
		}

		if firstRow, ok := seen[record.Name]; ok {
			errs = append(errs, fmt.Errorf("%w: row %d: duplicate name %q (first seen on row %d)", ErrInvalidRecord, record.Row, record.Name, firstRow))
			continue
		}
		seen[record.Name] = record.Row
	}

	return errors.Join(errs...)
}

// ToPeople converts validated records to people
func ToPeople(records []Record) []model.Person {
	people := make([]model.Person, 0, len(records))
	for _, record := range records {
		people = append(people, model.Person{
			Name:      record.Name,
			Email:     record.Email,
			Available: record.Available == AvailableYes,
		})
	}
	return people
}

// Parse checks, validates and converts raw rows into people
func Parse(rows [][]string) ([]model.Person, error) {
	records, err := ParseRows(rows)
	if err != nil {
		return nil, err
	}
	if err := Validate(records); err != nil {
		return nil, err
	}
	return ToPeople(records), nil
}

// AvailableCount returns how many people are available
func AvailableCount(people []model.Person) int {
	count := 0
	for _, p := range people {
		if p.Available {
			count++
		}
	}
	return count
}

// FormatAvailable renders availability the way the roster spells it
func FormatAvailable(available bool) string {
	if available {
		return AvailableYes
	}
	return AvailableNo
}
