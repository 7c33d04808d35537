package sheetssql

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Layouts used for time.Time columns. Dates match the schedule output format.
const (
	DateLayout     = "01-02-2006"
	DateTimeLayout = time.RFC3339
)

var timeType = reflect.TypeOf(time.Time{})

// GetTableAs retrieves all rows from a table and maps them to structs of type T.
// The first two rows (headers and types) are skipped.
func GetTableAs[T any](db *DB, tableName string) ([]T, error) {
	values, err := db.client.GetValues(db.spreadsheetID, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get table %s: %w", tableName, err)
	}

	if len(values) < 3 {
		return []T{}, nil
	}

	headers := values[0]
	dataRows := values[2:]

	var model T
	t := reflect.TypeOf(model)

	columnIndexes := make(map[string]int)
	for i, header := range headers {
		if headerStr, ok := header.(string); ok {
			columnIndexes[headerStr] = i
		}
	}

	fieldMap := make(map[string]reflect.StructField)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if columnName := field.Tag.Get("ssql_header"); columnName != "" {
			fieldMap[columnName] = field
		}
	}

	results := make([]T, 0, len(dataRows))
	for rowIdx, row := range dataRows {
		if isBlankRow(row) {
			continue
		}

		result := reflect.New(t).Elem()
		for columnName, colIdx := range columnIndexes {
			field, ok := fieldMap[columnName]
			if !ok || colIdx >= len(row) || row[colIdx] == nil {
				continue
			}

			if err := setFieldValue(result.FieldByName(field.Name), field.Tag.Get("ssql_type"), row[colIdx]); err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", rowIdx+3, columnName, err)
			}
		}

		results = append(results, result.Interface().(T))
	}

	return results, nil
}

func isBlankRow(row []interface{}) bool {
	for _, cell := range row {
		if s, ok := cell.(string); !ok || s != "" {
			return false
		}
	}
	return true
}

// setFieldValue converts a sheet cell value to the field's Go type and sets it
func setFieldValue(field reflect.Value, colType string, cellValue interface{}) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	// The sheets API returns formatted strings
	cellStr, ok := cellValue.(string)
	if !ok {
		return fmt.Errorf("cell value is not a string")
	}

	if field.Type() == timeType {
		return setTimeValue(field, colType, cellStr)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(cellStr)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if cellStr == "" {
			field.SetInt(0)
			return nil
		}
		intVal, err := strconv.ParseInt(cellStr, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse int: %w", err)
		}
		field.SetInt(intVal)

	case reflect.Float32, reflect.Float64:
		if cellStr == "" {
			field.SetFloat(0)
			return nil
		}
		floatVal, err := strconv.ParseFloat(cellStr, 64)
		if err != nil {
			return fmt.Errorf("failed to parse float: %w", err)
		}
		field.SetFloat(floatVal)

	case reflect.Bool:
		if cellStr == "" {
			field.SetBool(false)
			return nil
		}
		boolVal, err := strconv.ParseBool(cellStr)
		if err != nil {
			return fmt.Errorf("failed to parse bool: %w", err)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

func setTimeValue(field reflect.Value, colType, cellStr string) error {
	if cellStr == "" {
		field.Set(reflect.ValueOf(time.Time{}))
		return nil
	}

	layout := DateTimeLayout
	if colType == "date" {
		layout = DateLayout
	}

	parsed, err := time.Parse(layout, cellStr)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", colType, err)
	}
	field.Set(reflect.ValueOf(parsed))
	return nil
}

// formatCell renders a field for writing, formatting times by column type
func formatCell(value reflect.Value, colType string) interface{} {
	if value.Type() == timeType {
		ts := value.Interface().(time.Time)
		if ts.IsZero() {
			return ""
		}
		if colType == "date" {
			return ts.Format(DateLayout)
		}
		return ts.UTC().Format(DateTimeLayout)
	}
	return value.Interface()
}

// modelRow builds a sheet row from the tagged fields of a struct
func modelRow(t reflect.Type, v reflect.Value) []interface{} {
	row := make([]interface{}, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("ssql_header") == "" {
			continue
		}
		row = append(row, formatCell(v.Field(i), field.Tag.Get("ssql_type")))
	}
	return row
}

// InsertModel appends a struct as a row to its table
func InsertModel[T any](db *DB, model T) error {
	t := reflect.TypeOf(model)
	return db.InsertRow(tableName(t), modelRow(t, reflect.ValueOf(model)))
}

// InsertModels appends multiple structs as rows to their table
func InsertModels[T any](db *DB, models []T) error {
	if len(models) == 0 {
		return nil
	}

	t := reflect.TypeOf(models[0])
	rows := make([][]interface{}, 0, len(models))
	for _, model := range models {
		rows = append(rows, modelRow(t, reflect.ValueOf(model)))
	}

	return db.InsertRows(tableName(t), rows)
}
