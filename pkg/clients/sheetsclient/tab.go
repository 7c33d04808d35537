package sheetsclient

import (
	"fmt"
	"slices"

	"github.com/jakechorley/duty-rota/pkg/core/model"
	"github.com/jakechorley/duty-rota/pkg/core/roster"
)

// API is the subset of Client a Tab needs
type API interface {
	GetValues(spreadsheetID, sheetRange string) ([][]interface{}, error)
	UpdateValues(spreadsheetID, sheetRange string, values [][]interface{}) error
	ClearValues(spreadsheetID, sheetRange string) error
	CreateSheet(spreadsheetID, sheetTitle string) (int64, error)
	SheetTitles(spreadsheetID string) ([]string, error)
}

// Tab is one tab of a spreadsheet used as a roster source or a schedule destination
type Tab struct {
	api           API
	spreadsheetID string
	title         string
}

// NewTab binds a spreadsheet tab
func NewTab(api API, spreadsheetID, title string) *Tab {
	return &Tab{api: api, spreadsheetID: spreadsheetID, title: title}
}

// Location describes the tab for logs
func (t *Tab) Location() string {
	return fmt.Sprintf("sheets:%s/%s", t.spreadsheetID, t.title)
}

// ReadRoster reads and validates the roster from the tab
func (t *Tab) ReadRoster() ([]model.Person, error) {
	values, err := t.api.GetValues(t.spreadsheetID, t.title)
	if err != nil {
		return nil, fmt.Errorf("failed to get roster data: %w", err)
	}

	people, err := roster.Parse(cellStrings(values))
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster from %s: %w", t.Location(), err)
	}
	return people, nil
}

// WriteSchedule replaces the tab contents with the schedule, creating the tab if needed
func (t *Tab) WriteSchedule(schedule model.Schedule) error {
	titles, err := t.api.SheetTitles(t.spreadsheetID)
	if err != nil {
		return err
	}

	if !slices.Contains(titles, t.title) {
		if _, err := t.api.CreateSheet(t.spreadsheetID, t.title); err != nil {
			return fmt.Errorf("failed to create schedule tab: %w", err)
		}
	} else if err := t.api.ClearValues(t.spreadsheetID, t.title); err != nil {
		return fmt.Errorf("failed to clear schedule tab: %w", err)
	}

	if err := t.api.UpdateValues(t.spreadsheetID, t.title+"!A1", scheduleValues(schedule)); err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}
	return nil
}

// cellStrings converts API values to strings; the API returns formatted strings already
func cellStrings(values [][]interface{}) [][]string {
	rows := make([][]string, 0, len(values))
	for _, row := range values {
		cells := make([]string, len(row))
		for i, cell := range row {
			if s, ok := cell.(string); ok {
				cells[i] = s
			} else if cell != nil {
				cells[i] = fmt.Sprint(cell)
			}
		}
		rows = append(rows, cells)
	}
	return rows
}

// scheduleValues renders the schedule with the header row first
func scheduleValues(schedule model.Schedule) [][]interface{} {
	rows := schedule.Rows()
	values := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}
	return values
}
