package model

import (
	"strconv"
	"time"
)

// DateLayout is the textual date form used in schedule output (MM-DD-YYYY)
const DateLayout = "01-02-2006"

// Person represents a member of the on-call roster
type Person struct {
	Name      string
	Email     string
	Available bool
}

// WeeklyAssignment is a single week's duty pair
type WeeklyAssignment struct {
	Week      int
	StartDate time.Time
	EndDate   time.Time
	Agent1    Person
	Agent2    Person
}

// Names returns the names of both assigned people in slot order
func (a WeeklyAssignment) Names() []string {
	return []string{a.Agent1.Name, a.Agent2.Name}
}

// Schedule is the ordered list of weekly assignments produced by a run
type Schedule []WeeklyAssignment

// ScheduleHeaders are the column headers written by every schedule writer
var ScheduleHeaders = []string{
	"week",
	"start_date",
	"end_date",
	"agent1_name",
	"agent1_email",
	"agent2_name",
	"agent2_email",
}

// Row renders the assignment as a schedule output row matching ScheduleHeaders
func (a WeeklyAssignment) Row() []string {
	return []string{
		strconv.Itoa(a.Week),
		a.StartDate.Format(DateLayout),
		a.EndDate.Format(DateLayout),
		a.Agent1.Name,
		a.Agent1.Email,
		a.Agent2.Name,
		a.Agent2.Email,
	}
}

// Rows renders the whole schedule, header row first
func (s Schedule) Rows() [][]string {
	rows := make([][]string, 0, len(s)+1)
	rows = append(rows, ScheduleHeaders)
	for _, a := range s {
		rows = append(rows, a.Row())
	}
	return rows
}
