package services

import "github.com/jakechorley/duty-rota/pkg/core/model"

// RosterReader loads and validates the current roster
type RosterReader interface {
	ReadRoster() ([]model.Person, error)
	Location() string
}

// ScheduleWriter persists a generated schedule
type ScheduleWriter interface {
	WriteSchedule(schedule model.Schedule) error
	Location() string
}

// Notifier delivers a plain-text email
type Notifier interface {
	SendEmail(to, subject, body string) error
}
