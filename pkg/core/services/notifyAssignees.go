package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/duty-rota/pkg/core/model"
	"github.com/jakechorley/duty-rota/pkg/db"
)

// NotificationSubject is the subject line of every assignee email
const NotificationSubject = "Your on-call duty weeks"

// DutyWeek is one week a person is on duty
type DutyWeek struct {
	Week    int
	Start   string
	End     string
	Partner string
}

// Notification is the email planned for one assignee
type Notification struct {
	Name  string
	Email string
	Weeks []DutyWeek
}

// FailedNotification records an email that could not be sent
type FailedNotification struct {
	Notification
	Error string
}

// NotifyResult describes what notifyAssignees did
type NotifyResult struct {
	Run     db.Run
	Planned []Notification
	Sent    []Notification
	Failed  []FailedNotification
}

// NotifyAssignees emails every person in the latest run their duty weeks.
// A failed email is recorded and the rest are still sent. With dryRun nothing is sent.
func NotifyAssignees(
	ctx context.Context,
	store db.HistoryStore,
	notifier Notifier,
	logger *zap.Logger,
	dryRun bool,
) (*NotifyResult, error) {
	logger.Info("Starting notifyAssignees", zap.Bool("dry_run", dryRun))

	runs, err := store.GetRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch runs: %w", err)
	}
	latest, ok := db.LatestRun(runs)
	if !ok {
		return nil, fmt.Errorf("no runs found - please generate a schedule first")
	}
	logger.Info("Found latest run",
		zap.String("id", latest.ID),
		zap.Time("first_week_start", latest.FirstWeekStart),
		zap.Int("weeks", latest.Weeks))

	assignments, err := store.GetAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	result := &NotifyResult{
		Run:     latest,
		Planned: buildNotifications(filterAssignmentsByRunID(assignments, latest.ID)),
	}
	logger.Info("Notifications planned", zap.Int("count", len(result.Planned)))

	if dryRun {
		return result, nil
	}
	if notifier == nil {
		return nil, fmt.Errorf("no notifier configured")
	}

	for _, n := range result.Planned {
		if err := notifier.SendEmail(n.Email, NotificationSubject, notificationBody(n)); err != nil {
			logger.Error("Failed to send notification",
				zap.String("name", n.Name),
				zap.String("email", n.Email),
				zap.Error(err))
			result.Failed = append(result.Failed, FailedNotification{Notification: n, Error: err.Error()})
			continue
		}
		logger.Debug("Notification sent", zap.String("email", n.Email))
		result.Sent = append(result.Sent, n)
	}

	logger.Info("Notifications finished",
		zap.Int("sent", len(result.Sent)),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// buildNotifications groups a run's assignments by person, pairing each week with the partner
func buildNotifications(assignments []db.Assignment) []Notification {
	byWeek := make(map[int][]db.Assignment)
	for _, a := range assignments {
		byWeek[a.Week] = append(byWeek[a.Week], a)
	}

	byName := make(map[string]*Notification)
	for _, a := range assignments {
		n, ok := byName[a.Name]
		if !ok {
			n = &Notification{Name: a.Name, Email: a.Email}
			byName[a.Name] = n
		}

		var partner string
		for _, other := range byWeek[a.Week] {
			if other.Name != a.Name {
				partner = other.Name
			}
		}

		n.Weeks = append(n.Weeks, DutyWeek{
			Week:    a.Week,
			Start:   a.StartDate.Format(model.DateLayout),
			End:     a.EndDate.Format(model.DateLayout),
			Partner: partner,
		})
	}

	notifications := make([]Notification, 0, len(byName))
	for _, n := range byName {
		notifications = append(notifications, *n)
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].Name < notifications[j].Name
	})
	return notifications
}

func notificationBody(n Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nYou are on call for the following weeks:\n\n", n.Name)
	for _, w := range n.Weeks {
		fmt.Fprintf(&b, "  Week %d: %s to %s", w.Week, w.Start, w.End)
		if w.Partner != "" {
			fmt.Fprintf(&b, " (with %s)", w.Partner)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nThanks\n")
	return b.String()
}
