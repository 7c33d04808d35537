package commands

import (
	"time"

	"github.com/jakechorley/duty-rota/pkg/core/model"
)

// formatDate renders a schedule date, or "-" for never
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(model.DateLayout)
}
