package roster

import (
	"fmt"
	"sort"

	"github.com/jakechorley/duty-rota/pkg/core/model"
)

// ChangeKind classifies a roster change
type ChangeKind string

const (
	ChangeModified ChangeKind = "modified"
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
)

// Change is one difference between two roster versions
type Change struct {
	Kind  ChangeKind
	Name  string
	Field string
	Old   string
	New   string
}

func (c Change) String() string {
	switch c.Kind {
	case ChangeAdded:
		return fmt.Sprintf("Employee %s added", c.Name)
	case ChangeRemoved:
		return fmt.Sprintf("Employee %s removed", c.Name)
	default:
		return fmt.Sprintf("Change in %s for employee %s: %s -> %s", c.Field, c.Name, c.Old, c.New)
	}
}

// DetectChanges compares two roster versions by name.
// Field changes come first in previous-roster order, then additions, then removals.
func DetectChanges(previous, current []model.Person) []Change {
	currentByName := make(map[string]model.Person, len(current))
	for _, p := range current {
		currentByName[p.Name] = p
	}

	previousNames := make(map[string]bool, len(previous))
	var changes, removed []Change

	for _, old := range previous {
		previousNames[old.Name] = true

		updated, ok := currentByName[old.Name]
		if !ok {
			removed = append(removed, Change{Kind: ChangeRemoved, Name: old.Name})
			continue
		}

		if old.Email != updated.Email {
			changes = append(changes, Change{Kind: ChangeModified, Name: old.Name, Field: "Email", Old: old.Email, New: updated.Email})
		}
		if old.Available != updated.Available {
			changes = append(changes, Change{
				Kind:  ChangeModified,
				Name:  old.Name,
				Field: "Available",
				Old:   FormatAvailable(old.Available),
				New:   FormatAvailable(updated.Available),
			})
		}
	}

	var added []Change
	for _, p := range current {
		if !previousNames[p.Name] {
			added = append(added, Change{Kind: ChangeAdded, Name: p.Name})
		}
	}
	sort.Slice(added, func(i, j int) bool { return added[i].Name < added[j].Name })

	changes = append(changes, added...)
	return append(changes, removed...)
}
