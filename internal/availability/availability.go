package availability

import (
	"sort"

	"github.com/mrjschrack/library-checker-app/internal/dashboard"
)

// statusRanks defines the display precedence for availability badges.
// Lower values appear first (actionable statuses lead).
var statusRanks = map[string]int{
	dashboard.StatusAvailable:   0,
	dashboard.StatusHold:        1,
	dashboard.StatusUnknown:     2,
	dashboard.StatusUnavailable: 3,
	dashboard.StatusNotFound:    4,
	dashboard.StatusError:       5,
}

// unrankedStatus sorts any status outside the known set after everything else.
const unrankedStatus = 99

// Rank returns the display precedence for a status. Lower ranks sort first;
// unknown future statuses are pushed to the end.
func Rank(status string) int {
	if rank, ok := statusRanks[status]; ok {
		return rank
	}
	return unrankedStatus
}

// Merge folds a fresh per-library check into the previously known records for
// one book. For every library present in updated the fresh record wins;
// records for libraries the check did not touch are preserved unchanged. The
// result holds exactly one record per library, ordered by status precedence
// with ties kept in their prior relative order so badges do not jump around
// between refreshes.
func Merge(existing, updated []dashboard.Availability) []dashboard.Availability {
	fresh := make(map[int64]dashboard.Availability, len(updated))
	for _, rec := range updated {
		// Later duplicates within one check supersede earlier ones.
		fresh[rec.LibraryID] = rec
	}

	merged := make([]dashboard.Availability, 0, len(existing)+len(updated))
	seen := make(map[int64]bool, len(existing)+len(updated))
	for _, rec := range existing {
		if seen[rec.LibraryID] {
			continue
		}
		seen[rec.LibraryID] = true
		if upd, ok := fresh[rec.LibraryID]; ok {
			merged = append(merged, upd)
		} else {
			merged = append(merged, rec)
		}
	}
	for _, rec := range updated {
		if seen[rec.LibraryID] {
			continue
		}
		seen[rec.LibraryID] = true
		merged = append(merged, fresh[rec.LibraryID])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return Rank(merged[i].Status) < Rank(merged[j].Status)
	})
	return merged
}

// SortByStatus returns a copy of records ordered by status precedence.
// Equal ranks keep their original relative order.
func SortByStatus(records []dashboard.Availability) []dashboard.Availability {
	sorted := make([]dashboard.Availability, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Rank(sorted[i].Status) < Rank(sorted[j].Status)
	})
	return sorted
}

// HasAvailable reports whether any record shows a copy ready to borrow.
func HasAvailable(records []dashboard.Availability) bool {
	for _, rec := range records {
		if rec.Status == dashboard.StatusAvailable {
			return true
		}
	}
	return false
}
