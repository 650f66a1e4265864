package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjschrack/library-checker-app/internal/dashboard"
)

func rec(libraryID int64, status string) dashboard.Availability {
	return dashboard.Availability{
		BookID:      7,
		LibraryID:   libraryID,
		LibraryName: "lib",
		Status:      status,
		CheckedAt:   "2026-08-01T10:00:00Z",
	}
}

func TestRank(t *testing.T) {
	assert.Equal(t, 0, Rank(dashboard.StatusAvailable))
	assert.Equal(t, 1, Rank(dashboard.StatusHold))
	assert.Equal(t, 2, Rank(dashboard.StatusUnknown))
	assert.Equal(t, 3, Rank(dashboard.StatusUnavailable))
	assert.Equal(t, 4, Rank(dashboard.StatusNotFound))
	assert.Equal(t, 5, Rank(dashboard.StatusError))

	// Statuses a future backend might add sort after everything known.
	assert.Equal(t, 99, Rank("preordered"))
	assert.Equal(t, 99, Rank(""))
}

func TestMergeFreshRecordWins(t *testing.T) {
	existing := []dashboard.Availability{
		rec(1, dashboard.StatusUnknown),
		rec(2, dashboard.StatusHold),
	}
	updated := []dashboard.Availability{
		rec(1, dashboard.StatusAvailable),
	}

	merged := Merge(existing, updated)

	require.Len(t, merged, 2)
	assert.Equal(t, int64(1), merged[0].LibraryID)
	assert.Equal(t, dashboard.StatusAvailable, merged[0].Status)
	assert.Equal(t, int64(2), merged[1].LibraryID)
	assert.Equal(t, dashboard.StatusHold, merged[1].Status)
}

func TestMergePreservesUntouchedLibraries(t *testing.T) {
	existing := []dashboard.Availability{
		rec(1, dashboard.StatusUnavailable),
		rec(2, dashboard.StatusHold),
		rec(3, dashboard.StatusError),
	}
	updated := []dashboard.Availability{
		rec(2, dashboard.StatusAvailable),
	}

	merged := Merge(existing, updated)

	require.Len(t, merged, 3)
	byLibrary := map[int64]string{}
	for _, m := range merged {
		byLibrary[m.LibraryID] = m.Status
	}
	assert.Equal(t, dashboard.StatusUnavailable, byLibrary[1])
	assert.Equal(t, dashboard.StatusAvailable, byLibrary[2])
	assert.Equal(t, dashboard.StatusError, byLibrary[3])
}

func TestMergeNewLibraryAppended(t *testing.T) {
	existing := []dashboard.Availability{rec(1, dashboard.StatusHold)}
	updated := []dashboard.Availability{rec(9, dashboard.StatusAvailable)}

	merged := Merge(existing, updated)

	require.Len(t, merged, 2)
	// Available outranks hold.
	assert.Equal(t, int64(9), merged[0].LibraryID)
	assert.Equal(t, int64(1), merged[1].LibraryID)
}

func TestMergeOrderedByPrecedence(t *testing.T) {
	merged := Merge(nil, []dashboard.Availability{
		rec(1, dashboard.StatusError),
		rec(2, dashboard.StatusNotFound),
		rec(3, dashboard.StatusUnavailable),
		rec(4, dashboard.StatusUnknown),
		rec(5, dashboard.StatusHold),
		rec(6, dashboard.StatusAvailable),
	})

	var got []string
	for _, m := range merged {
		got = append(got, m.Status)
	}
	assert.Equal(t, []string{
		dashboard.StatusAvailable,
		dashboard.StatusHold,
		dashboard.StatusUnknown,
		dashboard.StatusUnavailable,
		dashboard.StatusNotFound,
		dashboard.StatusError,
	}, got)
}

func TestMergeStableForEqualRanks(t *testing.T) {
	existing := []dashboard.Availability{
		rec(1, dashboard.StatusHold),
		rec(2, dashboard.StatusHold),
		rec(3, dashboard.StatusHold),
	}

	merged := Merge(existing, nil)

	var got []int64
	for _, m := range merged {
		got = append(got, m.LibraryID)
	}
	// Ties keep their prior relative order so badges do not jitter.
	assert.Equal(t, []int64{1, 2, 3}, got)
}

func TestMergeDuplicateInputsCollapse(t *testing.T) {
	existing := []dashboard.Availability{
		rec(1, dashboard.StatusUnknown),
		rec(1, dashboard.StatusHold),
	}
	updated := []dashboard.Availability{
		rec(2, dashboard.StatusUnavailable),
		rec(2, dashboard.StatusAvailable),
	}

	merged := Merge(existing, updated)

	require.Len(t, merged, 2)
	byLibrary := map[int64]string{}
	for _, m := range merged {
		byLibrary[m.LibraryID] = m.Status
	}
	assert.Equal(t, dashboard.StatusUnknown, byLibrary[1])
	// Later duplicate within one check supersedes the earlier one.
	assert.Equal(t, dashboard.StatusAvailable, byLibrary[2])
}

func TestHasAvailable(t *testing.T) {
	assert.False(t, HasAvailable(nil))
	assert.False(t, HasAvailable([]dashboard.Availability{rec(1, dashboard.StatusHold)}))
	assert.True(t, HasAvailable([]dashboard.Availability{
		rec(1, dashboard.StatusHold),
		rec(2, dashboard.StatusAvailable),
	}))
}

func TestSortByStatusDoesNotMutateInput(t *testing.T) {
	records := []dashboard.Availability{
		rec(1, dashboard.StatusError),
		rec(2, dashboard.StatusAvailable),
	}

	sorted := SortByStatus(records)

	assert.Equal(t, dashboard.StatusAvailable, sorted[0].Status)
	assert.Equal(t, dashboard.StatusError, records[0].Status)
}
