package availability

import "github.com/mrjschrack/library-checker-app/internal/dashboard"

// RankBooks orders the collection for display: books with at least one
// available copy come first, everything else after, with the incoming order
// preserved inside each partition. Ranking an already-ranked list reproduces
// it, so it is safe to apply on every render.
func RankBooks(books []dashboard.BookWithAvailability) []dashboard.BookWithAvailability {
	ranked := make([]dashboard.BookWithAvailability, 0, len(books))
	var rest []dashboard.BookWithAvailability
	for _, book := range books {
		if HasAvailable(book.Availability) {
			ranked = append(ranked, book)
		} else {
			rest = append(rest, book)
		}
	}
	return append(ranked, rest...)
}

// CountAvailable reports how many books have a copy ready to borrow.
func CountAvailable(books []dashboard.BookWithAvailability) int {
	count := 0
	for _, book := range books {
		if HasAvailable(book.Availability) {
			count++
		}
	}
	return count
}
