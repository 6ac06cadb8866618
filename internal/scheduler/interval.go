package scheduler

import (
	"fmt"

	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

const (
	// FirstReviewOffsetDays is the gap between first studying an item and its first review.
	FirstReviewOffsetDays = 1
	// MaxReviewCount is the review count after which no further review is scheduled.
	MaxReviewCount = 4
)

// reviewIntervals are the day offsets used from the second review onward.
var reviewIntervals = []int{3, 7, 30}

// NextInterval returns the number of days until the next review of an item
// that has completed reviewCount reviews. Counts past the table use the last entry.
func NextInterval(reviewCount int) int {
	idx := min(reviewCount-1, len(reviewIntervals)-1)
	if idx < 0 {
		idx = 0
	}
	return reviewIntervals[idx]
}

// NextDueDate returns base shifted by NextInterval(reviewCount).
func NextDueDate(reviewCount int, base string) (string, error) {
	due, err := study.AddDays(base, NextInterval(reviewCount))
	if err != nil {
		return "", fmt.Errorf("study.AddDays() > %w", err)
	}
	return due, nil
}
