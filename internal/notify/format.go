package notify

import (
	"fmt"
	"strings"

	"github.com/Tlatoani315/estudiar-ipn/internal/progress"
	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

// FormatDueReviews renders the reviews due on date grouped by subject.
// Within a subject the rows keep their input order.
func FormatDueReviews(date string, due []study.Record) string {
	if len(due) == 0 {
		return fmt.Sprintf("No reviews due on %s.", date)
	}

	bySubject := make(map[string][]study.Record)
	for _, r := range due {
		bySubject[r.Subject] = append(bySubject[r.Subject], r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d reviews due on %s", len(due), date)
	for _, subject := range progress.SortedKeys(bySubject) {
		fmt.Fprintf(&b, "\n\n%s", subject)
		for _, r := range bySubject[subject] {
			fmt.Fprintf(&b, "\n- %s (%s, review %d, due %s)", r.Subtopic, r.Topic, r.ReviewCount, r.Date)
		}
	}
	return b.String()
}
