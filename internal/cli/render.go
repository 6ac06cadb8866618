package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Tlatoani315/estudiar-ipn/internal/progress"
	"github.com/Tlatoani315/estudiar-ipn/internal/scheduler"
	"github.com/Tlatoani315/estudiar-ipn/internal/statistics"
	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

// PrintAddResult prints the counts of an ingestion. malformed lines are added to the invalid count.
func (p *Printer) PrintAddResult(result scheduler.AddResult, malformed int) {
	p.colorf(p.ok, "Added: %d\n", result.Added)
	p.colorf(p.warn, "Skipped (already present): %d\n", result.Skipped)
	invalid := result.Invalid + malformed
	if invalid > 0 {
		p.colorf(p.fail, "Invalid lines: %d\n", invalid)
		p.colorf(p.faint, "Expected format: Subject/Topic/Subtopic\n")
	}
}

// PrintOutcomes prints one line per batch item.
func (p *Printer) PrintOutcomes(outcomes []scheduler.Outcome) {
	for _, o := range outcomes {
		switch {
		case o.Err == nil:
			p.colorf(p.ok, "ok  %s: %s\n", o.Name, o.Status)
		case errors.Is(o.Err, scheduler.ErrNotFound):
			p.colorf(p.warn, "??  %s: not found (check the spelling)\n", o.Name)
		case errors.Is(o.Err, scheduler.ErrNotActive):
			p.colorf(p.warn, "??  %s: not found or already mastered\n", o.Name)
		default:
			p.colorf(p.fail, "!!  %s: %v\n", o.Name, o.Err)
		}
	}
}

// PrintStudyFollowUp prints the checklist and the study log of the records that were just studied.
func (p *Printer) PrintStudyFollowUp(records []study.Record) {
	if len(records) == 0 {
		return
	}

	subjects := make(map[string]struct{})
	subtopics := make([]string, 0, len(records))
	events := make([]string, 0, len(records))
	for _, r := range records {
		subjects[r.Subject] = struct{}{}
		subtopics = append(subtopics, r.Subtopic)
		events = append(events, r.Subject+": "+r.Topic+" -> "+r.Subtopic)
	}

	p.printf("\n")
	p.colorf(p.bold, "Checklist\n")
	p.printf("  subjects: %s\n", strings.Join(progress.SortedKeys(subjects), ", "))
	p.printf("  subtopics: %s\n", strings.Join(subtopics, ", "))
	p.colorf(p.bold, "Studied today\n")
	for _, e := range events {
		p.printf("  %s\n", e)
	}
}

// PrintSuggestions prints suggested pending items.
func (p *Printer) PrintSuggestions(subject string, records []study.Record) {
	if len(records) == 0 {
		p.colorf(p.ok, "No pending items in %s.\n", subject)
		return
	}
	p.colorf(p.bold, "Suggested items for %s:\n", subject)
	for _, r := range records {
		p.printf("  %s -> %s -> %s\n", r.Subject, r.Topic, r.Subtopic)
	}
	p.colorf(p.faint, "Run `estudiar study <subtopic>` when you are done.\n")
}

// PrintDueReviews prints due reviews grouped by subject in first-seen order.
func (p *Printer) PrintDueReviews(date string, records []study.Record) {
	if len(records) == 0 {
		p.colorf(p.ok, "You are up to date. No reviews due on %s.\n", date)
		return
	}

	var subjects []string
	bySubject := make(map[string][]string)
	for _, r := range records {
		if _, ok := bySubject[r.Subject]; !ok {
			subjects = append(subjects, r.Subject)
		}
		bySubject[r.Subject] = append(bySubject[r.Subject], r.Subtopic)
	}

	p.colorf(p.bold, "Reviews due on %s:\n", date)
	for _, subject := range subjects {
		p.colorf(p.bold, "\n%s\n", subject)
		for _, subtopic := range bySubject[subject] {
			p.printf("  - %s\n", subtopic)
		}
	}
	p.printf("\nTotal: %d subtopics.\n", len(records))
}

// PrintGlobal prints the global metrics.
func (p *Printer) PrintGlobal(g progress.Global) {
	if g.TotalActive == 0 {
		p.printf("No study items yet.\n")
		return
	}
	p.colorf(p.bold, "Total subtopics: %d\n\n", g.TotalActive)
	p.colorf(p.fail, "Pending: %d/%d (%.1f%%)\n", g.Pending, g.TotalActive, g.Percent(g.Pending))
	p.colorf(p.warn, "In review: %d/%d\n", g.InReview, g.TotalActive)
	p.colorf(p.ok, "Mastered: %d/%d\n\n", g.Mastered, g.TotalActive)
	p.colorf(p.bold, "Progress: %d/%d\n", g.Progress(), g.TotalActive)
}

// PrintSubjects prints per-subject metrics sorted by subject.
func (p *Printer) PrintSubjects(metrics map[string]progress.SubjectMetrics) {
	for _, subject := range progress.SortedKeys(metrics) {
		m := metrics[subject]
		p.colorf(p.bold, "%s\n", subject)
		p.printf("  Subtopics: %d/%d\n", m.Seen, m.Total)
		p.printf("  Topics: %d/%d\n", m.TopicsSeen, m.Topics)
	}
}

// PrintOutline prints the topic outline of a subject.
func (p *Printer) PrintOutline(subject string, outline map[string][]progress.OutlineEntry) {
	if len(outline) == 0 {
		p.colorf(p.warn, "No items found for %s.\n", subject)
		return
	}
	p.colorf(p.bold, "%s\n", subject)
	for _, topic := range progress.SortedKeys(outline) {
		p.printf("\n%s\n", topic)
		for _, entry := range outline[topic] {
			p.printf("  [%s] %s\n", entry.Marker, entry.Subtopic)
		}
	}
	p.colorf(p.faint, "\np pending, e in review, d mastered\n")
}

// PrintTimeline prints studied and scheduled events by date.
func (p *Printer) PrintTimeline(timeline map[string][]progress.TimelineEvent) {
	if len(timeline) == 0 {
		p.printf("No study history yet.\n")
		return
	}
	for _, date := range progress.SortedKeys(timeline) {
		p.colorf(p.bold, "%s\n", date)
		for _, e := range timeline[date] {
			if e.Done {
				p.colorf(p.ok, "  studied   %s: %s -> %s\n", e.Subject, e.Topic, e.Subtopic)
			} else {
				p.colorf(p.warn, "  review    %s: %s -> %s\n", e.Subject, e.Topic, e.Subtopic)
			}
		}
	}
}

// PrintStatistics prints monthly study sessions, newest first, followed by the totals.
func (p *Printer) PrintStatistics(result statistics.Result) {
	if len(result.Periods) == 0 {
		p.printf("No study sessions found for the specified period.\n")
		return
	}

	p.colorf(p.bold, "%-10s  %-24s  %-24s\n", "Period", "New items (Total/Unique)", "Reviews (Total/Unique)")
	p.printf("%-10s  %-24s  %-24s\n", "------", "------------------------", "----------------------")
	for _, s := range result.Periods {
		p.printf("%-10s  %-24s  %-24s\n",
			s.Period,
			fmt.Sprintf("%d / %d", s.NewItemsCount, s.NewItemsUnique),
			fmt.Sprintf("%d / %d", s.ReviewsCount, s.ReviewsUnique),
		)
	}
	p.printf("\n")
	p.colorf(p.bold, "%-10s  %-24s  %-24s\n",
		"Totals:",
		fmt.Sprintf("%d / %d", result.Aggregate.NewItemsCount, result.Aggregate.NewItemsUnique),
		fmt.Sprintf("%d / %d", result.Aggregate.ReviewsCount, result.Aggregate.ReviewsUnique),
	)
}
