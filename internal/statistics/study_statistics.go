// Package statistics counts study sessions per month from the studied log.
package statistics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

// PeriodStatistics holds the study sessions of one month.
type PeriodStatistics struct {
	Period         string // "2026-03"
	NewItemsCount  int    // First study of a subtopic
	NewItemsUnique int
	ReviewsCount   int // Every later study of the same subtopic
	ReviewsUnique  int
}

// AggregateStatistics holds totals across all periods with global unique counts.
type AggregateStatistics struct {
	NewItemsCount  int
	NewItemsUnique int
	ReviewsCount   int
	ReviewsUnique  int
}

// Result holds both per-period and aggregate statistics.
type Result struct {
	Periods   []PeriodStatistics
	Aggregate AggregateStatistics
}

type periodData struct {
	newTotal      int
	newUnique     map[string]struct{}
	reviewsTotal  int
	reviewsUnique map[string]struct{}
}

// Calculate counts studied logs by month. Year and month filter the periods
// (0 means no filter). The earliest log of a subtopic is its first study even
// when it falls outside the filter; later logs are reviews.
// Logs with an unparsable date are ignored.
func Calculate(logs []study.Record, year, month int) Result {
	bySubtopic := make(map[string][]time.Time)
	for _, r := range logs {
		if r.Kind != study.KindStudied {
			continue
		}
		date, err := time.Parse(study.DateLayout, r.Date)
		if err != nil {
			continue
		}
		key := itemKey(r)
		bySubtopic[key] = append(bySubtopic[key], date)
	}

	stats := make(map[string]*periodData)
	globalNew := make(map[string]struct{})
	globalReviews := make(map[string]struct{})
	for key, dates := range bySubtopic {
		sort.Slice(dates, func(i, j int) bool {
			return dates[i].Before(dates[j])
		})
		for i, date := range dates {
			if !matchesFilter(date.Year(), int(date.Month()), year, month) {
				continue
			}
			period := fmt.Sprintf("%d-%02d", date.Year(), int(date.Month()))
			data := ensurePeriodExists(stats, period)
			if i == 0 {
				data.newTotal++
				data.newUnique[key] = struct{}{}
				globalNew[key] = struct{}{}
				continue
			}
			data.reviewsTotal++
			data.reviewsUnique[key] = struct{}{}
			globalReviews[key] = struct{}{}
		}
	}
	return buildResult(stats, globalNew, globalReviews)
}

func itemKey(r study.Record) string {
	return strings.ToLower(r.Subject) + "|" + strings.ToLower(r.Topic) + "|" + strings.ToLower(r.Subtopic)
}

func ensurePeriodExists(stats map[string]*periodData, period string) *periodData {
	if stats[period] == nil {
		stats[period] = &periodData{
			newUnique:     make(map[string]struct{}),
			reviewsUnique: make(map[string]struct{}),
		}
	}
	return stats[period]
}

func matchesFilter(logYear, logMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if logYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return logMonth == filterMonth
}

func buildResult(stats map[string]*periodData, globalNew, globalReviews map[string]struct{}) Result {
	periods := make([]PeriodStatistics, 0, len(stats))

	var totalNew, totalReviews int
	for period, data := range stats {
		periods = append(periods, PeriodStatistics{
			Period:         period,
			NewItemsCount:  data.newTotal,
			NewItemsUnique: len(data.newUnique),
			ReviewsCount:   data.reviewsTotal,
			ReviewsUnique:  len(data.reviewsUnique),
		})
		totalNew += data.newTotal
		totalReviews += data.reviewsTotal
	}

	// Newest first
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period > periods[j].Period
	})

	return Result{
		Periods: periods,
		Aggregate: AggregateStatistics{
			NewItemsCount:  totalNew,
			NewItemsUnique: len(globalNew),
			ReviewsCount:   totalReviews,
			ReviewsUnique:  len(globalReviews),
		},
	}
}
