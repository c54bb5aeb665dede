package report

import (
	"slices"
	"strings"
	"time"

	"github.com/hbtools/hbq/internal/model"
	"github.com/hbtools/hbq/internal/query"
)

// Interval is a closed date interval. An interval with From after To is
// empty: it covers no transactions and no budget months.
type Interval struct {
	From time.Time
	To   time.Time
}

// Month returns the calendar month containing d as an interval.
func Month(d time.Time) Interval {
	from := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Interval{From: from, To: from.AddDate(0, 1, -1)}
}

// Empty reports whether the interval covers no dates.
func (iv Interval) Empty() bool {
	return iv.From.After(iv.To)
}

// Months lists the calendar months the interval touches, in order. A month
// partially covered by the interval counts in full; HomeBank allots
// budgets by whole months. Spanning more than a year repeats months,
// since allocations recur annually.
func (iv Interval) Months() []time.Month {
	if iv.Empty() {
		return nil
	}
	var months []time.Month
	cursor := time.Date(iv.From.Year(), iv.From.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(iv.To) {
		months = append(months, cursor.Month())
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months
}

// Progress is the budget-vs-actual outcome for a category set over an
// interval. When no budget is allocated, HasBudget is false and Ratio is
// meaningless; callers report "no budget set" instead of a quotient.
type Progress struct {
	Actual    int64
	Allocated int64
	Ratio     float64
	HasBudget bool
}

// BudgetProgress computes actual spending against the budget allocated to
// the given categories over the interval. The actual side sums matching
// transaction legs; the allocated side sums the categories' allotments
// for every month the interval touches.
func BudgetProgress(m *model.Model, cats query.CategorySet, iv Interval) Progress {
	since, until := iv.From, iv.To
	actual := Sum(query.Filter(m, query.Spec{
		Categories: cats,
		Since:      &since,
		Until:      &until,
	}))

	var allocated int64
	months := iv.Months()
	for cat := range cats {
		for _, month := range months {
			if amount, ok := m.BudgetFor(cat, month); ok {
				allocated += amount
			}
		}
	}

	p := Progress{Actual: actual, Allocated: allocated}
	if allocated != 0 {
		p.Ratio = float64(actual) / float64(allocated)
		p.HasBudget = true
	}
	return p
}

// CategoryProgress pairs a category path with its budget progress.
type CategoryProgress struct {
	Category model.CategoryID
	Path     string
	Progress Progress
}

// BudgetReview computes per-category budget progress over the interval,
// sorted by category path. A nil set means every category that has a
// budget allocation.
func BudgetReview(m *model.Model, cats query.CategorySet, iv Interval) []CategoryProgress {
	if cats == nil {
		cats = make(query.CategorySet)
		for id := range m.Categories {
			if m.HasBudget(id) {
				cats.Add(id)
			}
		}
	}

	out := make([]CategoryProgress, 0, len(cats))
	for cat := range cats {
		out = append(out, CategoryProgress{
			Category: cat,
			Path:     m.CategoryPath(cat),
			Progress: BudgetProgress(m, query.NewCategorySet(cat), iv),
		})
	}
	slices.SortFunc(out, func(a, b CategoryProgress) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out
}
