// Package report reduces filtered transactions into plain aggregate
// values: totals, per-category buckets, and budget progress. Everything
// here is a pure function of the immutable model plus the supplied query,
// so results are safe to compute concurrently for the same model.
package report

import (
	"iter"
	"slices"
	"strings"

	"github.com/hbtools/hbq/internal/model"
	"github.com/hbtools/hbq/internal/query"
)

// UncategorizedPath labels the bucket for legs with no category.
const UncategorizedPath = "Uncategorized"

// Sum totals the matched leg amounts in minor units.
func Sum(matches iter.Seq[query.Match]) int64 {
	var total int64
	for match := range matches {
		total += match.Leg.Amount
	}
	return total
}

// CategoryTotal is one bucket of a review: the total and count of matched
// legs for a single category. Category is zero for the uncategorized
// bucket.
type CategoryTotal struct {
	Category model.CategoryID
	Path     string
	Amount   int64
	Count    int
}

// Review groups the filtered transaction legs by category and returns one
// bucket per category that appears, sorted by category path with the
// uncategorized bucket last. With an unconstrained spec the bucket totals
// sum to the total of all transaction legs.
func Review(m *model.Model, spec query.Spec) []CategoryTotal {
	totals := make(map[model.CategoryID]*CategoryTotal)
	for match := range query.Filter(m, spec) {
		id := match.Leg.Category
		bucket, ok := totals[id]
		if !ok {
			path := UncategorizedPath
			if id != model.NoCategory {
				path = m.CategoryPath(id)
			}
			bucket = &CategoryTotal{Category: id, Path: path}
			totals[id] = bucket
		}
		bucket.Amount += match.Leg.Amount
		bucket.Count++
	}

	out := make([]CategoryTotal, 0, len(totals))
	for _, bucket := range totals {
		out = append(out, *bucket)
	}
	slices.SortFunc(out, compareBuckets)
	return out
}

// WithEmptyCategories extends review buckets with a zero bucket for every
// category that had no matching transactions, restoring the full
// all-categories view. The result is re-sorted by path.
func WithEmptyCategories(m *model.Model, buckets []CategoryTotal) []CategoryTotal {
	present := make(map[model.CategoryID]bool, len(buckets))
	for _, b := range buckets {
		present[b.Category] = true
	}

	out := slices.Clone(buckets)
	for id := range m.Categories {
		if !present[id] {
			out = append(out, CategoryTotal{Category: id, Path: m.CategoryPath(id)})
		}
	}
	slices.SortFunc(out, compareBuckets)
	return out
}

func compareBuckets(a, b CategoryTotal) int {
	if (a.Category == model.NoCategory) != (b.Category == model.NoCategory) {
		if a.Category == model.NoCategory {
			return 1
		}
		return -1
	}
	return strings.Compare(a.Path, b.Path)
}
