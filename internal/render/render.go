// Package render formats aggregate values for the terminal. It sits at
// the presentation boundary: amounts arrive as minor units and are only
// converted to decimal strings here.
package render

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"github.com/hbtools/hbq/internal/model"
	"github.com/hbtools/hbq/internal/query"
	"github.com/hbtools/hbq/internal/report"
)

// Amount renders a minor-unit amount with frac decimal places.
func Amount(minor int64, frac int) string {
	return decimal.New(minor, -int32(frac)).StringFixed(int32(frac))
}

// ReviewTable writes one row per category bucket.
func ReviewTable(w io.Writer, buckets []report.CategoryTotal, frac int) {
	width := 0
	for _, b := range buckets {
		if len(b.Path) > width {
			width = len(b.Path)
		}
	}
	for _, b := range buckets {
		fmt.Fprintf(w, "%-*s  %12s  (%d)\n", width, b.Path, Amount(b.Amount, frac), b.Count)
	}
}

// Transactions writes one line per match: date, amount, category path,
// payee, memo, and the transaction's tags when it has any.
func Transactions(w io.Writer, m *model.Model, matches iter.Seq[query.Match], frac int) {
	for match := range matches {
		txn := match.Transaction
		path := report.UncategorizedPath
		if match.Leg.Category != model.NoCategory {
			path = m.CategoryPath(match.Leg.Category)
		}
		line := strings.TrimRight(fmt.Sprintf("%s  %12s  %-24s  %-20s  %s",
			txn.Date.Format(time.DateOnly),
			Amount(match.Leg.Amount, frac),
			path,
			m.PayeeName(txn.Payee),
			match.Leg.Memo), " ")
		if len(txn.Tags) > 0 {
			line += "  [" + strings.Join(txn.Tags, " ") + "]"
		}
		fmt.Fprintln(w, line)
	}
}

// BudgetBars writes one progress bar per category, or a "no budget set"
// line when the category has no allocation for the interval.
func BudgetBars(w io.Writer, rows []report.CategoryProgress, frac int) {
	for _, row := range rows {
		budgetBar(w, row, frac)
	}
}

func budgetBar(w io.Writer, row report.CategoryProgress, frac int) {
	p := row.Progress
	if !p.HasBudget {
		fmt.Fprintf(w, "%-30s  no budget set (spent %s)\n", row.Path, Amount(p.Actual, frac))
		return
	}

	colour := "white"
	switch {
	case p.Ratio > 1.0:
		colour = "red"
	case p.Ratio > 0.5:
		colour = "yellow"
	}

	allocated := abs(p.Allocated)
	position := abs(p.Actual)
	if position > allocated {
		position = allocated
	}

	bar := progressbar.NewOptions64(allocated,
		progressbar.OptionSetDescription(fmt.Sprintf("[%s]%-30s[reset]", colour, row.Path)),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	_ = bar.Set64(position)

	fmt.Fprintf(w, "  %s/%s (%.0f %%)\n", Amount(p.Actual, frac), Amount(p.Allocated, frac), p.Ratio*100)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
