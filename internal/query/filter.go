package query

import (
	"iter"
	"strings"
	"time"

	"github.com/hbtools/hbq/internal/model"
)

// Spec enumerates the recognized filter options. All supplied predicates
// are ANDed; an absent predicate imposes no constraint.
type Spec struct {
	// Categories restricts matches to legs tagged with one of these
	// categories. nil means unconstrained; an empty non-nil set (e.g. a
	// name that resolved to nothing) matches no leg at all.
	Categories CategorySet

	// Account restricts matches to a single account. Zero means any.
	Account model.AccountID

	// Since and Until bound the transaction date. Both bounds are
	// inclusive; when only one is set the interval is half-open on the
	// other side.
	Since *time.Time
	Until *time.Time

	// Text matches a case-insensitive substring of the transaction memo,
	// info field, payee name, tags, or the leg's own memo.
	Text string
}

// Match is one filtered result: a transaction together with the specific
// leg that matched. Split transactions can yield several matches, one per
// leg, so each leg sums into its own category.
type Match struct {
	Transaction *model.Transaction
	Leg         model.Leg
}

// Filter applies spec to the model's transactions and returns the lazy
// sequence of matches. The sequence is restartable: ranging over it again
// re-walks the model, which is safe because the model is immutable after
// load.
func Filter(m *model.Model, spec Spec) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for i := range m.Transactions {
			txn := &m.Transactions[i]
			if !spec.matchesTransaction(txn) {
				continue
			}
			for _, leg := range txn.Legs {
				if !spec.matchesLeg(m, txn, leg) {
					continue
				}
				if !yield(Match{Transaction: txn, Leg: leg}) {
					return
				}
			}
		}
	}
}

func (s Spec) matchesTransaction(txn *model.Transaction) bool {
	if s.Since != nil && txn.Date.Before(*s.Since) {
		return false
	}
	if s.Until != nil && txn.Date.After(*s.Until) {
		return false
	}
	if s.Account != 0 && txn.Account != s.Account {
		return false
	}
	return true
}

func (s Spec) matchesLeg(m *model.Model, txn *model.Transaction, leg model.Leg) bool {
	if s.Categories != nil && !s.Categories.Contains(leg.Category) {
		return false
	}
	if s.Text != "" && !matchesText(m, txn, leg, s.Text) {
		return false
	}
	return true
}

func matchesText(m *model.Model, txn *model.Transaction, leg model.Leg, text string) bool {
	needle := strings.ToLower(text)
	haystacks := []string{txn.Memo, txn.Info, m.PayeeName(txn.Payee), leg.Memo}
	haystacks = append(haystacks, txn.Tags...)
	for _, haystack := range haystacks {
		if haystack != "" && strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}
