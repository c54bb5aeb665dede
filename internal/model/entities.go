// Package model holds the normalized, read-only representation of a
// HomeBank database. A Model is built once from a decoded file and never
// mutated afterwards, so it is safe to share across concurrent readers.
package model

import (
	"strings"
	"time"
)

// Entity identifiers. Zero is never a valid id; it marks an absent
// reference (uncategorized transaction, no payee, and so on).
type (
	CurrencyID int
	GroupID    int
	AccountID  int
	PayeeID    int
	CategoryID int
)

// NoCategory marks an uncategorized transaction or split leg.
const NoCategory CategoryID = 0

// Currency is a currency definition shared by accounts and transactions.
type Currency struct {
	ID     CurrencyID
	Name   string
	ISO    string
	Symbol string
	// Frac is the number of decimal places, i.e. the scale between a
	// display amount and its minor-unit representation.
	Frac int
}

// Group is a named group of accounts.
type Group struct {
	ID   GroupID
	Name string
}

// AccountType mirrors the HomeBank account type codes.
type AccountType int

const (
	AccountNone AccountType = iota
	AccountBank
	AccountCash
	AccountAsset
	AccountCreditCard
	AccountLiability
	AccountChecking
	AccountSavings
)

func (t AccountType) String() string {
	switch t {
	case AccountBank:
		return "bank"
	case AccountCash:
		return "cash"
	case AccountAsset:
		return "asset"
	case AccountCreditCard:
		return "credit-card"
	case AccountLiability:
		return "liability"
	case AccountChecking:
		return "checking"
	case AccountSavings:
		return "savings"
	default:
		return "none"
	}
}

// Account is a single account in the database.
type Account struct {
	ID       AccountID
	Name     string
	Type     AccountType
	Currency CurrencyID
	Group    GroupID
	// Initial is the opening balance in minor units.
	Initial int64
}

// Payee is a transaction counterparty.
type Payee struct {
	ID   PayeeID
	Name string
}

// Category is a node in the category forest. Parent is zero for roots; the
// loader guarantees the parent chain is finite and acyclic.
type Category struct {
	ID     CategoryID
	Name   string
	Parent CategoryID
	Income bool
}

// Leg is one category/amount slice of a transaction. Simple transactions
// have exactly one leg carrying the whole amount; split transactions have
// one leg per split row.
type Leg struct {
	Category CategoryID
	Amount   int64
	Memo     string
}

// Transaction is a single immutable transaction. Amount and the leg
// amounts are minor units (e.g. cents) in the account's currency.
type Transaction struct {
	Date    time.Time
	Amount  int64
	Account AccountID
	Paymode int
	Status  int
	Payee   PayeeID
	Memo    string
	Info    string
	Tags    []string
	// Legs always holds at least one entry; len > 1 means the
	// transaction is split across categories.
	Legs []Leg
}

// Split reports whether the transaction is divided into multiple legs.
func (t *Transaction) Split() bool {
	return len(t.Legs) > 1
}

// EveryMonth marks a budget entry that applies to all twelve months. Such
// an entry takes precedence over any per-month entry for the same
// category.
const EveryMonth time.Month = 0

// BudgetEntry allocates an amount (minor units) to a category for one
// recurring calendar month, or for every month.
type BudgetEntry struct {
	Category CategoryID
	Month    time.Month
	Amount   int64
}

// Model is the fully loaded database.
type Model struct {
	Version         string
	Title           string
	DefaultCurrency CurrencyID

	Currencies   map[CurrencyID]Currency
	Groups       map[GroupID]Group
	Accounts     map[AccountID]Account
	Payees       map[PayeeID]Payee
	Categories   map[CategoryID]Category
	Transactions []Transaction
	Budget       []BudgetEntry
}

// CategoryPath renders the full Parent:Child path for a category by
// walking parent references up to a root. An unknown id yields the empty
// string.
func (m *Model) CategoryPath(id CategoryID) string {
	cat, ok := m.Categories[id]
	if !ok {
		return ""
	}
	parts := []string{cat.Name}
	for cat.Parent != 0 {
		parent, ok := m.Categories[cat.Parent]
		if !ok {
			break
		}
		parts = append(parts, parent.Name)
		cat = parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ":")
}

// PayeeName returns the payee display name, or "" when the transaction has
// none.
func (m *Model) PayeeName(id PayeeID) string {
	return m.Payees[id].Name
}

// AccountCurrency resolves an account's currency, falling back to the
// database default when the account or its currency is unknown.
func (m *Model) AccountCurrency(id AccountID) Currency {
	if acct, ok := m.Accounts[id]; ok {
		if cur, ok := m.Currencies[acct.Currency]; ok {
			return cur
		}
	}
	if cur, ok := m.Currencies[m.DefaultCurrency]; ok {
		return cur
	}
	return Currency{Frac: 2}
}

// CurrencyByISO finds a currency by its ISO code.
func (m *Model) CurrencyByISO(iso string) (Currency, bool) {
	for _, cur := range m.Currencies {
		if cur.ISO == iso {
			return cur, true
		}
	}
	return Currency{}, false
}

// BudgetFor returns the allocation for a category in the given calendar
// month. An every-month entry overrides per-month entries. The second
// return is false when the category has no allocation for that month.
func (m *Model) BudgetFor(cat CategoryID, month time.Month) (int64, bool) {
	amount, ok := int64(0), false
	for _, e := range m.Budget {
		if e.Category != cat {
			continue
		}
		if e.Month == EveryMonth {
			return e.Amount, true
		}
		if e.Month == month {
			amount, ok = e.Amount, true
		}
	}
	return amount, ok
}

// HasBudget reports whether any budget entry exists for the category.
func (m *Model) HasBudget(cat CategoryID) bool {
	for _, e := range m.Budget {
		if e.Category == cat {
			return true
		}
	}
	return false
}
