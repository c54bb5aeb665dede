package xhb

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document is the decoded contents of a HomeBank .xhb file. Records appear
// in file order and still carry raw cross-reference keys; resolving those
// into entities is the loader's job.
type Document struct {
	// Version is the schema version from the <homebank v=".."> root.
	Version string

	Properties   Properties
	Currencies   []CurrencyRecord
	Groups       []GroupRecord
	Accounts     []AccountRecord
	Payees       []PayeeRecord
	Categories   []CategoryRecord
	Transactions []TransactionRecord
}

// Properties holds the database-wide settings from the <properties> element.
type Properties struct {
	Title    string
	Currency int // key of the default currency
}

// CurrencyRecord is a decoded <cur> element.
type CurrencyRecord struct {
	Key    int
	Name   string
	ISO    string
	Symbol string
	Frac   int // number of decimal places
}

// GroupRecord is a decoded <grp> element (account group).
type GroupRecord struct {
	Key  int
	Name string
}

// AccountRecord is a decoded <account> element.
type AccountRecord struct {
	Key      int
	Name     string
	Type     int
	Currency int
	Group    int
	Initial  decimal.Decimal
}

// PayeeRecord is a decoded <pay> element.
type PayeeRecord struct {
	Key  int
	Name string
}

// CategoryRecord is a decoded <cat> element. Budget holds the b0..b12
// attributes that were present: index 0 is the "same amount every month"
// allotment, 1..12 are per calendar month.
type CategoryRecord struct {
	Key    int
	Name   string
	Parent int // 0 = root category
	Flags  int
	Budget map[int]decimal.Decimal
}

// Income reports whether the category is flagged as an income category.
func (c CategoryRecord) Income() bool {
	return c.Flags&flagCategoryIncome != 0
}

// GF_INCOME in the HomeBank source.
const flagCategoryIncome = 1 << 1

// TransactionRecord is a decoded <ope> element. A transaction is split when
// the parallel SplitCategories/SplitAmounts lists are non-empty; the list
// lengths always agree after decoding (SplitMemos may be shorter when the
// trailing memos were empty).
type TransactionRecord struct {
	Date     time.Time
	Amount   decimal.Decimal
	Account  int
	Paymode  int
	Status   int
	Flags    int
	Payee    int // 0 = no payee
	Category int // 0 = uncategorized
	Memo     string
	Info     string
	Tags     []string

	SplitCategories []int
	SplitAmounts    []decimal.Decimal
	SplitMemos      []string
}
