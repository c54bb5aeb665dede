package model

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbtools/hbq/internal/xhb"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFromDocumentResolvesParentDeclaredLate(t *testing.T) {
	// The child appears before its parent in file order.
	doc := &xhb.Document{
		Categories: []xhb.CategoryRecord{
			{Key: 2, Name: "Food", Parent: 1},
			{Key: 1, Name: "Bills"},
		},
	}

	m, err := FromDocument(doc, testLogger())
	require.NoError(t, err)

	assert.Equal(t, CategoryID(1), m.Categories[2].Parent)
	assert.Equal(t, "Bills:Food", m.CategoryPath(2))
	assert.Equal(t, "Bills", m.CategoryPath(1))
}

func TestFromDocumentDanglingParentBecomesRoot(t *testing.T) {
	doc := &xhb.Document{
		Categories: []xhb.CategoryRecord{
			{Key: 2, Name: "Food", Parent: 99},
		},
	}

	m, err := FromDocument(doc, testLogger())
	require.NoError(t, err)

	assert.Equal(t, CategoryID(0), m.Categories[2].Parent)
	assert.Equal(t, "Food", m.CategoryPath(2))
}

func TestFromDocumentCategoryCycle(t *testing.T) {
	tests := []struct {
		name string
		cats []xhb.CategoryRecord
	}{
		{"self parent", []xhb.CategoryRecord{{Key: 1, Name: "A", Parent: 1}}},
		{"two node loop", []xhb.CategoryRecord{
			{Key: 1, Name: "A", Parent: 2},
			{Key: 2, Name: "B", Parent: 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromDocument(&xhb.Document{Categories: tt.cats}, testLogger())
			require.ErrorIs(t, err, ErrCategoryCycle)
		})
	}
}

func TestFromDocumentMinorUnits(t *testing.T) {
	doc := &xhb.Document{
		Properties: xhb.Properties{Currency: 1},
		Currencies: []xhb.CurrencyRecord{
			{Key: 1, ISO: "USD", Frac: 2},
			{Key: 2, ISO: "JPY", Frac: 0},
		},
		Accounts: []xhb.AccountRecord{
			{Key: 1, Name: "Checking", Currency: 1, Initial: decimal.RequireFromString("250.755")},
			{Key: 2, Name: "Travel", Currency: 2},
		},
		Transactions: []xhb.TransactionRecord{
			{Date: date(2022, time.April, 1), Amount: decimal.RequireFromString("-10.25"), Account: 1},
			{Date: date(2022, time.April, 2), Amount: decimal.RequireFromString("-3000"), Account: 2},
		},
	}

	m, err := FromDocument(doc, testLogger())
	require.NoError(t, err)

	assert.Equal(t, int64(25076), m.Accounts[1].Initial)
	assert.Equal(t, int64(-1025), m.Transactions[0].Amount)
	assert.Equal(t, int64(-3000), m.Transactions[1].Amount)
}

func TestFromDocumentDanglingReferencesDegrade(t *testing.T) {
	doc := &xhb.Document{
		Properties: xhb.Properties{Currency: 1},
		Currencies: []xhb.CurrencyRecord{{Key: 1, Frac: 2}},
		Accounts:   []xhb.AccountRecord{{Key: 1, Name: "Checking", Currency: 1}},
		Transactions: []xhb.TransactionRecord{
			{Date: date(2022, time.April, 1), Amount: decimal.NewFromInt(-5), Account: 7, Category: 9, Payee: 3},
		},
	}

	m, err := FromDocument(doc, testLogger())
	require.NoError(t, err)
	require.Len(t, m.Transactions, 1)

	txn := m.Transactions[0]
	assert.Equal(t, AccountID(0), txn.Account)
	assert.Equal(t, PayeeID(0), txn.Payee)
	require.Len(t, txn.Legs, 1)
	assert.Equal(t, NoCategory, txn.Legs[0].Category)
	// One bad record never aborts the load; the amount survives.
	assert.Equal(t, int64(-500), txn.Amount)
}

func TestFromDocumentSplitLegs(t *testing.T) {
	doc := &xhb.Document{
		Properties: xhb.Properties{Currency: 1},
		Currencies: []xhb.CurrencyRecord{{Key: 1, Frac: 2}},
		Accounts:   []xhb.AccountRecord{{Key: 1, Name: "Checking", Currency: 1}},
		Categories: []xhb.CategoryRecord{{Key: 2, Name: "Food"}},
		Transactions: []xhb.TransactionRecord{
			{
				Date:            date(2022, time.April, 1),
				Amount:          decimal.RequireFromString("-30"),
				Account:         1,
				SplitCategories: []int{2, 0},
				SplitAmounts: []decimal.Decimal{
					decimal.RequireFromString("-20"),
					decimal.RequireFromString("-10"),
				},
				SplitMemos: []string{"veg"},
			},
		},
	}

	m, err := FromDocument(doc, testLogger())
	require.NoError(t, err)
	require.Len(t, m.Transactions, 1)

	txn := m.Transactions[0]
	assert.True(t, txn.Split())
	require.Len(t, txn.Legs, 2)
	assert.Equal(t, Leg{Category: 2, Amount: -2000, Memo: "veg"}, txn.Legs[0])
	assert.Equal(t, Leg{Category: NoCategory, Amount: -1000}, txn.Legs[1])
}

func TestBudgetEntries(t *testing.T) {
	doc := &xhb.Document{
		Properties: xhb.Properties{Currency: 1},
		Currencies: []xhb.CurrencyRecord{{Key: 1, Frac: 2}},
		Categories: []xhb.CategoryRecord{
			{Key: 1, Name: "Food", Budget: map[int]decimal.Decimal{
				4: decimal.RequireFromString("15"),
				5: decimal.RequireFromString("20"),
			}},
			{Key: 2, Name: "Rent", Budget: map[int]decimal.Decimal{
				0: decimal.RequireFromString("800"),
				6: decimal.RequireFromString("900"),
			}},
			{Key: 3, Name: "Misc"},
		},
	}

	m, err := FromDocument(doc, testLogger())
	require.NoError(t, err)

	amount, ok := m.BudgetFor(1, time.April)
	require.True(t, ok)
	assert.Equal(t, int64(1500), amount)

	_, ok = m.BudgetFor(1, time.June)
	assert.False(t, ok)

	// The every-month allotment wins over a per-month one.
	amount, ok = m.BudgetFor(2, time.June)
	require.True(t, ok)
	assert.Equal(t, int64(80000), amount)

	assert.True(t, m.HasBudget(1))
	assert.False(t, m.HasBudget(3))
}
