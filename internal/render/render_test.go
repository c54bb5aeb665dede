package render

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbtools/hbq/internal/model"
	"github.com/hbtools/hbq/internal/query"
	"github.com/hbtools/hbq/internal/report"
	"github.com/hbtools/hbq/internal/xhb"
)

func TestAmount(t *testing.T) {
	assert.Equal(t, "10.00", Amount(1000, 2))
	assert.Equal(t, "-10.25", Amount(-1025, 2))
	assert.Equal(t, "3000", Amount(3000, 0))
	assert.Equal(t, "0.00", Amount(0, 2))
}

func TestReviewTable(t *testing.T) {
	var buf bytes.Buffer
	ReviewTable(&buf, []report.CategoryTotal{
		{Category: 21, Path: "Bills:Food", Amount: 2000, Count: 1},
		{Category: 10, Path: "Food", Amount: 1000, Count: 2},
		{Category: 0, Path: report.UncategorizedPath, Amount: 500, Count: 1},
	}, 2)

	want := "Bills:Food            20.00  (1)\n" +
		"Food                  10.00  (2)\n" +
		"Uncategorized          5.00  (1)\n"
	assert.Equal(t, want, buf.String())
}

func TestTransactions(t *testing.T) {
	doc := &xhb.Document{
		Properties: xhb.Properties{Currency: 1},
		Currencies: []xhb.CurrencyRecord{{Key: 1, ISO: "USD", Frac: 2}},
		Accounts:   []xhb.AccountRecord{{Key: 1, Name: "Checking", Currency: 1}},
		Payees:     []xhb.PayeeRecord{{Key: 1, Name: "Corner Grocer"}},
		Categories: []xhb.CategoryRecord{{Key: 10, Name: "Food"}},
		Transactions: []xhb.TransactionRecord{
			{
				Date:     time.Date(2022, time.April, 5, 0, 0, 0, 0, time.UTC),
				Amount:   decimal.RequireFromString("-10.25"),
				Account:  1,
				Category: 10,
				Payee:    1,
				Memo:     "farmers market",
				Tags:     []string{"food", "weekly"},
			},
			{
				Date:    time.Date(2022, time.May, 1, 0, 0, 0, 0, time.UTC),
				Amount:  decimal.RequireFromString("5"),
				Account: 1,
			},
		},
	}
	m, err := model.FromDocument(doc, log.New(io.Discard))
	require.NoError(t, err)

	var buf bytes.Buffer
	Transactions(&buf, m, query.Filter(m, query.Spec{}), 2)

	want := "2022-04-05        -10.25  Food                      Corner Grocer         farmers market  [food weekly]\n" +
		"2022-05-01          5.00  Uncategorized\n"
	assert.Equal(t, want, buf.String())
}

func TestBudgetBarsNoBudget(t *testing.T) {
	var buf bytes.Buffer
	BudgetBars(&buf, []report.CategoryProgress{
		{Category: 1, Path: "Misc", Progress: report.Progress{Actual: -1234}},
	}, 2)

	assert.Contains(t, buf.String(), "no budget set")
	assert.Contains(t, buf.String(), "-12.34")
}
