package xhb

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXHB = `<?xml version="1.0"?>
<homebank v="1.4">
<properties title="Example" curr="1"/>
<cur key="1" iso="USD" name="US Dollar" symb="$" frac="2"/>
<grp key="1" name="Personal"/>
<account key="1" name="Checking" type="1" curr="1" grp="1" initial="250.75"/>
<pay key="1" name="Grocer"/>
<cat key="1" name="Bills"/>
<cat key="2" name="Food" parent="1" b0="120.5" b4="80"/>
<ope date="738246" amount="-10.25" account="1" category="2" payee="1" wording="weekly shop" tags="family weekly"/>
</homebank>
`

func TestParseReader(t *testing.T) {
	doc, err := ParseReader(strings.NewReader(sampleXHB))
	require.NoError(t, err)

	assert.Equal(t, "1.4", doc.Version)
	assert.Equal(t, "Example", doc.Properties.Title)
	assert.Equal(t, 1, doc.Properties.Currency)

	require.Len(t, doc.Currencies, 1)
	assert.Equal(t, CurrencyRecord{Key: 1, ISO: "USD", Name: "US Dollar", Symbol: "$", Frac: 2}, doc.Currencies[0])

	require.Len(t, doc.Groups, 1)
	assert.Equal(t, "Personal", doc.Groups[0].Name)

	require.Len(t, doc.Accounts, 1)
	acct := doc.Accounts[0]
	assert.Equal(t, "Checking", acct.Name)
	assert.Equal(t, 1, acct.Currency)
	assert.True(t, acct.Initial.Equal(decimal.RequireFromString("250.75")))

	require.Len(t, doc.Payees, 1)
	assert.Equal(t, "Grocer", doc.Payees[0].Name)

	require.Len(t, doc.Categories, 2)
	food := doc.Categories[1]
	assert.Equal(t, "Food", food.Name)
	assert.Equal(t, 1, food.Parent)
	require.Contains(t, food.Budget, 0)
	require.Contains(t, food.Budget, 4)
	assert.True(t, food.Budget[0].Equal(decimal.RequireFromString("120.5")))
	assert.True(t, food.Budget[4].Equal(decimal.NewFromInt(80)))

	require.Len(t, doc.Transactions, 1)
	txn := doc.Transactions[0]
	assert.Equal(t, time.Date(2022, time.April, 1, 0, 0, 0, 0, time.UTC), txn.Date)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("-10.25")))
	assert.Equal(t, 1, txn.Account)
	assert.Equal(t, 2, txn.Category)
	assert.Equal(t, 1, txn.Payee)
	assert.Equal(t, "weekly shop", txn.Memo)
	assert.Equal(t, []string{"family", "weekly"}, txn.Tags)
}

func TestParseReaderUnknownDataIgnored(t *testing.T) {
	input := `<homebank v="1.4">
<fav key="1" name="Scheduled"/>
<pay key="3" name="Landlord" shinyness="11"/>
</homebank>`

	doc, err := ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.Payees, 1)
	assert.Equal(t, PayeeRecord{Key: 3, Name: "Landlord"}, doc.Payees[0])
}

func TestParseReaderSplitTransaction(t *testing.T) {
	input := `<homebank v="1.4">
<ope date="738246" amount="-30" account="1" scat="2||0" samt="-20||-10" smem="veg||misc"/>
</homebank>`

	doc, err := ParseReader(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, doc.Transactions, 1)

	txn := doc.Transactions[0]
	assert.Equal(t, []int{2, 0}, txn.SplitCategories)
	require.Len(t, txn.SplitAmounts, 2)
	assert.True(t, txn.SplitAmounts[0].Equal(decimal.NewFromInt(-20)))
	assert.True(t, txn.SplitAmounts[1].Equal(decimal.NewFromInt(-10)))
	assert.Equal(t, []string{"veg", "misc"}, txn.SplitMemos)
}

func TestParseReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"wrong root", `<notes><ope/></notes>`},
		{"empty input", ``},
		{"malformed markup", `<homebank v="1.4"><ope date="738246"`},
		{"missing transaction date", `<homebank><ope amount="1" account="1"/></homebank>`},
		{"bad amount", `<homebank><ope date="738246" amount="ten" account="1"/></homebank>`},
		{"bad category key", `<homebank><cat key="x" name="Food"/></homebank>`},
		{"split length mismatch", `<homebank><ope date="738246" amount="-30" account="1" scat="2" samt="-20||-10"/></homebank>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReader(strings.NewReader(tt.input))
			require.Error(t, err)

			var decodeErr *DecodeError
			assert.ErrorAs(t, err, &decodeErr)
		})
	}
}

func TestJulianDate(t *testing.T) {
	tests := []struct {
		days int
		want time.Time
	}{
		{693596, time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{719163, time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{803533, time.Date(2200, time.December, 31, 0, 0, 0, 0, time.UTC)},
		// Out-of-range dates clamp to the supported bounds.
		{693500, time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{803534, time.Date(2200, time.December, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, julianDate(tt.days), "julian day %d", tt.days)
	}
}
