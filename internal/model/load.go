package model

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/hbtools/hbq/internal/xhb"
)

// ErrCategoryCycle is returned when a category's parent chain loops back
// on itself. The file is structurally broken in that case, so the whole
// load fails.
var ErrCategoryCycle = errors.New("category parent chain contains a cycle")

// Load decodes the .xhb file at path and builds the normalized model. The
// file is read once and closed before Load returns. Records that cite
// missing entities are kept with the reference degraded to "none" and a
// warning logged; only structural problems abort the load.
func Load(path string, logger *log.Logger) (*Model, error) {
	doc, err := xhb.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, logger)
}

// FromDocument builds a Model from an already decoded document.
func FromDocument(doc *xhb.Document, logger *log.Logger) (*Model, error) {
	m := &Model{
		Version:         doc.Version,
		Title:           doc.Properties.Title,
		DefaultCurrency: CurrencyID(doc.Properties.Currency),
		Currencies:      make(map[CurrencyID]Currency, len(doc.Currencies)),
		Groups:          make(map[GroupID]Group, len(doc.Groups)),
		Accounts:        make(map[AccountID]Account, len(doc.Accounts)),
		Payees:          make(map[PayeeID]Payee, len(doc.Payees)),
		Categories:      make(map[CategoryID]Category, len(doc.Categories)),
	}

	for _, rec := range doc.Currencies {
		id := CurrencyID(rec.Key)
		m.Currencies[id] = Currency{
			ID:     id,
			Name:   rec.Name,
			ISO:    rec.ISO,
			Symbol: rec.Symbol,
			Frac:   rec.Frac,
		}
	}

	for _, rec := range doc.Groups {
		id := GroupID(rec.Key)
		m.Groups[id] = Group{ID: id, Name: rec.Name}
	}

	// Categories need two passes: a child may be declared before its
	// parent in file order, so parent links are only checked once every
	// category is registered.
	for _, rec := range doc.Categories {
		id := CategoryID(rec.Key)
		m.Categories[id] = Category{
			ID:     id,
			Name:   rec.Name,
			Parent: CategoryID(rec.Parent),
			Income: rec.Income(),
		}
	}
	for id, cat := range m.Categories {
		if cat.Parent == 0 {
			continue
		}
		if _, ok := m.Categories[cat.Parent]; !ok {
			logger.Warn("category references unknown parent, treating as root",
				"category", cat.Name, "key", int(id), "parent", int(cat.Parent))
			cat.Parent = 0
			m.Categories[id] = cat
		}
	}
	for id := range m.Categories {
		if err := checkAncestry(m.Categories, id); err != nil {
			return nil, err
		}
	}

	for _, rec := range doc.Payees {
		id := PayeeID(rec.Key)
		m.Payees[id] = Payee{ID: id, Name: rec.Name}
	}

	for _, rec := range doc.Accounts {
		id := AccountID(rec.Key)
		currency := CurrencyID(rec.Currency)
		if _, ok := m.Currencies[currency]; !ok {
			if currency != 0 {
				logger.Warn("account references unknown currency, using default",
					"account", rec.Name, "currency", rec.Currency)
			}
			currency = m.DefaultCurrency
		}
		m.Accounts[id] = Account{
			ID:       id,
			Name:     rec.Name,
			Type:     AccountType(rec.Type),
			Currency: currency,
			Group:    GroupID(rec.Group),
			Initial:  minorUnits(rec.Initial, m.fracOf(currency)),
		}
	}

	for i, rec := range doc.Transactions {
		m.Transactions = append(m.Transactions, m.buildTransaction(i, rec, logger))
	}

	m.Budget = buildBudget(doc.Categories, m.fracOf(m.DefaultCurrency))

	return m, nil
}

func (m *Model) buildTransaction(index int, rec xhb.TransactionRecord, logger *log.Logger) Transaction {
	account := AccountID(rec.Account)
	if _, ok := m.Accounts[account]; !ok {
		logger.Warn("transaction references unknown account",
			"index", index, "date", rec.Date.Format(time.DateOnly), "account", rec.Account)
		account = 0
	}
	frac := m.AccountCurrency(account).Frac

	txn := Transaction{
		Date:    rec.Date,
		Amount:  minorUnits(rec.Amount, frac),
		Account: account,
		Paymode: rec.Paymode,
		Status:  rec.Status,
		Memo:    rec.Memo,
		Info:    rec.Info,
		Tags:    rec.Tags,
	}

	if payee := PayeeID(rec.Payee); payee != 0 {
		if _, ok := m.Payees[payee]; ok {
			txn.Payee = payee
		} else {
			logger.Warn("transaction references unknown payee",
				"index", index, "date", rec.Date.Format(time.DateOnly), "payee", rec.Payee)
		}
	}

	if len(rec.SplitCategories) > 0 {
		txn.Legs = make([]Leg, 0, len(rec.SplitCategories))
		for j, catKey := range rec.SplitCategories {
			memo := ""
			if j < len(rec.SplitMemos) {
				memo = rec.SplitMemos[j]
			}
			txn.Legs = append(txn.Legs, Leg{
				Category: m.resolveCategory(index, catKey, logger),
				Amount:   minorUnits(rec.SplitAmounts[j], frac),
				Memo:     memo,
			})
		}
	} else {
		txn.Legs = []Leg{{
			Category: m.resolveCategory(index, rec.Category, logger),
			Amount:   txn.Amount,
			Memo:     rec.Memo,
		}}
	}

	return txn
}

func (m *Model) resolveCategory(index, key int, logger *log.Logger) CategoryID {
	if key == 0 {
		return NoCategory
	}
	id := CategoryID(key)
	if _, ok := m.Categories[id]; !ok {
		logger.Warn("transaction references unknown category, treating as uncategorized",
			"index", index, "category", key)
		return NoCategory
	}
	return id
}

func (m *Model) fracOf(id CurrencyID) int {
	if cur, ok := m.Currencies[id]; ok {
		return cur.Frac
	}
	return 2
}

func buildBudget(categories []xhb.CategoryRecord, frac int) []BudgetEntry {
	var entries []BudgetEntry
	for _, rec := range categories {
		months := make([]int, 0, len(rec.Budget))
		for month := range rec.Budget {
			months = append(months, month)
		}
		sort.Ints(months)
		for _, month := range months {
			entries = append(entries, BudgetEntry{
				Category: CategoryID(rec.Key),
				Month:    time.Month(month),
				Amount:   minorUnits(rec.Budget[month], frac),
			})
		}
	}
	return entries
}

func checkAncestry(categories map[CategoryID]Category, id CategoryID) error {
	seen := make(map[CategoryID]bool)
	for cur := id; cur != 0; cur = categories[cur].Parent {
		if seen[cur] {
			return fmt.Errorf("category %d: %w", int(id), ErrCategoryCycle)
		}
		seen[cur] = true
	}
	return nil
}

// minorUnits converts a display amount into an integer count of the
// currency's smallest unit, rounding half away from zero.
func minorUnits(d decimal.Decimal, frac int) int64 {
	return d.Shift(int32(frac)).Round(0).IntPart()
}
