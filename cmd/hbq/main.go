package main

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"github.com/hbtools/hbq/internal/commands"
	"github.com/hbtools/hbq/internal/model"
	"github.com/hbtools/hbq/internal/query"
	"github.com/hbtools/hbq/internal/render"
	"github.com/hbtools/hbq/internal/report"
)

type CLI struct {
	commands.CommonConfig

	Sum          SumCmd          `cmd:"" help:"Total the transactions matching a filter."`
	Review       ReviewCmd       `cmd:"" help:"Transaction totals grouped by category."`
	Budget       BudgetCmd       `cmd:"" help:"Budget-vs-actual progress per category."`
	Transactions TransactionsCmd `cmd:"" aliases:"t" help:"List transactions matching a filter."`
	Categories   CategoriesCmd   `cmd:"" help:"List categories."`
	Accounts     AccountsCmd     `cmd:"" help:"List accounts."`
	Payees       PayeesCmd       `cmd:"" help:"List payees."`
}

// filterFlags are the filter options shared by the query-style commands.
type filterFlags struct {
	Category string `short:"c" help:"Category name, either a leaf name or Parent:Child."`
	From     string `short:"d" help:"Include transactions from (and including) this date (YYYY-MM-DD)." placeholder:"date"`
	To       string `short:"D" help:"Include transactions up to (and including) this date (YYYY-MM-DD)." placeholder:"date"`
	Text     string `short:"t" help:"Match a substring of memo, info, or payee."`
}

func (f *filterFlags) spec(m *model.Model) (query.Spec, error) {
	spec := query.Spec{Text: f.Text}
	if f.Category != "" {
		spec.Categories = query.Resolve(m, f.Category)
	}
	var err error
	if spec.Since, err = commands.ParseDate(f.From); err != nil {
		return query.Spec{}, err
	}
	if spec.Until, err = commands.ParseDate(f.To); err != nil {
		return query.Spec{}, err
	}
	return spec, nil
}

type SumCmd struct {
	filterFlags
}

func (c *SumCmd) Run(common *commands.CommonConfig) error {
	logger := common.Logger()
	m, err := common.LoadModel(logger)
	if err != nil {
		return err
	}

	spec, err := c.spec(m)
	if err != nil {
		return err
	}

	total := report.Sum(query.Filter(m, spec))
	fmt.Println(render.Amount(total, common.Frac(m)))
	return nil
}

type ReviewCmd struct {
	filterFlags
	ExcludeEmpty bool `short:"x" help:"Leave out categories with no matching transactions."`
}

func (c *ReviewCmd) Run(common *commands.CommonConfig) error {
	logger := common.Logger()
	m, err := common.LoadModel(logger)
	if err != nil {
		return err
	}

	spec, err := c.spec(m)
	if err != nil {
		return err
	}

	buckets := report.Review(m, spec)
	if !c.ExcludeEmpty {
		buckets = report.WithEmptyCategories(m, buckets)
	}
	render.ReviewTable(os.Stdout, buckets, common.Frac(m))
	return nil
}

type BudgetCmd struct {
	Category string `arg:"" optional:"" help:"Category name; default is every category with a budget."`
	From     string `short:"d" help:"Start of the interval (YYYY-MM-DD); default is the current month." placeholder:"date"`
	To       string `short:"D" help:"End of the interval (YYYY-MM-DD), inclusive." placeholder:"date"`
}

func (c *BudgetCmd) Run(common *commands.CommonConfig) error {
	logger := common.Logger()
	m, err := common.LoadModel(logger)
	if err != nil {
		return err
	}

	iv, err := c.interval()
	if err != nil {
		return err
	}

	var ids []model.CategoryID
	if c.Category != "" {
		for id := range query.Resolve(m, c.Category) {
			ids = append(ids, id)
		}
	} else {
		for id := range m.Categories {
			if m.HasBudget(id) {
				ids = append(ids, id)
			}
		}
	}
	slices.SortFunc(ids, func(a, b model.CategoryID) int {
		return strings.Compare(m.CategoryPath(a), m.CategoryPath(b))
	})

	// Each row is an independent read-only aggregation over the loaded
	// model, so they can run in parallel.
	rows := make([]report.CategoryProgress, len(ids))
	g := new(errgroup.Group)
	for i, id := range ids {
		g.Go(func() error {
			rows[i] = report.CategoryProgress{
				Category: id,
				Path:     m.CategoryPath(id),
				Progress: report.BudgetProgress(m, query.NewCategorySet(id), iv),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	render.BudgetBars(os.Stdout, rows, common.Frac(m))
	return nil
}

func (c *BudgetCmd) interval() (report.Interval, error) {
	from, err := commands.ParseDate(c.From)
	if err != nil {
		return report.Interval{}, err
	}
	to, err := commands.ParseDate(c.To)
	if err != nil {
		return report.Interval{}, err
	}

	switch {
	case from == nil && to == nil:
		return report.Month(time.Now().UTC()), nil
	case to == nil:
		return report.Month(*from), nil
	case from == nil:
		return report.Interval{From: report.Month(*to).From, To: *to}, nil
	default:
		return report.Interval{From: *from, To: *to}, nil
	}
}

type TransactionsCmd struct {
	filterFlags
	Account string `short:"a" help:"Only transactions on this account (exact name)."`
}

func (c *TransactionsCmd) Run(common *commands.CommonConfig) error {
	logger := common.Logger()
	m, err := common.LoadModel(logger)
	if err != nil {
		return err
	}

	spec, err := c.spec(m)
	if err != nil {
		return err
	}
	if c.Account != "" {
		for id, acct := range m.Accounts {
			if acct.Name == c.Account {
				spec.Account = id
				break
			}
		}
		if spec.Account == 0 {
			return fmt.Errorf("unknown account %q", c.Account)
		}
	}

	render.Transactions(os.Stdout, m, query.Filter(m, spec), common.Frac(m))
	return nil
}

type CategoriesCmd struct{}

func (c *CategoriesCmd) Run(common *commands.CommonConfig) error {
	logger := common.Logger()
	m, err := common.LoadModel(logger)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(m.Categories))
	for id := range m.Categories {
		paths = append(paths, m.CategoryPath(id))
	}
	slices.Sort(paths)
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

type AccountsCmd struct{}

func (c *AccountsCmd) Run(common *commands.CommonConfig) error {
	logger := common.Logger()
	m, err := common.LoadModel(logger)
	if err != nil {
		return err
	}

	accounts := make([]model.Account, 0, len(m.Accounts))
	for _, acct := range m.Accounts {
		accounts = append(accounts, acct)
	}
	slices.SortFunc(accounts, func(a, b model.Account) int {
		return strings.Compare(a.Name, b.Name)
	})
	for _, acct := range accounts {
		cur := m.Currencies[acct.Currency]
		fmt.Printf("%-24s  %-12s  %s\n", acct.Name, acct.Type, cur.ISO)
	}
	return nil
}

type PayeesCmd struct{}

func (c *PayeesCmd) Run(common *commands.CommonConfig) error {
	logger := common.Logger()
	m, err := common.LoadModel(logger)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(m.Payees))
	for _, p := range m.Payees {
		names = append(names, p.Name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("hbq"),
		kong.Description("Query and report on a HomeBank database file."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.CommonConfig))
}
