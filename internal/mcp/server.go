// Package mcp exposes the loaded model's read-only queries as MCP tools
// over stdio. The model is loaded once before serving; every tool call is
// a pure aggregation over it.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hbtools/hbq/internal/commands"
	"github.com/hbtools/hbq/internal/model"
	"github.com/hbtools/hbq/internal/query"
	"github.com/hbtools/hbq/internal/render"
	"github.com/hbtools/hbq/internal/report"
)

type Server struct {
	model  *model.Model
	frac   int
	logger *log.Logger
}

// New builds a server over a loaded model. frac is the number of decimal
// places used when formatting amounts in tool results.
func New(m *model.Model, frac int, logger *log.Logger) *Server {
	return &Server{model: m, frac: frac, logger: logger}
}

func (s *Server) Run() error {
	mcpServer := server.NewMCPServer(
		"HomeBank Query",
		"1.0.0",
	)

	mcpServer.AddTool(mcp.NewTool("query_sum",
		mcp.WithDescription("Total the transactions matching a filter"),
		mcp.WithString("category",
			mcp.Description("Category name, either a leaf name or Parent:Child"),
		),
		mcp.WithString("from",
			mcp.Description("Earliest transaction date to include (YYYY-MM-DD)"),
		),
		mcp.WithString("to",
			mcp.Description("Latest transaction date to include (YYYY-MM-DD)"),
		),
		mcp.WithString("text",
			mcp.Description("Substring to match against memo, info, or payee"),
		),
	), s.sumHandler)

	mcpServer.AddTool(mcp.NewTool("review_categories",
		mcp.WithDescription("Transaction totals grouped by category"),
		mcp.WithString("from",
			mcp.Description("Earliest transaction date to include (YYYY-MM-DD)"),
		),
		mcp.WithString("to",
			mcp.Description("Latest transaction date to include (YYYY-MM-DD)"),
		),
	), s.reviewHandler)

	mcpServer.AddTool(mcp.NewTool("budget_progress",
		mcp.WithDescription("Budget-vs-actual progress per category over a date interval"),
		mcp.WithString("category",
			mcp.Description("Category name; omit for every category with a budget"),
		),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Start of the interval (YYYY-MM-DD)"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("End of the interval (YYYY-MM-DD), inclusive"),
		),
	), s.budgetHandler)

	mcpServer.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List every category path in the database"),
	), s.listCategoriesHandler)

	// Start the stdio server
	return server.ServeStdio(mcpServer)
}

func (s *Server) sumHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec, err := s.specFromArgs(request.Params.Arguments)
	if err != nil {
		return nil, err
	}

	total := report.Sum(query.Filter(s.model, spec))
	return mcp.NewToolResultText(render.Amount(total, s.frac)), nil
}

func (s *Server) reviewHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec, err := s.specFromArgs(request.Params.Arguments)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for _, bucket := range report.Review(s.model, spec) {
		fmt.Fprintf(&b, "%s: %s (%d transactions)\n", bucket.Path, render.Amount(bucket.Amount, s.frac), bucket.Count)
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("no matching transactions"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) budgetHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := dateArg(request.Params.Arguments, "from")
	if err != nil {
		return nil, err
	}
	to, err := dateArg(request.Params.Arguments, "to")
	if err != nil {
		return nil, err
	}
	if from == nil || to == nil {
		return nil, errors.New("from and to are required")
	}
	iv := report.Interval{From: *from, To: *to}

	var cats query.CategorySet
	if name, _ := request.Params.Arguments["category"].(string); name != "" {
		cats = query.Resolve(s.model, name)
		if len(cats) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("no category matches %q", name)), nil
		}
	}

	var b strings.Builder
	for _, row := range report.BudgetReview(s.model, cats, iv) {
		p := row.Progress
		if !p.HasBudget {
			fmt.Fprintf(&b, "%s: no budget set (spent %s)\n", row.Path, render.Amount(p.Actual, s.frac))
			continue
		}
		fmt.Fprintf(&b, "%s: %s of %s (%.1f %%)\n",
			row.Path, render.Amount(p.Actual, s.frac), render.Amount(p.Allocated, s.frac), p.Ratio*100)
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("no budgeted categories"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) listCategoriesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths := make([]string, 0, len(s.model.Categories))
	for id := range s.model.Categories {
		paths = append(paths, s.model.CategoryPath(id))
	}
	slices.Sort(paths)

	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintln(&b, p)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) specFromArgs(args map[string]any) (query.Spec, error) {
	spec := query.Spec{}
	if name, _ := args["category"].(string); name != "" {
		spec.Categories = query.Resolve(s.model, name)
	}
	if text, _ := args["text"].(string); text != "" {
		spec.Text = text
	}
	var err error
	if spec.Since, err = dateArg(args, "from"); err != nil {
		return query.Spec{}, err
	}
	if spec.Until, err = dateArg(args, "to"); err != nil {
		return query.Spec{}, err
	}
	return spec, nil
}

func dateArg(args map[string]any, key string) (*time.Time, error) {
	v, _ := args[key].(string)
	return commands.ParseDate(v)
}
