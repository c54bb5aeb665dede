package main

import (
	"github.com/alecthomas/kong"

	"github.com/hbtools/hbq/internal/commands"
	"github.com/hbtools/hbq/internal/mcp"
)

type CLI struct {
	commands.CommonConfig
}

func (c *CLI) Run() error {
	logger := c.Logger()

	m, err := c.LoadModel(logger)
	if err != nil {
		logger.Fatal("Failed to load HomeBank database", "error", err)
	}
	logger.Info("Database loaded",
		"transactions", len(m.Transactions),
		"categories", len(m.Categories),
		"accounts", len(m.Accounts))

	return mcp.New(m, c.Frac(m), logger).Run()
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("hbq-mcp-server"),
		kong.Description("Serve read-only HomeBank queries as MCP tools over stdio."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
