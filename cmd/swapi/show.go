package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Sternrassler/swapi-client/internal/config"
	"github.com/Sternrassler/swapi-client/pkg/client"
	"github.com/Sternrassler/swapi-client/pkg/dashboard"
	"github.com/Sternrassler/swapi-client/pkg/pagination"
	"github.com/Sternrassler/swapi-client/pkg/render"
	"github.com/spf13/cobra"
)

func newShowCommand(flags *globalFlags) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "show characters|planets",
		Short: "Print one page of characters or planets as a table",
		Example: `  swapi show characters
  swapi show planets --page 2`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"characters", "planets"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runShow(cmd.Context(), cfg, args[0], page, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&page, "page", pagination.DefaultPage, "page number (>= 1)")

	return cmd
}

func runShow(ctx context.Context, cfg *config.Config, resource string, page int, w io.Writer) error {
	table, ok := tables[resource]
	if !ok {
		names := make([]string, 0, len(tables))
		for name := range tables {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown resource %q (want one of %s)", resource, strings.Join(names, ", "))
	}

	c, err := client.New(cfg.ClientConfig())
	if err != nil {
		return fmt.Errorf("failed to create SWAPI client: %w", err)
	}

	nav := pagination.NewNavigator(pagination.NewMemoryStore(), pagination.DefaultSession)
	dash := dashboard.New(c, nav, render.NewDocument(), cfg.DashboardConfig())

	if _, err := dash.SetPage(ctx, page); err != nil {
		return err
	}

	if err := dash.Load(ctx, table); err != nil {
		if werr := render.TerminalError(w, dash.Snapshot().ErrorMessage); werr != nil {
			return werr
		}
		return err
	}

	snap := dash.Snapshot()
	tbl, _ := snap.Table(table)
	return render.Terminal(w, tbl, snap.Page)
}
