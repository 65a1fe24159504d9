package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/report"
)

func exportCmd(configPath *string) *cobra.Command {
	var (
		name       string
		start, end string
	)

	cmd := &cobra.Command{
		Use:   "export [file.csv]",
		Short: "Export the inventory or a report as CSV",
		Long: `Export writes a CSV file, or standard output when no file is given.
Without --report the full inventory is exported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, err := openApp(ctx, cmd, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			return writeExport(ctx, out, a, name, start, end, time.Now())
		},
	}

	cmd.Flags().StringVarP(&name, "report", "r", "", "report: inventory, movements, low-stock, usage, requests")
	cmd.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last day, YYYY-MM-DD")
	return cmd
}

func writeExport(ctx context.Context, w io.Writer, a *app, name, start, end string, now time.Time) error {
	if name == "" {
		items, err := a.store.ListItems(ctx, model.ItemFilter{})
		if err != nil {
			return err
		}
		return report.ExportInventory(w, items, now)
	}

	rng, err := report.ParseRange(start, end)
	if err != nil {
		return err
	}

	rep, err := report.Build(ctx, a.store, name, rng)
	if err != nil {
		return err
	}
	return report.WriteCSV(w, report.Title(name), rep.Table(), now)
}
