package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/salesvote/internal/adapters/dataset"
	"github.com/vncsmyrnk/salesvote/internal/config"
	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/services"
)

func newSalesCmd() *cobra.Command {
	var (
		count string
		file  string
	)
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Show suppliers ranked by warehouse sales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := services.ParseWindowSize(count)
			if err != nil {
				return err
			}

			if file == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				file = cfg.DatasetPath
			}

			sales := services.NewSalesService(dataset.NewLoader(file, nil), newLogger(cmd))
			if err := sales.Reload(cmd.Context()); err != nil {
				return fmt.Errorf("sales data unavailable: %w", err)
			}
			view := sales.View(window)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Top %s of %d suppliers\n", services.FormatWindowSize(window), view.Total)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SUPPLIER\tWAREHOUSE SALES\tRETAIL SALES")
			for _, s := range view.Suppliers {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Supplier, formatAmount(s.WarehouseSales), formatAmount(s.RetailSales))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&count, "count", services.FormatWindowSize(domain.DefaultWindow), "number of suppliers to show, or ALL")
	cmd.Flags().StringVar(&file, "file", "", "dataset path or URL (default $DATASET_PATH)")
	return cmd
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
