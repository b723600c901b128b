package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"csvdash/domain/dataset"
	"csvdash/internal"
	"csvdash/internal/config"
	"csvdash/internal/container"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "csvdash-cli",
		Short:         "Run the dashboard analyses against a local CSV or XLSX file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newReportCmd(),
		newExportCmd(),
		newChartsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// newApp builds the same components the web server uses, configured from the
// environment and .env
func newApp() (*container.Container, error) {
	cfg, err := config.LoadCLI()
	if err != nil {
		return nil, err
	}
	return container.New(cfg, internal.NewLoggerTo(os.Stderr, internal.ParseLogLevel(cfg.Log.Level)))
}

// loadTable runs path through the upload pipeline
func loadTable(ctx context.Context, app *container.Container, path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return app.Processor.ProcessUpload(ctx, &dataset.Upload{
		Filename: filepath.Base(path),
		Size:     info.Size(),
		File:     f,
	})
}

func newReportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Print the dashboard reports as terminal tables",
		Long: `Print the summary, categorical, numerical and correlation reports of a file.

Without any section flag every section is printed, using the first categorical
and numerical column.

Example: csvdash-cli report sales.csv --shape --nulls --numerical revenue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			t, err := loadTable(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			opts.categoricalSet = cmd.Flags().Changed("categorical")
			opts.numericalSet = cmd.Flags().Changed("numerical")
			return runReport(cmd.OutOrStdout(), t, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.info, "info", false, "Print column names, non-null counts and types")
	cmd.Flags().BoolVar(&opts.shape, "shape", false, "Print the number of rows and columns")
	cmd.Flags().BoolVar(&opts.nulls, "nulls", false, "Print missing values per column")
	cmd.Flags().BoolVar(&opts.describe, "describe", false, "Print descriptive statistics of numerical columns")
	cmd.Flags().StringVar(&opts.categorical, "categorical", "", "Categorical column to analyze")
	cmd.Flags().StringVar(&opts.numerical, "numerical", "", "Numerical column to analyze")
	cmd.Flags().BoolVar(&opts.correlation, "correlation", false, "Print the correlation matrix")
	return cmd
}

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the reports of a file to an .xlsx workbook",
		Long: `Write the summary, missing values, statistics, frequencies and correlation
reports of a file to an .xlsx workbook.

Example: csvdash-cli export sales.csv --out sales_report.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			t, err := loadTable(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if out == "" {
				base := filepath.Base(args[0])
				out = base[:len(base)-len(filepath.Ext(base))] + "_report.xlsx"
			}
			return writeFile(out, func(w io.Writer) error {
				return app.Exporter.Write(w, t)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output workbook (default <file>_report.xlsx)")
	return cmd
}

func newChartsCmd() *cobra.Command {
	var opts chartOptions

	cmd := &cobra.Command{
		Use:   "charts [file]",
		Short: "Write the dashboard charts as SVG files",
		Long: `Write the bar, pie, histogram, boxplot and heatmap charts of a file as SVG.

Example: csvdash-cli charts sales.csv --out-dir charts --categorical region`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			t, err := loadTable(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			return runCharts(cmd.Context(), cmd.OutOrStdout(), app, t, opts)
		},
	}

	cmd.Flags().StringVar(&opts.outDir, "out-dir", "charts", "Directory for the SVG files")
	cmd.Flags().StringVar(&opts.categorical, "categorical", "", "Categorical column (default first)")
	cmd.Flags().StringVar(&opts.numerical, "numerical", "", "Numerical column (default first)")
	return cmd
}

// writeFile creates path and hands it to write, removing it again on failure
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	color.Green("Wrote %s", path)
	return nil
}
