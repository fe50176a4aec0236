package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/autoscore/internal/prep"
	"github.com/sells-group/autoscore/internal/scorer"
	"github.com/sells-group/autoscore/internal/sheet"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Create and check feature tables",
}

// -- features init --

var featuresInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a feature table template from a vehicle table",
	Long: `Write one row per vehicle column with its distinct value count, a numeric
summary and a suggested type. Edit the type and weight columns, then pass the
file to "score --features".`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		carsPath, _ := cmd.Flags().GetString("cars")
		if carsPath == "" {
			carsPath = cfg.Input.CarsPath
		}
		output, _ := cmd.Flags().GetString("output")
		return initFeatures(cmd.Context(), carsPath, output, os.Stdout)
	},
}

func initFeatures(ctx context.Context, carsPath, output string, stdout io.Writer) error {
	ds, err := sheet.LoadDataset(ctx, carsPath, readOptions(cfg.Input.CarsSheet))
	if err != nil {
		return eris.Wrapf(err, "load vehicles %s", carsPath)
	}

	table := sheet.TemplateTable(scorer.FeatureTemplate(ds, cfg.Prep.NumericColumns))
	if output == "" {
		return sheet.WriteCSV(stdout, table)
	}
	if err := sheet.WriteTable(output, table, "Spec"); err != nil {
		return err
	}
	zap.L().Info("features: template written", zap.String("path", output), zap.Int("rows", len(table.Rows)))
	return nil
}

// -- features check --

var featuresCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every scored feature resolves to a vehicle column",
	RunE: func(cmd *cobra.Command, _ []string) error {
		carsPath, _ := cmd.Flags().GetString("cars")
		if carsPath == "" {
			carsPath = cfg.Input.CarsPath
		}
		featuresPath, _ := cmd.Flags().GetString("features")
		if featuresPath == "" {
			featuresPath = cfg.Input.FeaturesPath
		}
		return checkFeatures(cmd.Context(), carsPath, featuresPath, os.Stdout)
	},
}

func checkFeatures(ctx context.Context, carsPath, featuresPath string, stdout io.Writer) error {
	ds, specs, err := loadInputs(ctx, carsPath, featuresPath)
	if err != nil {
		return err
	}

	var derived []string
	if cfg.Prep.Enabled && cfg.Prep.CostToOwn {
		derived = prep.DerivedColumns()
	}
	problems := scorer.CheckColumns(ds, specs, derived...)
	for _, p := range problems {
		_, _ = fmt.Fprintln(stdout, p.Error())
	}
	if len(problems) > 0 {
		return eris.Errorf("features check: %d of %d features do not resolve", len(problems), len(specs))
	}
	_, _ = fmt.Fprintf(stdout, "%d features ok\n", len(specs))
	return nil
}

func init() {
	featuresInitCmd.Flags().String("cars", "", "vehicle table (overrides input.cars_path)")
	featuresInitCmd.Flags().String("output", "", "template file, .csv or .xlsx (default: stdout)")

	featuresCheckCmd.Flags().String("cars", "", "vehicle table (overrides input.cars_path)")
	featuresCheckCmd.Flags().String("features", "", "feature table (overrides input.features_path)")

	featuresCmd.AddCommand(featuresInitCmd)
	featuresCmd.AddCommand(featuresCheckCmd)
	rootCmd.AddCommand(featuresCmd)
}
