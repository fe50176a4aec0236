package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/autoscore/internal/config"
	"github.com/sells-group/autoscore/internal/model"
	"github.com/sells-group/autoscore/internal/prep"
	"github.com/sells-group/autoscore/internal/scorer"
	"github.com/sells-group/autoscore/internal/sheet"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score and rank vehicles",
	Long: `Score every vehicle of the vehicle table against the feature table.

Each scored feature is normalized, mapped to ranks when categorical, scaled
to [0,1] (electric and combustion vehicles separately for consumption
columns), weighted and summed into TotalScore. EuroPerScore is the price
divided by TotalScore: the total price after package costs and discounts
when cost-to-own preparation runs, the base price otherwise.

Feature rows without an "adac column" may carry hand-assigned scores in
one column per model name; --mentioned keeps only those models.

Examples:
  # Print the top 20 vehicles
  score --cars adac.csv --features feature.csv

  # Restrict to two models and apply the German purchase discount
  score --models "subaru impreza,opel corsa" --de-discount

  # Score only the models named in the feature table
  score --mentioned

  # Write the full ranking to a workbook and record the run
  score --output ranking.xlsx --limit 0 --save`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("cars", "", "vehicle table, CSV or XLSX (overrides input.cars_path)")
	f.String("features", "", "feature table, CSV or XLSX (overrides input.features_path)")
	f.String("output", "", "output file path, .csv or .xlsx (default: stdout)")
	f.String("format", "", "stdout format: table or csv (overrides output.format)")
	f.Int("limit", -1, "number of ranked vehicles to output, 0 for all (overrides output.limit)")
	f.StringSlice("models", nil, "keep only these models, e.g. \"subaru impreza,opel corsa\"")
	f.Bool("de-discount", false, "subtract the German purchase discount from total prices")
	f.Bool("mentioned", false, "keep only models named in the feature table's score columns")
	f.Bool("save", false, "record the run in the configured store")

	rootCmd.AddCommand(scoreCmd)
}

// scoreOptions are the resolved inputs of a score run.
type scoreOptions struct {
	CarsPath     string
	FeaturesPath string
	OutputPath   string
	Format       string
	Limit        int
	Save         bool
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := scoreOptions{
		CarsPath:     cfg.Input.CarsPath,
		FeaturesPath: cfg.Input.FeaturesPath,
		Format:       cfg.Output.Format,
		Limit:        cfg.Output.Limit,
	}
	fl := cmd.Flags()
	if v, _ := fl.GetString("cars"); v != "" {
		opts.CarsPath = v
	}
	if v, _ := fl.GetString("features"); v != "" {
		opts.FeaturesPath = v
	}
	if v, _ := fl.GetString("format"); v != "" {
		opts.Format = v
	}
	if v, _ := fl.GetInt("limit"); v >= 0 {
		opts.Limit = v
	}
	opts.OutputPath, _ = fl.GetString("output")
	opts.Save, _ = fl.GetBool("save")
	if opts.Format == "xlsx" && opts.OutputPath == "" {
		opts.OutputPath = "ranking.xlsx"
	}

	if models, _ := fl.GetStringSlice("models"); len(models) > 0 {
		cfg.Prep.Enabled = true
		cfg.Prep.Models = models
	}
	if discount, _ := fl.GetBool("de-discount"); discount {
		cfg.Prep.Enabled = true
		cfg.Prep.CostToOwn = true
		cfg.Prep.GermanDiscount = true
	}
	if mentioned, _ := fl.GetBool("mentioned"); mentioned {
		cfg.Prep.OnlyMentioned = true
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	return executeScore(ctx, opts, os.Stdout)
}

// executeScore loads the inputs, runs the pipeline and writes the ranking.
func executeScore(ctx context.Context, opts scoreOptions, stdout io.Writer) error {
	log := zap.L().With(zap.String("command", "score"))

	ds, specs, err := loadInputs(ctx, opts.CarsPath, opts.FeaturesPath)
	if err != nil {
		return err
	}

	orderings, err := scorer.LoadOrderings(cfg.Score.OrderingsPath)
	if err != nil {
		return err
	}

	prepCfg, err := resolvePrep(cfg.Prep, specs)
	if err != nil {
		return err
	}
	var pipeOpts []scorer.Option
	if prepCfg.Enabled {
		pipeOpts = append(pipeOpts, scorer.WithPreparer(prep.New(prepCfg, cfg.Score)))
	}
	pipe := scorer.New(cfg.Score, orderings, pipeOpts...)

	res, runErr := pipe.Run(ctx, ds, specs)
	if opts.Save {
		if err := saveRun(ctx, opts, specs, res, runErr); err != nil {
			log.Error("score: save run failed", zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	for _, w := range res.Warnings {
		log.Warn("score: degenerate column", zap.String("column", w.String()))
	}
	log.Debug("score: euro per score", zap.String("price_column", res.PriceColumn))

	table := sheet.ResultTable(res.Dataset, opts.Limit)
	if opts.OutputPath != "" {
		if err := sheet.WriteTable(opts.OutputPath, table, "Scores"); err != nil {
			return err
		}
		log.Info("score: ranking written",
			zap.String("path", opts.OutputPath),
			zap.Int("rows", len(table.Rows)),
		)
		return nil
	}

	switch opts.Format {
	case "csv":
		return sheet.WriteCSV(stdout, table)
	case "table":
		return writeRankingTable(stdout, res.Dataset, opts.Limit)
	default:
		return eris.Errorf("score: stdout format must be table or csv (got %q)", opts.Format)
	}
}

// resolvePrep turns on model selection from the feature table when only
// mentioned models are wanted. Explicit models take precedence.
func resolvePrep(pc config.PrepConfig, specs []model.FeatureSpec) (config.PrepConfig, error) {
	if !pc.OnlyMentioned || len(pc.Models) > 0 {
		return pc, nil
	}
	models := model.MentionedModels(specs)
	if len(models) == 0 {
		return pc, eris.New("score: --mentioned needs model score columns in the feature table")
	}
	pc.Enabled = true
	pc.Models = models
	return pc, nil
}

// writeRankingTable prints the ranking in aligned columns.
func writeRankingTable(out io.Writer, ds *model.Dataset, limit int) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "RANK\tID\tNAME\tTOTAL SCORE\tEUR/SCORE\t")

	for _, rv := range model.Ranking(ds, limit) {
		name := rv.Name
		if r := []rune(name); len(r) > 40 {
			name = string(r[:37]) + "..."
		}
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t\n",
			rv.Rank, rv.ID, name, formatScore(rv.TotalScore, "%.2f"), formatScore(rv.EuroPerScore, "%.0f"))
	}
	return eris.Wrap(w.Flush(), "score: write table")
}

func formatScore(v model.Value, format string) string {
	if f, ok := v.Float(); ok {
		return fmt.Sprintf(format, f)
	}
	return "-"
}

// saveRun records a finished or failed run.
func saveRun(ctx context.Context, opts scoreOptions, specs []model.FeatureSpec, res *scorer.Result, runErr error) error {
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	run := &model.Run{
		Status: model.RunStatusComplete,
		Summary: model.RunSummary{
			CarsPath:     filepath.Base(opts.CarsPath),
			FeaturesPath: filepath.Base(opts.FeaturesPath),
		},
	}
	for _, s := range specs {
		if s.Scored() {
			run.Summary.Features = append(run.Summary.Features, s.Feature)
		}
	}

	if runErr != nil {
		run.Status = model.RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.Summary.Vehicles = res.Dataset.Len()
		run.Summary.Duplicates = res.Duplicates
		for _, w := range res.Warnings {
			run.Summary.DegenerateCols = append(run.Summary.DegenerateCols, w.String())
		}
		run.Ranking = model.Ranking(res.Dataset, opts.Limit)
	}

	if err := st.SaveRun(ctx, run); err != nil {
		return err
	}
	zap.L().Info("score: run saved",
		zap.String("run_id", run.ID),
		zap.String("status", string(run.Status)),
		zap.String("features", strings.Join(run.Summary.Features, ", ")),
	)
	return nil
}
