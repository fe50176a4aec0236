package main

import (
	"context"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/autoscore/internal/model"
	"github.com/sells-group/autoscore/internal/sheet"
)

// readOptions builds table read options from the input config.
func readOptions(sheetName string) sheet.ReadOptions {
	opts := sheet.ReadOptions{Sheet: sheetName, Charset: cfg.Input.Charset}
	if r, size := utf8.DecodeRuneInString(cfg.Input.Delimiter); size > 0 && r != utf8.RuneError {
		opts.Delimiter = r
	}
	return opts
}

// loadInputs reads the vehicle table and the feature table concurrently.
func loadInputs(ctx context.Context, carsPath, featuresPath string) (*model.Dataset, []model.FeatureSpec, error) {
	var (
		ds    *model.Dataset
		specs []model.FeatureSpec
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ds, err = sheet.LoadDataset(gctx, carsPath, readOptions(cfg.Input.CarsSheet))
		return eris.Wrapf(err, "load vehicles %s", carsPath)
	})
	g.Go(func() error {
		var err error
		specs, err = sheet.LoadFeatureSpecs(gctx, featuresPath, readOptions(cfg.Input.FeaturesSheet))
		return eris.Wrapf(err, "load features %s", featuresPath)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	zap.L().Info("inputs loaded",
		zap.String("cars", carsPath),
		zap.Int("vehicles", ds.Len()),
		zap.String("features", featuresPath),
		zap.Int("specs", len(specs)),
	)
	return ds, specs, nil
}
