// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anshuchen/prodscope/backblaze"
	"github.com/anshuchen/prodscope/data"
	"github.com/anshuchen/prodscope/healthcheck"
	"github.com/anshuchen/prodscope/intan"
	"github.com/anshuchen/prodscope/library"
	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// intanCmd represents the intan command
var intanCmd = &cobra.Command{
	Use:   "intan",
	Short: "Build knowledge and organizational capital stocks",
	Long: `The intan sub-command reads Compustat Fundamentals Annual, the Compustat
Company table and the Ritter IPO founding date table, and writes a panel of
knowledge capital (kcap) and organizational capital (ocap) by gvkey and fiscal
year.

Relative input paths are resolved against data.raw_dir and the output path
against data.processed_dir. A manifest describing the run is written next to
the output file.`,
	Run: func(cmd *cobra.Command, args []string) {
		runID := uuid.New()
		logger := log.With().Str("RunID", runID.String()).Logger()
		ctx := logger.WithContext(context.Background())

		pingURL := viper.GetString("healthchecks.ping_url")
		if err := healthcheck.Ping(ctx, pingURL, healthcheck.Start, runID.String()); err != nil {
			logger.Warn().Err(err).Msg("could not signal start to healthchecks")
		}

		manifest, err := runIntan(ctx, runID)
		if err != nil {
			if pingErr := healthcheck.Ping(ctx, pingURL, healthcheck.Fail, err.Error()); pingErr != nil {
				logger.Warn().Err(pingErr).Msg("could not signal failure to healthchecks")
			}
			logger.Fatal().Err(err).Msg("intangible capital build failed")
		}

		runTime := manifest.EndTime.Sub(manifest.StartTime)
		msg := fmt.Sprintf("%d firms, %d rows in %s", manifest.NumFirms, manifest.NumRows, durafmt.Parse(runTime).LimitFirstN(2))
		if err := healthcheck.Ping(ctx, pingURL, healthcheck.Success, msg); err != nil {
			logger.Warn().Err(err).Msg("could not signal success to healthchecks")
		}

		logger.Info().Str("RunTime", durafmt.Parse(runTime).String()).Int("NumFirms", manifest.NumFirms).
			Int("NumRows", manifest.NumRows).Strs("Outputs", manifest.Outputs).Msg("successfully built intangible capital")
	},
}

func runIntan(ctx context.Context, runID uuid.UUID) (*data.Manifest, error) {
	logger := zerolog.Ctx(ctx)

	rawDir := viper.GetString("data.raw_dir")
	inputs := map[string]string{
		"funda":    dataPath(rawDir, viper.GetString("intan.funda")),
		"company":  dataPath(rawDir, viper.GetString("intan.company")),
		"founding": dataPath(rawDir, viper.GetString("intan.founding")),
	}
	output := dataPath(viper.GetString("data.processed_dir"), viper.GetString("intan.output"))

	manifest := &data.Manifest{
		RunSummary: data.RunSummary{
			RunID:     runID,
			StartTime: time.Now(),
			Status:    data.RunFailed,
		},
		Inputs: inputs,
	}

	funds, err := data.LoadFundamentals(inputs["funda"])
	if err != nil {
		return nil, err
	}

	companies, err := data.LoadCompanies(inputs["company"])
	if err != nil {
		return nil, err
	}

	founding := data.FoundingTable{}
	if inputs["founding"] != "" {
		if founding, err = data.LoadFoundingTable(inputs["founding"]); err != nil {
			return nil, err
		}
	} else {
		logger.Warn().Msg("no founding table configured, founding years fall back to IPO and first Compustat year")
	}

	cfg := builderConfig()
	manifest.Parameters = parameterMap(cfg)

	builder := intan.NewBuilder(cfg, founding)
	result, err := builder.Build(ctx, funds, companies)
	if err != nil {
		return nil, err
	}

	if err := data.WriteStocksCSV(result.Stocks, output); err != nil {
		return nil, err
	}
	manifest.Outputs = append(manifest.Outputs, output)

	if viper.GetBool("intan.parquet") {
		parquetFn := strings.TrimSuffix(output, ".csv") + ".parquet"
		if err := data.WriteStocksParquet(result.Stocks, parquetFn); err != nil {
			return nil, err
		}
		manifest.Outputs = append(manifest.Outputs, parquetFn)
	}

	manifest.Status = data.RunSuccess
	manifest.EndTime = time.Now()
	manifest.NumInputRows = result.NumInputRows
	manifest.NumFirms = result.NumFirms
	manifest.NumRows = len(result.Stocks)
	manifest.Strategies = map[string]map[string]int{
		"rd":       result.Strategies["rd"],
		"sga":      result.Strategies["sga"],
		"founding": result.FoundingSources,
	}
	manifest.Growth = map[string]data.CohortRates{
		"rd":  result.Growth.RD.Rates(),
		"sga": result.Growth.SGA.Rates(),
	}

	manifestFn := output + ".manifest.json"
	if err := manifest.Save(manifestFn); err != nil {
		return nil, err
	}

	if dbURL := viper.GetString("db.url"); dbURL != "" {
		if err := saveToLibrary(ctx, dbURL, manifest, result.Stocks); err != nil {
			return nil, err
		}
	}

	if bucket := viper.GetString("backblaze.bucket"); bucket != "" {
		files := append([]string{manifestFn}, manifest.Outputs...)
		if err := backblaze.Upload(bucket, viper.GetString("backblaze.prefix"), files...); err != nil {
			return nil, err
		}
	}

	return manifest, nil
}

func saveToLibrary(ctx context.Context, dbURL string, manifest *data.Manifest, stocks []*data.Stock) error {
	myLibrary := &library.Library{DBUrl: dbURL}
	if err := myLibrary.Connect(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("could not connect to library database")
		return err
	}
	defer myLibrary.Close()

	if err := myLibrary.SaveRun(ctx, manifest); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("could not save run history")
		return err
	}

	return myLibrary.SaveStocks(ctx, manifest.RunID, stocks)
}

func init() {
	rootCmd.AddCommand(intanCmd)

	intanCmd.Flags().String("funda", "", "Compustat fundamentals annual csv")
	intanCmd.Flags().String("company", "", "Compustat company csv")
	intanCmd.Flags().String("founding", "", "Ritter IPO founding date table (xlsx or csv)")
	intanCmd.Flags().StringP("out", "o", "", "output csv")
	intanCmd.Flags().Bool("parquet", false, "also write a parquet copy of the output")
	intanCmd.Flags().Int("workers", 0, "number of concurrent workers")
	intanCmd.Flags().Int("batch-size", 0, "firms per worker batch")
	intanCmd.Flags().Bool("interpolate-all", false, "interpolate every missing flow, not only years with missing assets")

	flags := map[string]string{
		"intan.funda":           "funda",
		"intan.company":         "company",
		"intan.founding":        "founding",
		"intan.output":          "out",
		"intan.parquet":         "parquet",
		"intan.workers":         "workers",
		"intan.batch_size":      "batch-size",
		"intan.interpolate_all": "interpolate-all",
	}

	for key, flag := range flags {
		if err := viper.BindPFlag(key, intanCmd.Flags().Lookup(flag)); err != nil {
			log.Panic().Err(err).Str("Flag", flag).Msg("BindPFlag failed")
		}
	}
}
