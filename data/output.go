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
package data

import (
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// WriteStocksCSV writes the capital stock panel to fn as CSV
func WriteStocksCSV(stocks []*Stock, fn string) error {
	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		return err
	}

	fh, err := os.Create(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create output file")
		return err
	}
	defer fh.Close()

	if err := gocsv.MarshalFile(&stocks, fh); err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("csv write failed")
		return err
	}

	log.Info().Str("FileName", fn).Int("NumRecords", len(stocks)).Msg("csv write finished")
	return nil
}

// ReadStocksCSV reads a capital stock panel previously written by WriteStocksCSV
func ReadStocksCSV(fn string) ([]*Stock, error) {
	stocks := []*Stock{}
	if err := loadCSV(fn, []string{"gvkey", "fyear", "kcap", "ocap"}, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// WriteStocksParquet writes the capital stock panel to fn as a ZSTD
// compressed parquet file
func WriteStocksParquet(stocks []*Stock, fn string) error {
	var err error

	if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
		return err
	}

	fh, err := local.NewLocalFileWriter(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("cannot create local file")
		return err
	}
	defer fh.Close()

	pw, err := writer.NewParquetWriter(fh, new(Stock), 4)
	if err != nil {
		log.Error().
			Str("OriginalError", err.Error()).
			Msg("Parquet write failed")
		return err
	}

	pw.RowGroupSize = 128 * 1024 * 1024 // 128M
	pw.PageSize = 8 * 1024              // 8k
	pw.CompressionType = parquet.CompressionCodec_ZSTD

	if err = writeRows(pw, stocks); err != nil {
		if stopErr := pw.WriteStop(); stopErr != nil {
			log.Error().Err(stopErr).Msg("Parquet write stop failed")
		}
		return err
	}

	if err = pw.WriteStop(); err != nil {
		log.Error().Err(err).Msg("Parquet write failed")
		return err
	}

	log.Info().Str("FileName", fn).Int("NumRecords", len(stocks)).Msg("Parquet write finished")
	return nil
}

type rowWriter interface {
	Write(src interface{}) error
}

// writeRows stops at the first record that fails to write
func writeRows(pw rowWriter, stocks []*Stock) error {
	for _, r := range stocks {
		if err := pw.Write(r); err != nil {
			log.Error().
				Str("OriginalError", err.Error()).
				Int64("GVKey", r.GVKey).Int32("FiscalYear", r.FiscalYear).
				Msg("Parquet write failed for record")
			return err
		}
	}
	return nil
}
