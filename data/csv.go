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
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingColumn = errors.New("required column missing")
	ErrEmptyFile     = errors.New("file has no header row")
)

// LoadFundamentals reads a Compustat Fundamentals Annual CSV export
func LoadFundamentals(fn string) ([]*Fundamental, error) {
	records := []*Fundamental{}
	if err := loadCSV(fn, FundamentalColumns, &records); err != nil {
		return nil, err
	}

	log.Info().Str("FileName", fn).Int("NumRecords", len(records)).Msg("loaded fundamentals")
	return records, nil
}

// LoadCompanies reads a Compustat Company CSV export
func LoadCompanies(fn string) ([]*Company, error) {
	records := []*Company{}
	if err := loadCSV(fn, CompanyColumns, &records); err != nil {
		return nil, err
	}

	log.Info().Str("FileName", fn).Int("NumRecords", len(records)).Msg("loaded companies")
	return records, nil
}

func loadCSV(fn string, required []string, out interface{}) error {
	raw, err := os.ReadFile(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("could not read file")
		return err
	}

	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	if err := RequireColumns(raw, required); err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}

	if err := gocsv.UnmarshalBytes(raw, out); err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("failed to unmarshal csv data")
		return err
	}

	return nil
}

// RequireColumns checks that the header row of the CSV document contains every
// column in required. Header names are compared case-sensitively after
// trimming whitespace, matching how gocsv binds struct tags.
func RequireColumns(raw []byte, required []string) error {
	reader := csv.NewReader(bytes.NewReader(raw))
	header, err := reader.Read()
	if err != nil {
		return ErrEmptyFile
	}

	return checkHeader(header, required)
}

func checkHeader(header []string, required []string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[strings.TrimSpace(col)] = true
	}

	missing := []string{}
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return nil
}
