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
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// FoundingTable maps an 8 character CUSIP to a firm founding year
type FoundingTable map[string]int

// CUSIP8 normalizes a CUSIP to the 8 character issuer+issue form used to
// join the founding table against Compustat
func CUSIP8(cusip string) string {
	cusip = strings.ToUpper(strings.TrimSpace(cusip))
	if len(cusip) > 8 {
		cusip = cusip[:8]
	}
	return cusip
}

// Lookup returns the founding year recorded for the given CUSIP
func (table FoundingTable) Lookup(cusip string) (int, bool) {
	if cusip == "" {
		return 0, false
	}
	year, ok := table[CUSIP8(cusip)]
	return year, ok
}

// CleanFoundingYear applies the coding conventions of the Ritter table: -99,
// -9 and 0 mean unknown and 201 is a typo for 2013.
func CleanFoundingYear(founding float64) (int, bool) {
	if math.IsNaN(founding) {
		return 0, false
	}

	switch int(founding) {
	case -99, -9, 0:
		return 0, false
	case 201:
		return 2013, true
	}

	return int(founding), true
}

// NewFoundingTable builds a lookup table from raw founding records. When a
// CUSIP appears more than once the first usable record wins.
func NewFoundingTable(records []*FoundingRecord) FoundingTable {
	table := make(FoundingTable, len(records))
	for _, rec := range records {
		year, ok := CleanFoundingYear(float64(rec.Founding))
		if !ok || strings.TrimSpace(rec.CUSIP) == "" {
			continue
		}

		key := CUSIP8(rec.CUSIP)
		if _, exists := table[key]; !exists {
			table[key] = year
		}
	}

	return table
}

// LoadFoundingTable reads the Ritter IPO founding date table from either the
// published xlsx workbook or a csv export of it
func LoadFoundingTable(fn string) (FoundingTable, error) {
	var (
		records []*FoundingRecord
		err     error
	)

	switch strings.ToLower(filepath.Ext(fn)) {
	case ".xlsx", ".xlsm":
		records, err = loadFoundingXLSX(fn)
	default:
		records = []*FoundingRecord{}
		err = loadCSV(fn, FoundingColumns, &records)
	}

	if err != nil {
		return nil, err
	}

	table := NewFoundingTable(records)
	log.Info().Str("FileName", fn).Int("NumRecords", len(records)).Int("NumFirms", len(table)).Msg("loaded founding table")

	return table, nil
}

func loadFoundingXLSX(fn string) ([]*FoundingRecord, error) {
	f, err := excelize.OpenFile(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("could not open workbook")
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", fn, ErrEmptyFile)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", fn, ErrEmptyFile)
	}

	header := rows[0]
	if err := checkHeader(header, FoundingColumns); err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}

	colIdx := make(map[string]int, len(header))
	for idx, col := range header {
		colIdx[strings.TrimSpace(col)] = idx
	}

	cell := func(row []string, col string) string {
		idx := colIdx[col]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	records := make([]*FoundingRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := &FoundingRecord{
			CUSIP:     cell(row, "CUSIP"),
			OfferDate: cell(row, "offer date"),
			Founding:  Float(math.NaN()),
		}

		if val := cell(row, "Founding"); val != "" {
			founding, err := strconv.ParseFloat(val, 64)
			if err != nil {
				log.Warn().Str("CUSIP", rec.CUSIP).Str("Founding", val).Msg("could not parse founding year")
			} else {
				rec.Founding = Float(founding)
			}
		}

		records = append(records, rec)
	}

	return records, nil
}
