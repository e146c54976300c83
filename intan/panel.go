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
package intan

import (
	"math"
	"sort"

	"github.com/anshuchen/prodscope/data"
)

// BuildPanel joins fundamentals with company attributes, keeps the standard
// industrial format rows and returns one firm per gvkey with exactly one row
// per fiscal year, ordered by gvkey and fiscal year.
func BuildPanel(funds []*data.Fundamental, companies []*data.Company, exclude []int) []*Firm {
	companyMap := make(map[int]*data.Company, len(companies))
	for _, company := range companies {
		if _, ok := companyMap[int(company.GVKey)]; !ok {
			companyMap[int(company.GVKey)] = company
		}
	}

	excluded := make(map[int]bool, len(exclude))
	for _, gvkey := range exclude {
		excluded[gvkey] = true
	}

	grouped := make(map[int][]*data.Fundamental)
	for _, fund := range funds {
		if fund.IndFmt != "INDL" || fund.DataFmt != "STD" {
			continue
		}

		if !fund.FYear.Valid() || excluded[int(fund.GVKey)] {
			continue
		}

		grouped[int(fund.GVKey)] = append(grouped[int(fund.GVKey)], fund)
	}

	firms := make([]*Firm, 0, len(grouped))
	for gvkey, rows := range grouped {
		firms = append(firms, newFirm(gvkey, rows, companyMap[gvkey]))
	}

	sort.Slice(firms, func(i, j int) bool {
		return firms[i].GVKey < firms[j].GVKey
	})

	return firms
}

func newFirm(gvkey int, rows []*data.Fundamental, company *data.Company) *Firm {
	// order so that the last row of each fiscal year is the one to keep: the
	// latest datadate, then the largest seq with missing values first
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.FYear != b.FYear {
			return a.FYear < b.FYear
		}
		if !a.DataDate.Equal(b.DataDate.Time) {
			return a.DataDate.Before(b.DataDate.Time)
		}
		if !a.SEQ.Valid() {
			return b.SEQ.Valid()
		}
		return b.SEQ.Valid() && a.SEQ < b.SEQ
	})

	firm := &Firm{
		GVKey: gvkey,
	}

	if company != nil && !company.IPODate.IsZero() {
		firm.IPOYear = company.IPODate.Year()
	}

	years := make([]FirmYear, 0, len(rows))
	for idx, row := range rows {
		if idx+1 < len(rows) && rows[idx+1].FYear == row.FYear {
			continue
		}

		sic := 0
		switch {
		case row.SICH.Valid():
			sic = int(row.SICH)
		case company != nil && company.SIC.Valid():
			sic = int(company.SIC)
		}

		years = append(years, FirmYear{
			FiscalYear: int(row.FYear),
			DataDate:   row.DataDate.Time,
			CUSIP:      row.CUSIP,
			SIC:        sic,
			RD:         float64(row.XRD),
			SGA:        float64(row.XSGA),
			RDIP:       float64(row.RDIP),
			COGS:       float64(row.COGS),
			Assets:     float64(row.AT),
			Count:      len(years),
		})
	}

	firm.Years = years
	firm.FirstComp = years[0].FiscalYear
	for _, fy := range years {
		if fy.CUSIP != "" {
			firm.CUSIP = fy.CUSIP
			break
		}
	}

	return firm
}

func nz(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
