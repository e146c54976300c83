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

import "math"

// FillGaps returns a contiguous year sequence for the firm. Years from start
// up to the first observation are synthetic with missing flows and a count of
// -1. Years missing between two observations copy the earlier observation.
func FillGaps(years []FirmYear, start int) []FirmYear {
	if len(years) == 0 {
		return nil
	}

	first := years[0]
	last := years[len(years)-1]
	if start > first.FiscalYear {
		start = first.FiscalYear
	}

	out := make([]FirmYear, 0, last.FiscalYear-start+1)
	for year := start; year < first.FiscalYear; year++ {
		out = append(out, FirmYear{
			FiscalYear: year,
			CUSIP:      first.CUSIP,
			SIC:        first.SIC,
			RD:         math.NaN(),
			SGA:        math.NaN(),
			RDIP:       math.NaN(),
			COGS:       math.NaN(),
			Assets:     math.NaN(),
			Count:      -1,
			Synthetic:  true,
		})
	}

	for idx, fy := range years {
		out = append(out, fy)
		if idx+1 == len(years) {
			break
		}

		for year := fy.FiscalYear + 1; year < years[idx+1].FiscalYear; year++ {
			gap := fy
			gap.FiscalYear = year
			gap.Synthetic = true
			gap.RDStrategy = CarryForward
			gap.SGAStrategy = CarryForward
			out = append(out, gap)
		}
	}

	return out
}
