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
	"time"
)

// Strategy records how a flow value was obtained
type Strategy uint8

const (
	AsIs Strategy = iota
	NearestNeighbor
	CarryForward
	CohortGrowth
	ZeroFill
)

var strategyNames = [...]string{"AsIs", "NearestNeighbor", "CarryForward", "CohortGrowth", "ZeroFill"}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "Unknown"
}

// FirmYear is a single fiscal year of a firm's working panel
type FirmYear struct {
	FiscalYear int
	DataDate   time.Time
	CUSIP      string
	SIC        int

	RD     float64
	SGA    float64
	RDIP   float64
	COGS   float64
	Assets float64

	// Count is the number of real observations preceding this row. Synthetic
	// years before the first observation carry -1; interior gap years carry
	// the count of the year they were filled from.
	Count     int
	Synthetic bool

	RDStrategy  Strategy
	SGAStrategy Strategy
}

// AssetsMissing reports whether total assets are unavailable for the year
func (fy *FirmYear) AssetsMissing() bool {
	return math.IsNaN(fy.Assets)
}

// Firm is the ordered time series of one gvkey
type Firm struct {
	GVKey int
	CUSIP string

	// FirstComp is the first fiscal year the firm appears in Compustat
	FirstComp int

	// IPOYear is zero when Compustat has no IPO date for the firm
	IPOYear  int
	Founding int

	Years []FirmYear
}

// Age returns the number of years since IPO for a fiscal year
func (firm *Firm) Age(fiscalYear int) (int, bool) {
	if firm.IPOYear == 0 {
		return 0, false
	}
	return fiscalYear - firm.IPOYear, true
}

// firstReal returns the index of the first non-synthetic row
func firstReal(years []FirmYear) int {
	for idx := range years {
		if !years[idx].Synthetic {
			return idx
		}
	}
	return -1
}

func cloneYears(years []FirmYear) []FirmYear {
	out := make([]FirmYear, len(years))
	copy(out, years)
	return out
}
