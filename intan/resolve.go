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

// DisclosureYear is the first fiscal year in which firms had two years to
// comply with the 1975 FASB R&D reporting requirement
const DisclosureYear = 1977

// nearestNeighbor finds the closest non-missing value to position idx within
// values[lo:hi]. Distance is measured in fiscal years and a tie goes to the
// earlier observation.
func nearestNeighbor(years []int, values []float64, idx, lo, hi int) (float64, bool) {
	back, fwd := -1, -1
	for j := idx - 1; j >= lo; j-- {
		if !math.IsNaN(values[j]) {
			back = j
			break
		}
	}
	for j := idx + 1; j < hi; j++ {
		if !math.IsNaN(values[j]) {
			fwd = j
			break
		}
	}

	switch {
	case back >= 0 && fwd >= 0:
		if years[idx]-years[back] <= years[fwd]-years[idx] {
			return values[back], true
		}
		return values[fwd], true
	case back >= 0:
		return values[back], true
	case fwd >= 0:
		return values[fwd], true
	}

	return math.NaN(), false
}

// series is a working copy of one flow variable of a firm
type series struct {
	years  []int
	values []float64
	tags   []Strategy
}

func newSeries(years []FirmYear, get func(*FirmYear) float64, tag func(*FirmYear) Strategy) series {
	s := series{
		years:  make([]int, len(years)),
		values: make([]float64, len(years)),
		tags:   make([]Strategy, len(years)),
	}
	for idx := range years {
		s.years[idx] = years[idx].FiscalYear
		s.values[idx] = get(&years[idx])
		s.tags[idx] = tag(&years[idx])
	}
	return s
}

// interpolate fills missing values in [lo, hi) from their nearest neighbours
// in the same segment. When gate is non-nil only positions where gate is
// true are eligible. Neighbours are always taken from the input values, never
// from values filled by this pass.
func (s series) interpolate(lo, hi int, gate []bool) series {
	out := series{
		years:  s.years,
		values: append([]float64(nil), s.values...),
		tags:   append([]Strategy(nil), s.tags...),
	}

	for idx := lo; idx < hi; idx++ {
		if !math.IsNaN(s.values[idx]) || (gate != nil && !gate[idx]) {
			continue
		}
		if v, ok := nearestNeighbor(s.years, s.values, idx, lo, hi); ok {
			out.values[idx] = v
			out.tags[idx] = NearestNeighbor
		}
	}

	return out
}

// zeroFill replaces missing values in [lo, hi) with zero
func (s series) zeroFill(lo, hi int) series {
	out := series{
		years:  s.years,
		values: append([]float64(nil), s.values...),
		tags:   append([]Strategy(nil), s.tags...),
	}

	for idx := lo; idx < hi; idx++ {
		if math.IsNaN(out.values[idx]) {
			out.values[idx] = 0
			out.tags[idx] = ZeroFill
		}
	}

	return out
}

func (s series) indexOf(year int) int {
	for idx, y := range s.years {
		if y == year {
			return idx
		}
	}
	return -1
}

// firstAtOrAfter returns the first position whose fiscal year is >= year
func (s series) firstAtOrAfter(year int) int {
	for idx, y := range s.years {
		if y >= year {
			return idx
		}
	}
	return len(s.years)
}

// ResolveDisclosedRD is the first R&D pass over the real rows of a firm.
//
// From 1977 on, years with missing assets are interpolated from the nearest
// reported R&D in the post-1976 segment and anything still missing is zero.
// When the firm's 1977 R&D is zero or missing it was not an R&D spender and
// earlier gaps become zero as well. Other pre-1977 gaps stay missing until
// ResolveEarlyRD runs, which happens after SG&A is netted of R&D and the
// cohort tables are estimated.
func ResolveDisclosedRD(years []FirmYear, interpolateAll bool) []FirmYear {
	s := rdSeries(years)
	n := len(years)

	split := s.firstAtOrAfter(DisclosureYear)
	s = s.interpolate(split, n, assetsGate(years, interpolateAll))

	at1977 := s.indexOf(DisclosureYear)
	if at1977 >= 0 && (math.IsNaN(s.values[at1977]) || s.values[at1977] == 0) {
		s = s.zeroFill(0, split)
	}
	s = s.zeroFill(split, n)

	return s.setRD(years)
}

// ResolveEarlyRD fills the pre-1977 R&D left missing by ResolveDisclosedRD.
// A positive 1977 value means earlier gaps are interpolated within the
// pre-1978 segment regardless of assets; whatever is left is zero.
func ResolveEarlyRD(years []FirmYear) []FirmYear {
	s := rdSeries(years)

	split := s.firstAtOrAfter(DisclosureYear)
	if at1977 := s.indexOf(DisclosureYear); at1977 >= 0 && s.values[at1977] > 0 {
		s = s.interpolate(0, at1977+1, nil)
	}

	// firms without a 1977 observation
	s = s.zeroFill(0, split)

	return s.setRD(years)
}

func rdSeries(years []FirmYear) series {
	return newSeries(years, func(fy *FirmYear) float64 { return fy.RD }, func(fy *FirmYear) Strategy { return fy.RDStrategy })
}

func (s series) setRD(years []FirmYear) []FirmYear {
	out := cloneYears(years)
	for idx := range out {
		out[idx].RD = s.values[idx]
		out[idx].RDStrategy = s.tags[idx]
	}
	return out
}

// ResolveSGA interpolates missing SG&A over the whole series (gated on
// missing assets like R&D) and then removes R&D from SG&A: Compustat's XSGA
// includes R&D expense unless R&D exceeds SG&A while being below COGS, in
// which case R&D was reported in COGS. Missing SG&A becomes zero. It runs
// after ResolveDisclosedRD, so pre-1977 R&D still missing counts as zero.
func ResolveSGA(years []FirmYear, interpolateAll bool) []FirmYear {
	s := newSeries(years, func(fy *FirmYear) float64 { return fy.SGA }, func(fy *FirmYear) Strategy { return fy.SGAStrategy })
	s = s.interpolate(0, len(years), assetsGate(years, interpolateAll))

	out := cloneYears(years)
	for idx := range out {
		fy := &out[idx]
		sga := s.values[idx]
		fy.SGAStrategy = s.tags[idx]

		if math.IsNaN(sga) {
			fy.SGA = 0
			fy.SGAStrategy = ZeroFill
			continue
		}

		rd, rdip, cogs := nz(fy.RD), nz(fy.RDIP), nz(fy.COGS)
		if cogs > rd && rd > sga {
			fy.SGA = sga
		} else {
			fy.SGA = sga - rd - rdip
		}
	}

	return out
}

func assetsGate(years []FirmYear, interpolateAll bool) []bool {
	if interpolateAll {
		return nil
	}
	gate := make([]bool, len(years))
	for idx := range years {
		gate[idx] = years[idx].AssetsMissing()
	}
	return gate
}
