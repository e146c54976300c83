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

// Package intan builds knowledge and organizational capital stocks from a
// Compustat firm-year panel following Ewens, Peters and Wang (2020).
//
// Missing R&D and SG&A are interpolated from the nearest reported year only
// where total assets are also missing; a gap in a year with reported assets
// is treated as zero spending. Config.InterpolateAll interpolates every gap.
// The exception is R&D before 1977 for firms reporting positive 1977 R&D,
// which is always interpolated.
package intan

// Params holds the depreciation pair applied to a firm-year: Theta decays the
// knowledge stock and Gamma is the share of SG&A treated as investment in
// organizational capital.
type Params struct {
	Theta float64
	Gamma float64
}

type sicRange struct {
	lo, hi int // [lo, hi)
}

// IndustryGroup is a named set of SIC code ranges sharing one parameter pair
type IndustryGroup struct {
	Name   string
	Params Params
	ranges []sicRange
}

func (group *IndustryGroup) contains(sic int) bool {
	for _, r := range group.ranges {
		if sic >= r.lo && sic < r.hi {
			return true
		}
	}
	return false
}

// IndustryTable assigns decay parameters by SIC code. Groups are tested in
// order and the first match wins; codes outside every group get Fallback.
type IndustryTable struct {
	groups   []IndustryGroup
	fallback Params
}

// Lookup is total: every SIC code resolves to exactly one parameter pair
func (table *IndustryTable) Lookup(sic int) Params {
	for idx := range table.groups {
		if table.groups[idx].contains(sic) {
			return table.groups[idx].Params
		}
	}
	return table.fallback
}

// Group returns the name of the group sic belongs to, or "other"
func (table *IndustryTable) Group(sic int) string {
	for idx := range table.groups {
		if table.groups[idx].contains(sic) {
			return table.groups[idx].Name
		}
	}
	return "other"
}

func codes(sics ...int) []sicRange {
	out := make([]sicRange, len(sics))
	for idx, sic := range sics {
		out[idx] = sicRange{sic, sic + 1}
	}
	return out
}

func ranges(bounds ...int) []sicRange {
	out := make([]sicRange, 0, len(bounds)/2)
	for idx := 0; idx+1 < len(bounds); idx += 2 {
		out = append(out, sicRange{bounds[idx], bounds[idx+1]})
	}
	return out
}

// DefaultIndustryTable returns the four industry groups of Ewens, Peters and
// Wang with their estimated R&D and SG&A parameters
func DefaultIndustryTable() *IndustryTable {
	return &IndustryTable{
		groups: []IndustryGroup{
			{
				Name:   "consumer",
				Params: Params{Theta: 0.33, Gamma: 0.19},
				ranges: append(codes(3714, 3716, 3750, 3751, 3792, 4813, 4812, 4841, 4833, 4832),
					ranges(100, 1000, 2000, 2400, 2700, 2750, 2770, 2800, 3100, 3200,
						3940, 3990, 2500, 2520, 2590, 2600, 3630, 3660, 3710, 3712,
						3900, 3940, 3990, 4000, 5000, 6000, 7200, 7300, 7600, 7700,
						8000, 8100)...),
			},
			{
				Name:   "manufacturing",
				Params: Params{Theta: 0.42, Gamma: 0.22},
				ranges: ranges(2520, 2590, 2600, 2700, 2750, 2770, 2800, 2830, 2840, 2900,
					3000, 3100, 3200, 3570, 3580, 3622, 3623, 3630, 3700, 3710,
					3712, 3714, 3715, 3716, 3717, 3750, 3752, 3792, 3793, 3800,
					3860, 3900, 1200, 1400, 2900, 3000, 4900, 4950),
			},
			{
				Name:   "hightech",
				Params: Params{Theta: 0.46, Gamma: 0.44},
				ranges: append(codes(3622, 7391),
					ranges(3570, 3580, 3660, 3693, 3694, 3700, 3810, 3840, 7370, 7380,
						8730, 8735, 4800, 4900)...),
			},
			{
				Name:   "health",
				Params: Params{Theta: 0.34, Gamma: 0.49},
				ranges: ranges(2830, 2840, 3693, 3694, 3840, 3860),
			},
		},
		fallback: Params{Theta: 0.30, Gamma: 0.34},
	}
}
