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

// OrgDecay is the share of organizational capital that survives each year
const OrgDecay = 0.8

// CapitalState is the pair of stocks carried from one year to the next
type CapitalState struct {
	Knowledge      float64
	Organizational float64
}

// Next applies one year of accumulation:
//
//	K(t) = K(t-1) * (1 - theta) + rd(t)
//	O(t) = O(t-1) * 0.8 + sga(t) * gamma
func (state CapitalState) Next(rd, sga float64, params Params) CapitalState {
	return CapitalState{
		Knowledge:      state.Knowledge*(1-params.Theta) + rd,
		Organizational: state.Organizational*OrgDecay + sga*params.Gamma,
	}
}

// Accumulate folds a firm's resolved, contiguous year sequence into capital
// stocks. Both stocks are zero in the first year and each later year depends
// only on the previous year's stock and the current flows. The returned
// slice is aligned with years.
func Accumulate(years []FirmYear, industry *IndustryTable) []CapitalState {
	out := make([]CapitalState, len(years))

	state := CapitalState{}
	for idx := range years {
		if idx > 0 {
			fy := &years[idx]
			state = state.Next(fy.RD, fy.SGA, industry.Lookup(fy.SIC))
		}
		out[idx] = state
	}

	return out
}
