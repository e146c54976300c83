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

	"github.com/anshuchen/prodscope/data"
)

// CohortConfig sets the age windows over which cohort growth rates are
// estimated. Post-IPO rates are computed for ages PostIPOMinAge and above;
// pre-IPO rates for ages in (PreIPOFrom, PreIPOTo].
type CohortConfig struct {
	PostIPOMinAge int
	PreIPOFrom    int
	PreIPOTo      int
}

func DefaultCohortConfig() CohortConfig {
	return CohortConfig{
		PostIPOMinAge: 1,
		PreIPOFrom:    -2,
		PreIPOTo:      0,
	}
}

// CohortTable holds the mean year-over-year log growth of a flow variable by
// age since IPO
type CohortTable struct {
	PostIPO    map[int]float64
	PreIPO     map[int]float64
	PreIPOStep float64

	minAge int
}

// Rate returns the log growth used to step back from age to age-1. Ages at
// or above the post-IPO minimum use the post-IPO table (zero where no firm
// contributed a pair); younger ages, and firms without an IPO date, use the
// pre-IPO step rate.
func (table *CohortTable) Rate(age int, hasIPO bool) float64 {
	if hasIPO && age >= table.minAge {
		return table.PostIPO[age]
	}
	return table.PreIPOStep
}

func (table *CohortTable) Rates() data.CohortRates {
	return data.CohortRates{
		PostIPO:    table.PostIPO,
		PreIPO:     table.PreIPO,
		PreIPOStep: table.PreIPOStep,
	}
}

// GrowthTables are the cohort tables for both flow variables. They are
// computed once over the whole panel and are read-only afterwards.
type GrowthTables struct {
	RD  *CohortTable
	SGA *CohortTable
}

// BuildGrowthTables estimates cohort growth rates from the real rows of every
// firm with an IPO date
func BuildGrowthTables(firms []*Firm, cfg CohortConfig) GrowthTables {
	return GrowthTables{
		RD:  buildCohortTable(firms, cfg, func(fy *FirmYear) float64 { return fy.RD }),
		SGA: buildCohortTable(firms, cfg, func(fy *FirmYear) float64 { return fy.SGA }),
	}
}

type meanAcc struct {
	sum float64
	n   int
}

func buildCohortTable(firms []*Firm, cfg CohortConfig, get func(*FirmYear) float64) *CohortTable {
	growth := make(map[int]*meanAcc)
	maxAge := math.MinInt

	for _, firm := range firms {
		if firm.IPOYear == 0 {
			continue
		}

		byAge := make(map[int]float64, len(firm.Years))
		for idx := range firm.Years {
			fy := &firm.Years[idx]
			if fy.Synthetic {
				continue
			}
			age, _ := firm.Age(fy.FiscalYear)
			byAge[age] = get(fy)
			if age > maxAge {
				maxAge = age
			}
		}

		for age, cur := range byAge {
			prev, ok := byAge[age-1]
			if !ok || !(cur > 0) || !(prev > 0) {
				continue
			}
			acc, ok := growth[age]
			if !ok {
				acc = &meanAcc{}
				growth[age] = acc
			}
			acc.sum += math.Log(cur) - math.Log(prev)
			acc.n++
		}
	}

	table := &CohortTable{
		PostIPO: make(map[int]float64),
		PreIPO:  make(map[int]float64),
		minAge:  cfg.PostIPOMinAge,
	}

	for age := cfg.PostIPOMinAge; age <= maxAge; age++ {
		if acc, ok := growth[age]; ok {
			table.PostIPO[age] = acc.sum / float64(acc.n)
		}
	}

	ages := make([]int, 0, cfg.PreIPOTo-cfg.PreIPOFrom)
	for age := cfg.PreIPOFrom + 1; age <= cfg.PreIPOTo; age++ {
		if acc, ok := growth[age]; ok {
			table.PreIPO[age] = acc.sum / float64(acc.n)
			ages = append(ages, age)
		}
	}

	if len(ages) > 0 {
		sum := 0.0
		for _, age := range ages {
			sum += table.PreIPO[age]
		}
		table.PreIPOStep = sum / float64(len(ages))
	}

	return table
}

// imputeBackward fills the synthetic years that precede a firm's first real
// observation. Starting from the most recent missing year it subtracts the
// cohort growth rate of the following year's age from that year's log value:
//
//	ln x(t) = ln x(t+1) - g(age(t+1))
//
// A first observation that is zero or negative has no log and the earlier
// years are zero filled.
func imputeBackward(firm *Firm, years []FirmYear, table *CohortTable, get func(*FirmYear) float64, set func(*FirmYear, float64, Strategy)) {
	first := firstReal(years)
	if first <= 0 {
		return
	}

	anchor := get(&years[first])
	if !(anchor > 0) {
		for idx := first - 1; idx >= 0; idx-- {
			set(&years[idx], 0, ZeroFill)
		}
		return
	}

	logValue := math.Log(anchor)
	for idx := first - 1; idx >= 0; idx-- {
		age, hasIPO := firm.Age(years[idx+1].FiscalYear)
		logValue -= table.Rate(age, hasIPO)
		set(&years[idx], math.Exp(logValue), CohortGrowth)
	}
}
