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
	"context"
	"errors"

	"github.com/alphadose/haxmap"
	"github.com/anshuchen/prodscope/data"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

var (
	ErrEmptyPanel = errors.New("panel has no usable firm-years")
)

type Config struct {
	Workers   int
	BatchSize int

	// InterpolateAll applies nearest neighbour interpolation to every missing
	// flow value instead of only to years where total assets are missing
	InterpolateAll bool

	ExcludeGVKeys  []int
	FoundingOffset int
	Cohort         CohortConfig
}

func DefaultConfig() Config {
	return Config{
		Workers:        4,
		BatchSize:      200,
		ExcludeGVKeys:  []int{175650}, // known data problems
		FoundingOffset: FoundingOffset,
		Cohort:         DefaultCohortConfig(),
	}
}

// Builder turns a Compustat panel into knowledge and organizational capital
// stocks
type Builder struct {
	Config   Config
	Industry *IndustryTable
	Founding data.FoundingTable
}

func NewBuilder(cfg Config, founding data.FoundingTable) *Builder {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}

	return &Builder{
		Config:   cfg,
		Industry: DefaultIndustryTable(),
		Founding: founding,
	}
}

// Result is the output of a build along with the diagnostics recorded in the
// run manifest
type Result struct {
	Stocks []*data.Stock
	Growth GrowthTables

	NumInputRows int
	NumFirms     int

	// Strategies counts how each flow value in the accumulation pass was
	// resolved, keyed by variable then strategy name
	Strategies map[string]map[string]int

	// FoundingSources counts firms by the rule that set their founding year
	FoundingSources map[string]int
}

type firmResult struct {
	stocks   []*data.Stock
	years    []FirmYear
	founding FoundingSource
}

// Build runs every stage over the panel: cleaning, resolution of missing
// flows from 1977 on, the SG&A adjustment, cohort growth estimation,
// resolution of earlier R&D, gap filling with cohort imputation and
// accumulation. Firms are processed in batches on a bounded worker pool; the
// cohort tables are complete before the second pool starts.
func (b *Builder) Build(ctx context.Context, funds []*data.Fundamental, companies []*data.Company) (*Result, error) {
	logger := zerolog.Ctx(ctx)

	firms := BuildPanel(funds, companies, b.Config.ExcludeGVKeys)
	if len(firms) == 0 {
		return nil, ErrEmptyPanel
	}

	logger.Info().Int("NumFirms", len(firms)).Int("NumInputRows", len(funds)).Msg("built firm-year panel")

	interpolateAll := b.Config.InterpolateAll
	err := b.forEachBatch(ctx, firms, func(firm *Firm) error {
		firm.Years = ResolveSGA(ResolveDisclosedRD(firm.Years, interpolateAll), interpolateAll)
		return nil
	})
	if err != nil {
		return nil, err
	}

	growth := BuildGrowthTables(firms, b.Config.Cohort)
	logger.Info().
		Int("RDAges", len(growth.RD.PostIPO)).Float64("RDPreIPOStep", growth.RD.PreIPOStep).
		Int("SGAAges", len(growth.SGA.PostIPO)).Float64("SGAPreIPOStep", growth.SGA.PreIPOStep).
		Msg("estimated cohort growth rates")

	results := haxmap.New[int, *firmResult](uintptr(len(firms)))
	err = b.forEachBatch(ctx, firms, func(firm *Firm) error {
		results.Set(firm.GVKey, b.buildFirm(firm, growth))
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Growth:       growth,
		NumInputRows: len(funds),
		NumFirms:     len(firms),
		Strategies: map[string]map[string]int{
			"rd":  {},
			"sga": {},
		},
		FoundingSources: map[string]int{},
	}

	for _, firm := range firms {
		res, ok := results.Get(firm.GVKey)
		if !ok {
			logger.Error().Int("GVKey", firm.GVKey).Msg("no result for firm")
			continue
		}

		result.Stocks = append(result.Stocks, res.stocks...)
		result.FoundingSources[res.founding.String()]++
		for idx := range res.years {
			result.Strategies["rd"][res.years[idx].RDStrategy.String()]++
			result.Strategies["sga"][res.years[idx].SGAStrategy.String()]++
		}
	}

	logger.Info().Int("NumRows", len(result.Stocks)).Msg("accumulated capital stocks")

	return result, nil
}

func (b *Builder) buildFirm(firm *Firm, growth GrowthTables) *firmResult {
	firm.Years = ResolveEarlyRD(firm.Years)

	external, hasExternal := b.Founding.Lookup(firm.CUSIP)
	founding, source := ResolveFounding(firm.FirstComp, firm.IPOYear, external, hasExternal, b.Config.FoundingOffset)
	firm.Founding = founding

	start := founding
	if firm.IPOYear != 0 && firm.IPOYear < start {
		start = firm.IPOYear
	}

	years := FillGaps(firm.Years, start)
	imputeBackward(firm, years, growth.RD,
		func(fy *FirmYear) float64 { return fy.RD },
		func(fy *FirmYear, v float64, s Strategy) { fy.RD, fy.RDStrategy = v, s })
	imputeBackward(firm, years, growth.SGA,
		func(fy *FirmYear) float64 { return fy.SGA },
		func(fy *FirmYear, v float64, s Strategy) { fy.SGA, fy.SGAStrategy = v, s })

	states := Accumulate(years, b.Industry)

	stocks := make([]*data.Stock, 0, len(firm.Years))
	for idx := range years {
		if years[idx].Count < 0 {
			continue
		}
		stocks = append(stocks, &data.Stock{
			GVKey:            int64(firm.GVKey),
			FiscalYear:       int32(years[idx].FiscalYear),
			KnowledgeCapital: states[idx].Knowledge,
			OrgCapital:       states[idx].Organizational,
		})
	}

	return &firmResult{
		stocks:   stocks,
		years:    years,
		founding: source,
	}
}

func (b *Builder) forEachBatch(ctx context.Context, firms []*Firm, fn func(*Firm) error) error {
	p := pool.New().WithMaxGoroutines(b.Config.Workers).WithContext(ctx).WithCancelOnError()

	for start := 0; start < len(firms); start += b.Config.BatchSize {
		batch := firms[start:min(start+b.Config.BatchSize, len(firms))]
		p.Go(func(ctx context.Context) error {
			for _, firm := range batch {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fn(firm); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return p.Wait()
}
