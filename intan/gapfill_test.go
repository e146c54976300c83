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
package intan_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anshuchen/prodscope/intan"
)

var _ = Describe("FillGaps", func() {
	It("returns nil for an empty firm", func() {
		Expect(intan.FillGaps(nil, 1990)).To(BeNil())
	})

	It("adds synthetic years before the first observation", func() {
		years := makeYears([]int{2000, 2001}, []float64{5, 6}, nil, nil)
		years[0].SIC = 7372
		years[0].CUSIP = "12345678"

		filled := intan.FillGaps(years, 1997)
		Expect(filled).To(HaveLen(5))

		for idx := 0; idx < 3; idx++ {
			Expect(filled[idx].FiscalYear).To(Equal(1997 + idx))
			Expect(filled[idx].Count).To(Equal(-1))
			Expect(filled[idx].Synthetic).To(BeTrue())
			Expect(filled[idx].SIC).To(Equal(7372))
			Expect(filled[idx].CUSIP).To(Equal("12345678"))
			Expect(filled[idx].RD).To(Satisfy(math.IsNaN))
			Expect(filled[idx].SGA).To(Satisfy(math.IsNaN))
		}

		Expect(filled[3].FiscalYear).To(Equal(2000))
		Expect(filled[3].Synthetic).To(BeFalse())
		Expect(filled[3].RD).To(Equal(5.0))
		Expect(filled[4].Count).To(Equal(1))
	})

	It("ignores a start year after the first observation", func() {
		years := makeYears([]int{2000, 2001}, []float64{3, nan}, []float64{4, 5}, nil)

		filled := intan.FillGaps(years, 2005)
		Expect(filled).To(HaveLen(2))
		Expect(filled[0].FiscalYear).To(Equal(2000))
		Expect(filled[1].FiscalYear).To(Equal(2001))
		Expect(filled[0].Count).To(Equal(0))
		Expect(filled[1].Count).To(Equal(1))
		Expect(filled[0].Synthetic).To(BeFalse())
		Expect(filled[0].RD).To(Equal(3.0))
		Expect(filled[1].RD).To(Satisfy(math.IsNaN))
		Expect(sgaOf(filled)).To(Equal([]float64{4, 5}))
	})

	It("carries the earlier observation into interior gaps", func() {
		years := makeYears([]int{2000, 2003}, []float64{10, 40}, []float64{7, 8}, nil)

		filled := intan.FillGaps(years, 2000)
		Expect(filled).To(HaveLen(4))

		fiscalYears := []int{}
		for _, fy := range filled {
			fiscalYears = append(fiscalYears, fy.FiscalYear)
		}
		Expect(fiscalYears).To(Equal([]int{2000, 2001, 2002, 2003}))

		Expect(rdOf(filled)).To(Equal([]float64{10, 10, 10, 40}))
		Expect(sgaOf(filled)).To(Equal([]float64{7, 7, 7, 8}))
		Expect(filled[1].Count).To(Equal(0))
		Expect(filled[2].RDStrategy).To(Equal(intan.CarryForward))
		Expect(filled[2].Synthetic).To(BeTrue())
		Expect(filled[3].Count).To(Equal(1))
	})
})
