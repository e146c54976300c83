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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anshuchen/prodscope/data"
	"github.com/anshuchen/prodscope/intan"
)

var _ = Describe("BuildPanel", func() {
	It("keeps only standard industrial rows with a fiscal year", func() {
		fs := fundamental(1001, 2000, 2000, 1, 1, 1)
		fs.IndFmt = "FS"
		sumStd := fundamental(1001, 2001, 2000, 1, 1, 1)
		sumStd.DataFmt = "SUMM_STD"
		noYear := fundamental(1001, 2002, 2000, 1, 1, 1)
		noYear.FYear = data.Float(nan)

		firms := intan.BuildPanel([]*data.Fundamental{fs, sumStd, noYear, fundamental(1001, 2003, 2000, 1, 1, 1)}, nil, nil)
		Expect(firms).To(HaveLen(1))
		Expect(firms[0].Years).To(HaveLen(1))
		Expect(firms[0].Years[0].FiscalYear).To(Equal(2003))
		Expect(firms[0].FirstComp).To(Equal(2003))
	})

	It("drops excluded firms", func() {
		firms := intan.BuildPanel([]*data.Fundamental{
			fundamental(1001, 2000, 2000, 1, 1, 1),
			fundamental(175650, 2000, 2000, 1, 1, 1),
		}, nil, []int{175650})

		Expect(firms).To(HaveLen(1))
		Expect(firms[0].GVKey).To(Equal(1001))
	})

	It("keeps the latest filing of a duplicated fiscal year", func() {
		early := fundamental(1001, 2001, 2000, 5, 1, 1)
		early.DataDate = data.Date{Time: time.Date(2001, 6, 30, 0, 0, 0, 0, time.UTC)}
		late := fundamental(1001, 2001, 2000, 7, 1, 1)

		firms := intan.BuildPanel([]*data.Fundamental{late, fundamental(1001, 2002, 2000, 9, 1, 1), early}, nil, nil)
		Expect(firms[0].Years).To(HaveLen(2))
		Expect(firms[0].Years[0].RD).To(Equal(7.0))
		Expect(firms[0].Years[0].Count).To(Equal(0))
		Expect(firms[0].Years[1].Count).To(Equal(1))
	})

	It("breaks ties on the same filing date by stockholders equity", func() {
		small := fundamental(1001, 2001, 2000, 5, 1, 1)
		small.SEQ = 10
		large := fundamental(1001, 2001, 2000, 7, 1, 1)
		large.SEQ = 20
		missing := fundamental(1001, 2001, 2000, 9, 1, 1)

		firms := intan.BuildPanel([]*data.Fundamental{large, missing, small}, nil, nil)
		Expect(firms[0].Years).To(HaveLen(1))
		Expect(firms[0].Years[0].RD).To(Equal(7.0))
	})

	It("takes industry and IPO year from the company table", func() {
		row := fundamental(1001, 2000, nan, 1, 1, 1)
		row.CUSIP = "12345678"
		withSIC := fundamental(1001, 2001, 7372, 1, 1, 1)

		c := company(1001, 1996)
		c.SIC = 2834

		firms := intan.BuildPanel([]*data.Fundamental{row, withSIC}, []*data.Company{c}, nil)
		Expect(firms[0].IPOYear).To(Equal(1996))
		Expect(firms[0].CUSIP).To(Equal("12345678"))
		Expect(firms[0].Years[0].SIC).To(Equal(2834))
		Expect(firms[0].Years[1].SIC).To(Equal(7372))

		age, ok := firms[0].Age(2001)
		Expect(ok).To(BeTrue())
		Expect(age).To(Equal(5))
	})

	It("orders firms by gvkey", func() {
		firms := intan.BuildPanel([]*data.Fundamental{
			fundamental(30, 2000, 2000, 1, 1, 1),
			fundamental(10, 2000, 2000, 1, 1, 1),
			fundamental(20, 2000, 2000, 1, 1, 1),
		}, nil, nil)

		Expect(firms).To(HaveLen(3))
		Expect([]int{firms[0].GVKey, firms[1].GVKey, firms[2].GVKey}).To(Equal([]int{10, 20, 30}))
	})
})
