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
package data_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anshuchen/prodscope/data"
)

func writeFile(dir, name, contents string) string {
	fn := filepath.Join(dir, name)
	Expect(os.WriteFile(fn, []byte(contents), 0o644)).To(Succeed())
	return fn
}

var _ = Describe("CSV inputs", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("LoadFundamentals", func() {
		It("parses a WRDS export", func() {
			fn := writeFile(dir, "funda.csv", "\xef\xbb\xbf"+
				"gvkey,datadate,fyear,indfmt,datafmt,cusip,sich,xrd,xsga,rdip,cogs,at,seq\n"+
				"001004,1999-05-31,1998,INDL,STD,000361105,5080,,123.5,.,80,400.25,200\n"+
				"001004,20000531.0,1999.0,INDL,STD,000361105,,1.5,NaN,0,81,,\n")

			funds, err := data.LoadFundamentals(fn)
			Expect(err).NotTo(HaveOccurred())
			Expect(funds).To(HaveLen(2))

			first := funds[0]
			Expect(first.GVKey).To(Equal(data.Key(1004)))
			Expect(first.DataDate.Time).To(Equal(time.Date(1999, 5, 31, 0, 0, 0, 0, time.UTC)))
			Expect(float64(first.FYear)).To(Equal(1998.0))
			Expect(first.IndFmt).To(Equal("INDL"))
			Expect(first.CUSIP).To(Equal("000361105"))
			Expect(float64(first.SICH)).To(Equal(5080.0))
			Expect(first.XRD.Valid()).To(BeFalse())
			Expect(float64(first.XSGA)).To(Equal(123.5))
			Expect(first.RDIP.Valid()).To(BeFalse())
			Expect(float64(first.AT)).To(Equal(400.25))

			second := funds[1]
			Expect(second.DataDate.Year()).To(Equal(2000))
			Expect(float64(second.FYear)).To(Equal(1999.0))
			Expect(second.SICH.Valid()).To(BeFalse())
			Expect(second.XSGA.Valid()).To(BeFalse())
			Expect(second.AT.Valid()).To(BeFalse())
		})

		It("reports every missing column", func() {
			fn := writeFile(dir, "funda.csv", "gvkey,datadate,fyear,indfmt,datafmt,cusip,sich,rdip,cogs\n001004,1999-05-31,1998,INDL,STD,x,1,1,1\n")

			_, err := data.LoadFundamentals(fn)
			Expect(err).To(MatchError(data.ErrMissingColumn))
			Expect(err.Error()).To(ContainSubstring("xrd, xsga"))
			Expect(err.Error()).To(ContainSubstring(fn))
		})

		It("rejects an empty file", func() {
			fn := writeFile(dir, "funda.csv", "")

			_, err := data.LoadFundamentals(fn)
			Expect(err).To(MatchError(data.ErrEmptyFile))
		})

		It("returns the error for a missing file", func() {
			_, err := data.LoadFundamentals(filepath.Join(dir, "missing.csv"))
			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})

	Describe("LoadCompanies", func() {
		It("parses IPO dates that may be empty", func() {
			fn := writeFile(dir, "company.csv", "gvkey,conm,sic,ipodate\n001004,AAR CORP,5080,1988-04-15\n001045,AMERICAN AIRLINES,4512,\n")

			companies, err := data.LoadCompanies(fn)
			Expect(err).NotTo(HaveOccurred())
			Expect(companies).To(HaveLen(2))
			Expect(companies[0].IPODate.Year()).To(Equal(1988))
			Expect(float64(companies[0].SIC)).To(Equal(5080.0))
			Expect(companies[1].GVKey).To(Equal(data.Key(1045)))
			Expect(companies[1].IPODate.IsZero()).To(BeTrue())
		})
	})

	Describe("RequireColumns", func() {
		It("trims header whitespace", func() {
			Expect(data.RequireColumns([]byte(" gvkey , sic,ipodate\n"), data.CompanyColumns)).To(Succeed())
		})
	})
})
