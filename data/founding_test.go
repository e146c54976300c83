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
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/anshuchen/prodscope/data"
)

var _ = Describe("Founding table", func() {
	DescribeTable("CleanFoundingYear",
		func(raw float64, year int, ok bool) {
			y, valid := data.CleanFoundingYear(raw)
			Expect(valid).To(Equal(ok))
			Expect(y).To(Equal(year))
		},
		Entry("regular year", 1985.0, 1985, true),
		Entry("unknown -99", -99.0, 0, false),
		Entry("unknown -9", -9.0, 0, false),
		Entry("unknown 0", 0.0, 0, false),
		Entry("typo 201", 201.0, 2013, true),
		Entry("missing", nan, 0, false),
	)

	It("normalizes CUSIPs to 8 upper case characters", func() {
		Expect(data.CUSIP8(" 00036110x5 ")).To(Equal("00036110"))
		Expect(data.CUSIP8("abc")).To(Equal("ABC"))
	})

	It("keeps the first usable record for a CUSIP", func() {
		table := data.NewFoundingTable([]*data.FoundingRecord{
			{CUSIP: "00036110", Founding: -99},
			{CUSIP: "000361105", Founding: 1951},
			{CUSIP: "00036110", Founding: 1960},
			{CUSIP: "", Founding: 1970},
		})

		Expect(table).To(HaveLen(1))
		year, ok := table.Lookup("000361105")
		Expect(ok).To(BeTrue())
		Expect(year).To(Equal(1951))

		_, ok = table.Lookup("")
		Expect(ok).To(BeFalse())
	})

	Describe("LoadFoundingTable", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("reads a csv export", func() {
			fn := writeFile(dir, "founding.csv", "offer date,CUSIP,Founding,IPO name\n19860312,00036110,1951,AAR\n19900101,12345678,201,Typo\n19910101,87654321,-9,Unknown\n")

			table, err := data.LoadFoundingTable(fn)
			Expect(err).NotTo(HaveOccurred())
			Expect(table).To(Equal(data.FoundingTable{"00036110": 1951, "12345678": 2013}))
		})

		It("reads the xlsx workbook", func() {
			fn := filepath.Join(dir, "founding.xlsx")

			f := excelize.NewFile()
			Expect(f.SetSheetRow("Sheet1", "A1", &[]interface{}{"offer date", "CUSIP", "Founding"})).To(Succeed())
			Expect(f.SetSheetRow("Sheet1", "A2", &[]interface{}{19860312, "00036110", 1951})).To(Succeed())
			Expect(f.SetSheetRow("Sheet1", "A3", &[]interface{}{19910101, "87654321", -99})).To(Succeed())
			Expect(f.SetSheetRow("Sheet1", "A4", &[]interface{}{19920101, "1111111a"})).To(Succeed())
			Expect(f.SaveAs(fn)).To(Succeed())
			Expect(f.Close()).To(Succeed())

			table, err := data.LoadFoundingTable(fn)
			Expect(err).NotTo(HaveOccurred())
			Expect(table).To(Equal(data.FoundingTable{"00036110": 1951}))
		})

		It("rejects a workbook without the founding column", func() {
			fn := filepath.Join(dir, "founding.xlsx")

			f := excelize.NewFile()
			Expect(f.SetSheetRow("Sheet1", "A1", &[]interface{}{"offer date", "CUSIP"})).To(Succeed())
			Expect(f.SaveAs(fn)).To(Succeed())
			Expect(f.Close()).To(Succeed())

			_, err := data.LoadFoundingTable(fn)
			Expect(err).To(MatchError(data.ErrMissingColumn))
		})
	})
})
