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
package data

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Float is a CSV cell that may be empty. Empty cells (and the usual missing
// value markers written by SAS and pandas) decode to NaN.
type Float float64

func (f *Float) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", ".", "nan", "na", "null":
		*f = Float(math.NaN())
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}

	*f = Float(v)
	return nil
}

func (f Float) MarshalCSV() (string, error) {
	if math.IsNaN(float64(f)) {
		return "", nil
	}
	return strconv.FormatFloat(float64(f), 'f', -1, 64), nil
}

// Valid reports whether the cell held a value
func (f Float) Valid() bool {
	return !math.IsNaN(float64(f))
}

// Key is a firm identifier. Compustat gvkeys are zero padded ("001004") so
// they are always parsed in base 10.
type Key int

func (k *Key) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*k = Key(v)
	return nil
}

func (k Key) MarshalCSV() (string, error) {
	return strconv.Itoa(int(k)), nil
}

// Date is a CSV date cell. WRDS exports dates as YYYY-MM-DD or YYYYMMDD and
// pandas sometimes turns the latter into a float (20011231.0).
type Date struct {
	time.Time
}

var dateLayouts = []string{"2006-01-02", "20060102", "01/02/2006", "2006-01-02 15:04:05"}

func (d *Date) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	if s == "" || strings.EqualFold(s, "nan") || s == "." {
		d.Time = time.Time{}
		return nil
	}

	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}

	return err
}

func (d Date) MarshalCSV() (string, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format("2006-01-02"), nil
}

// Fundamental is a single row of Compustat Fundamentals Annual
type Fundamental struct {
	GVKey    Key    `csv:"gvkey"`
	DataDate Date   `csv:"datadate"`
	FYear    Float  `csv:"fyear"`
	IndFmt   string `csv:"indfmt"`
	DataFmt  string `csv:"datafmt"`
	CUSIP    string `csv:"cusip"`
	SICH     Float  `csv:"sich"`

	// flow variables, in millions
	XRD  Float `csv:"xrd"`  // research and development expense
	XSGA Float `csv:"xsga"` // selling, general and administrative expense
	RDIP Float `csv:"rdip"` // in process research and development
	COGS Float `csv:"cogs"` // cost of goods sold

	AT  Float `csv:"at"`  // total assets
	SEQ Float `csv:"seq"` // stockholders equity, used only to break ties
}

// FundamentalColumns lists the columns that must be present in a
// fundamentals file
var FundamentalColumns = []string{"gvkey", "datadate", "fyear", "indfmt", "datafmt", "cusip", "sich", "xrd", "xsga", "rdip", "cogs", "at"}

// Company is a row of the Compustat Company table
type Company struct {
	GVKey   Key   `csv:"gvkey"`
	SIC     Float `csv:"sic"`
	IPODate Date  `csv:"ipodate"`
}

var CompanyColumns = []string{"gvkey", "sic", "ipodate"}

// FoundingRecord is a row of Jay Ritter's IPO founding date table
type FoundingRecord struct {
	CUSIP     string `csv:"CUSIP"`
	OfferDate string `csv:"offer date"`
	Founding  Float  `csv:"Founding"`
}

var FoundingColumns = []string{"CUSIP", "offer date", "Founding"}

// Stock is a row of the intangible capital output
type Stock struct {
	GVKey            int64   `csv:"gvkey" json:"gvkey" parquet:"name=gvkey, type=INT64"`
	FiscalYear       int32   `csv:"fyear" json:"fyear" parquet:"name=fyear, type=INT32"`
	KnowledgeCapital float64 `csv:"kcap" json:"kcap" parquet:"name=kcap, type=DOUBLE"`
	OrgCapital       float64 `csv:"ocap" json:"ocap" parquet:"name=ocap, type=DOUBLE"`
}
