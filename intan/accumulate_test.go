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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anshuchen/prodscope/intan"
)

var _ = Describe("Accumulate", func() {
	It("applies the perpetual inventory step", func() {
		state := intan.CapitalState{Knowledge: 100, Organizational: 50}
		next := state.Next(20, 10, intan.Params{Theta: 0.3, Gamma: 0.5})

		Expect(next.Knowledge).To(BeNumerically("~", 90, 1e-12))
		Expect(next.Organizational).To(BeNumerically("~", 45, 1e-12))
	})

	It("starts both stocks at zero and ignores first-year flows", func() {
		years := makeYears(span(2000, 2001), []float64{100, 0}, []float64{100, 0}, nil)
		states := intan.Accumulate(years, intan.DefaultIndustryTable())

		Expect(states).To(HaveLen(2))
		Expect(states[0]).To(Equal(intan.CapitalState{}))
		Expect(states[1]).To(Equal(intan.CapitalState{}))
	})

	It("keeps stocks at zero when every flow is zero", func() {
		years := makeYears(span(1990, 1999), nil, nil, nil)
		for _, state := range intan.Accumulate(years, intan.DefaultIndustryTable()) {
			Expect(state.Knowledge).To(Equal(0.0))
			Expect(state.Organizational).To(Equal(0.0))
		}
	})

	It("uses the parameters of each year's industry", func() {
		// consumer in 2001 (theta 0.33, gamma 0.19), high tech in 2002
		// (theta 0.46, gamma 0.44)
		years := makeYears(span(2000, 2002), []float64{0, 10, 10}, []float64{0, 100, 100}, nil)
		years[1].SIC = 2000
		years[2].SIC = 7372

		states := intan.Accumulate(years, intan.DefaultIndustryTable())
		Expect(states[1].Knowledge).To(BeNumerically("~", 10, 1e-12))
		Expect(states[1].Organizational).To(BeNumerically("~", 19, 1e-12))
		Expect(states[2].Knowledge).To(BeNumerically("~", 10*0.54+10, 1e-12))
		Expect(states[2].Organizational).To(BeNumerically("~", 19*0.8+44, 1e-12))
	})

	It("produces the stock of a firm with interpolated R&D", func() {
		years := makeYears(span(2000, 2003), []float64{10, 10, 40, 40}, nil, nil)
		states := intan.Accumulate(years, intan.DefaultIndustryTable())

		Expect(states[1].Knowledge).To(BeNumerically("~", 10, 1e-9))
		Expect(states[2].Knowledge).To(BeNumerically("~", 46.7, 1e-9))
		Expect(states[3].Knowledge).To(BeNumerically("~", 71.289, 1e-9))
	})
})
