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

// FoundingOffset is the number of years before IPO a firm is assumed to have
// been founded when no founding date is known
const FoundingOffset = 8

type FoundingSource uint8

const (
	FoundingExternal FoundingSource = iota
	FoundingIPOOffset
	FoundingFirstComp
)

func (src FoundingSource) String() string {
	switch src {
	case FoundingExternal:
		return "external"
	case FoundingIPOOffset:
		return "ipo-offset"
	default:
		return "first-comp"
	}
}

// ResolveFounding picks a firm's founding year from, in order: the external
// founding table when it is not later than the first Compustat year, the IPO
// year less the offset when that is still before the first Compustat year,
// and finally the first Compustat year itself. An ipoYear of zero means the
// IPO date is unknown.
func ResolveFounding(firstComp, ipoYear, external int, hasExternal bool, offset int) (int, FoundingSource) {
	if hasExternal && external <= firstComp {
		return external, FoundingExternal
	}

	if ipoYear != 0 && firstComp-(ipoYear-offset) > 0 {
		return ipoYear - offset, FoundingIPOOffset
	}

	return firstComp, FoundingFirstComp
}
