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
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
)

// RunSummary describes a single execution of the intangible capital builder
type RunSummary struct {
	RunID     uuid.UUID `json:"run_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    RunStatus `json:"status"`

	NumInputRows int `json:"num_input_rows"`
	NumFirms     int `json:"num_firms"`
	NumRows      int `json:"num_rows"`
}

// CohortRates is the serialized form of a cohort growth table
type CohortRates struct {
	PostIPO    map[int]float64 `json:"post_ipo"`
	PreIPO     map[int]float64 `json:"pre_ipo"`
	PreIPOStep float64         `json:"pre_ipo_step"`
}

// Manifest is written next to every output file so that a panel can be
// traced back to the inputs and parameters that produced it
type Manifest struct {
	RunSummary

	Inputs     map[string]string         `json:"inputs"`
	Outputs    []string                  `json:"outputs"`
	Parameters map[string]interface{}    `json:"parameters"`
	Strategies map[string]map[string]int `json:"strategies"`
	Growth     map[string]CohortRates    `json:"growth"`
}

// Save writes the manifest as indented JSON
func (manifest *Manifest) Save(fn string) error {
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("could not marshal run manifest")
		return err
	}

	if err := os.WriteFile(fn, raw, 0o644); err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("could not write run manifest")
		return err
	}

	return nil
}

// LoadManifest reads a manifest written by Save
func LoadManifest(fn string) (*Manifest, error) {
	raw, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{}
	if err := json.Unmarshal(raw, manifest); err != nil {
		return nil, err
	}

	return manifest, nil
}
