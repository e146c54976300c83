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
package cmd

import (
	"path/filepath"
	"strings"

	"github.com/anshuchen/prodscope/intan"
	"github.com/spf13/viper"
)

// environment variables use underscores, INTAN_WORKERS sets intan.workers
var envKeyReplacer = strings.NewReplacer(".", "_")

func init() {
	defaults := intan.DefaultConfig()

	viper.SetDefault("data.raw_dir", "")
	viper.SetDefault("data.processed_dir", "")

	viper.SetDefault("intan.funda", "funda.csv")
	viper.SetDefault("intan.company", "company.csv")
	viper.SetDefault("intan.founding", "IPO-age.xlsx")
	viper.SetDefault("intan.output", "intan_stocks.csv")
	viper.SetDefault("intan.parquet", false)
	viper.SetDefault("intan.workers", defaults.Workers)
	viper.SetDefault("intan.batch_size", defaults.BatchSize)
	viper.SetDefault("intan.interpolate_all", defaults.InterpolateAll)
	viper.SetDefault("intan.exclude_gvkeys", defaults.ExcludeGVKeys)
	viper.SetDefault("intan.founding_offset", defaults.FoundingOffset)
	viper.SetDefault("intan.post_ipo_min_age", defaults.Cohort.PostIPOMinAge)
	viper.SetDefault("intan.pre_ipo_from", defaults.Cohort.PreIPOFrom)
	viper.SetDefault("intan.pre_ipo_to", defaults.Cohort.PreIPOTo)

	viper.SetDefault("backblaze.prefix", "intan")
}

// builderConfig reads the intan.* settings
func builderConfig() intan.Config {
	return intan.Config{
		Workers:        viper.GetInt("intan.workers"),
		BatchSize:      viper.GetInt("intan.batch_size"),
		InterpolateAll: viper.GetBool("intan.interpolate_all"),
		ExcludeGVKeys:  viper.GetIntSlice("intan.exclude_gvkeys"),
		FoundingOffset: viper.GetInt("intan.founding_offset"),
		Cohort: intan.CohortConfig{
			PostIPOMinAge: viper.GetInt("intan.post_ipo_min_age"),
			PreIPOFrom:    viper.GetInt("intan.pre_ipo_from"),
			PreIPOTo:      viper.GetInt("intan.pre_ipo_to"),
		},
	}
}

// parameterMap is the form of the builder config recorded in the manifest
func parameterMap(cfg intan.Config) map[string]interface{} {
	return map[string]interface{}{
		"workers":          cfg.Workers,
		"batch_size":       cfg.BatchSize,
		"interpolate_all":  cfg.InterpolateAll,
		"exclude_gvkeys":   cfg.ExcludeGVKeys,
		"founding_offset":  cfg.FoundingOffset,
		"post_ipo_min_age": cfg.Cohort.PostIPOMinAge,
		"pre_ipo_from":     cfg.Cohort.PreIPOFrom,
		"pre_ipo_to":       cfg.Cohort.PreIPOTo,
	}
}

// dataPath joins a relative file name onto dir
func dataPath(dir, fn string) string {
	if fn == "" || dir == "" || filepath.IsAbs(fn) {
		return fn
	}
	return filepath.Join(dir, fn)
}
