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
package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anshuchen/prodscope/data"
	"github.com/hako/durafmt"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats is a point in time description of the library contents
type Stats struct {
	Name  string
	Owner string
	DBUrl string

	NumRows   int
	NumFirms  int
	FirstYear int
	LastYear  int

	LastUpdated time.Time
	Runs        []*data.RunSummary
}

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	stats, err := myLibrary.Stats(ctx)
	if err != nil {
		return "", err
	}

	return stats.Markdown(), nil
}

// Markdown renders the stats as a markdown document
func (stats *Stats) Markdown() string {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf("# %s\n", stats.Name))
	builder.WriteString("## Details\n\n")

	if stats.Owner != "" {
		builder.WriteString(fmt.Sprintf("Owner: %s\n\n", stats.Owner))
	}

	// Database connection string
	builder.WriteString(fmt.Sprintf("Database: %s\n\n", stats.DBUrl))

	builder.WriteString(p.Sprintf("  * Firms: %d\n", stats.NumFirms))
	builder.WriteString(p.Sprintf("  * Firm-years: %d\n", stats.NumRows))
	if stats.NumRows > 0 {
		builder.WriteString(fmt.Sprintf("  * Fiscal years: %d - %d\n", stats.FirstYear, stats.LastYear))
	}
	builder.WriteString("\n")

	// Last updated time
	if stats.LastUpdated.IsZero() {
		builder.WriteString("Last Updated: Never\n\n")
	} else {
		age := timeago.English.Format(stats.LastUpdated)
		builder.WriteString(fmt.Sprintf("Last Updated: %s (%s)\n\n", age, stats.LastUpdated.Local().Format("01/02/2006")))
	}

	builder.WriteString("## Recent runs\n\n")
	if len(stats.Runs) == 0 {
		builder.WriteString("No runs recorded\n")
	}

	for _, run := range stats.Runs {
		runTime := durafmt.Parse(run.EndTime.Sub(run.StartTime)).LimitFirstN(2).String()
		builder.WriteString(p.Sprintf("  * %s %s [%s] %d firms, %d rows in %s\n",
			run.StartTime.Local().Format("01/02/2006 15:04"), run.Status, run.RunID.String()[:6],
			run.NumFirms, run.NumRows, runTime))
	}

	return builder.String()
}
