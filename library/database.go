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
	"time"

	"github.com/anshuchen/prodscope/data"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type Library struct {
	DBUrl string
	Name  string
	Owner string

	Pool *pgxpool.Pool
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, myLibrary.DBUrl)
	if err != nil {
		return err
	}
	myLibrary.Pool = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	if myLibrary.Pool != nil {
		myLibrary.Pool.Close()
	}
}

// NewFromDB creates a new library object with values from the database
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer conn.Release()

	myLibrary := Library{
		DBUrl: dbURL,
		Pool:  pool,
	}

	if err := conn.QueryRow(ctx, "SELECT name, owner FROM library LIMIT 1").Scan(&myLibrary.Name, &myLibrary.Owner); err != nil {
		pool.Close()
		return nil, err
	}

	return &myLibrary, nil
}

// SaveDB creates a new record in the library table for this library
func (myLibrary *Library) SaveDB(ctx context.Context) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO library ("name", "owner") VALUES ($1, $2)`, myLibrary.Name, myLibrary.Owner)
	return err
}

// SaveRun records a builder run in the run history
func (myLibrary *Library) SaveRun(ctx context.Context, manifest *data.Manifest) error {
	params, err := json.Marshal(manifest.Parameters)
	if err != nil {
		return err
	}

	_, err = myLibrary.Pool.Exec(ctx, `INSERT INTO intan_runs ("run_id", "start_time", "end_time", "status",
"num_input_rows", "num_firms", "num_rows", "parameters") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT ON CONSTRAINT intan_runs_pkey DO UPDATE SET end_time = EXCLUDED.end_time,
status = EXCLUDED.status, num_input_rows = EXCLUDED.num_input_rows, num_firms = EXCLUDED.num_firms,
num_rows = EXCLUDED.num_rows, parameters = EXCLUDED.parameters`,
		manifest.RunID, manifest.StartTime, manifest.EndTime, string(manifest.Status),
		manifest.NumInputRows, manifest.NumFirms, manifest.NumRows, params)

	return err
}

// SaveStocks replaces the stored capital stock panel with stocks. The run
// must already have been saved with SaveRun.
func (myLibrary *Library) SaveStocks(ctx context.Context, runID uuid.UUID, stocks []*data.Stock) error {
	logger := zerolog.Ctx(ctx)

	tx, err := myLibrary.Pool.Begin(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("could not begin transaction")
		return err
	}

	// no-op once the transaction is committed
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM intangible_capital"); err != nil {
		logger.Error().Err(err).Msg("could not clear intangible capital table")
		return err
	}

	numRows, err := tx.CopyFrom(ctx,
		pgx.Identifier{"intangible_capital"},
		[]string{"gvkey", "fyear", "kcap", "ocap", "run_id"},
		pgx.CopyFromSlice(len(stocks), func(idx int) ([]any, error) {
			stock := stocks[idx]
			return []any{stock.GVKey, stock.FiscalYear, stock.KnowledgeCapital, stock.OrgCapital, runID}, nil
		}),
	)
	if err != nil {
		logger.Error().Err(err).Msg("copy into intangible capital table failed")
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error().Err(err).Msg("could not commit intangible capital")
		return err
	}

	logger.Info().Int64("NumRows", numRows).Msg("saved intangible capital to database")
	return nil
}

// Runs returns the most recent runs, newest first
func (myLibrary *Library) Runs(ctx context.Context, limit int) ([]*data.RunSummary, error) {
	var runs []*data.RunSummary
	err := pgxscan.Select(ctx, myLibrary.Pool, &runs,
		`SELECT run_id, start_time, end_time, status, num_input_rows, num_firms, num_rows
FROM intan_runs ORDER BY start_time DESC LIMIT $1`, limit)
	return runs, err
}

// Stats collects the figures shown in the library summary
func (myLibrary *Library) Stats(ctx context.Context) (*Stats, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	stats := &Stats{
		Name:  myLibrary.Name,
		Owner: myLibrary.Owner,
		DBUrl: myLibrary.DBUrl,
	}

	err = conn.QueryRow(ctx, `SELECT count(*), count(DISTINCT gvkey), coalesce(min(fyear), 0), coalesce(max(fyear), 0)
FROM intangible_capital`).Scan(&stats.NumRows, &stats.NumFirms, &stats.FirstYear, &stats.LastYear)
	if err != nil {
		return nil, err
	}

	err = conn.QueryRow(ctx, `SELECT coalesce(max(end_time), '0001-01-01'::timestamp) FROM intan_runs WHERE status = $1`,
		string(data.RunSuccess)).Scan(&stats.LastUpdated)
	if err != nil {
		return nil, err
	}
	stats.LastUpdated = stats.LastUpdated.UTC()
	if stats.LastUpdated.Year() == 1 {
		stats.LastUpdated = time.Time{}
	}

	stats.Runs, err = myLibrary.Runs(ctx, 10)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
