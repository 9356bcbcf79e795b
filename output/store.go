// Package output persists detection results: a sqlite results store with
// the final_obstacle_segments and exchange_levels tables, and an ESRI
// shapefile layer of the obstacle segments.
package output

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/threedi/leakdetector/config"
	"github.com/threedi/leakdetector/detector"
)

// ErrNoRuns is returned by LatestRun on an empty store.
var ErrNoRuns = errors.New("output: no detection runs stored")

// schema.sql defines the detection_runs, final_obstacle_segments and
// exchange_levels tables.
//
//go:embed schema.sql
var schemaSQL string

// Store is a sqlite results database.
type Store struct {
	*sql.DB
}

// OpenStore opens or creates the results database at path and applies
// the schema.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply results schema: %w", err)
	}
	return &Store{db}, nil
}

// SaveResult stores res and the thresholds it was computed with in one
// transaction.
func (s *Store) SaveResult(ctx context.Context, res *detector.Result, cfg *config.TuningConfig) error {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	run := res.RunID.String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO detection_runs (
			run_id, min_peak_prominence, search_precision, min_obstacle_height,
			segment_count, flowline_count, skipped_cells, skipped_flowlines
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run, cfg.GetMinPeakProminence(), cfg.GetSearchPrecision(), cfg.GetMinObstacleHeight(),
		len(res.Segments), len(res.ExchangeLevels), joinInts(res.Skipped), joinInts(res.SkippedFlowLines))
	if err != nil {
		return fmt.Errorf("failed to insert detection run: %w", err)
	}

	for _, seg := range res.Segments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO final_obstacle_segments (
				run_id, id, crest_level, surrounding_level, length,
				contributing_flowline_ids, cell_ids, geometry
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, run, seg.ID, seg.Crest, seg.Surrounding, seg.Length,
			joinInts(seg.FlowLines), joinInts(seg.Cells), WKT(seg.Geometry))
		if err != nil {
			return fmt.Errorf("failed to insert segment %d: %w", seg.ID, err)
		}
	}

	for _, lvl := range res.ExchangeLevels {
		level := sql.NullFloat64{Float64: lvl.Level, Valid: !math.IsNaN(lvl.Level)}
		segment := sql.NullInt64{Int64: int64(lvl.Segment), Valid: lvl.Obstructed}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO exchange_levels (run_id, flowline_id, exchange_level, obstructed, segment_id)
			VALUES (?, ?, ?, ?, ?)
		`, run, lvl.FlowLine, level, lvl.Obstructed, segment)
		if err != nil {
			return fmt.Errorf("failed to insert exchange level for flow line %d: %w", lvl.FlowLine, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result: %w", err)
	}
	return nil
}

// LoadExchangeLevels returns the exchange levels of run, ordered by flow
// line id. A NULL level reads back as NaN.
func (s *Store) LoadExchangeLevels(ctx context.Context, run uuid.UUID) ([]detector.ExchangeLevel, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT flowline_id, exchange_level, obstructed, segment_id
		FROM exchange_levels
		WHERE run_id = ?
		ORDER BY flowline_id
	`, run.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange levels: %w", err)
	}
	defer rows.Close()

	var out []detector.ExchangeLevel
	for rows.Next() {
		var (
			lvl     detector.ExchangeLevel
			level   sql.NullFloat64
			segment sql.NullInt64
		)
		if err := rows.Scan(&lvl.FlowLine, &level, &lvl.Obstructed, &segment); err != nil {
			return nil, fmt.Errorf("failed to scan exchange level: %w", err)
		}
		lvl.Level = math.NaN()
		if level.Valid {
			lvl.Level = level.Float64
		}
		lvl.Segment = int(segment.Int64)
		out = append(out, lvl)
	}
	return out, rows.Err()
}

// LatestRun returns the id of the most recently stored run.
func (s *Store) LatestRun(ctx context.Context) (uuid.UUID, error) {
	var id string
	err := s.QueryRowContext(ctx, `
		SELECT run_id FROM detection_runs ORDER BY created_at DESC, rowid DESC LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNoRuns
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	return uuid.Parse(id)
}

// DeleteRun removes run and its rows from every table.
func (s *Store) DeleteRun(ctx context.Context, run uuid.UUID) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	for _, table := range []string{"exchange_levels", "final_obstacle_segments", "detection_runs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", run.String()); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// joinInts renders ids as a comma-separated list.
func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
