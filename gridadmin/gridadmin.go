// Package gridadmin reads and writes grid administration databases: a
// sqlite file with a cells table and an optional flowlines table.
package gridadmin

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/threedi/leakdetector/topology"
)

// ErrNoCells indicates a database without any cell rows.
var ErrNoCells = errors.New("gridadmin: no cells")

// schema.sql defines the cells and flowlines tables.
//
//go:embed schema.sql
var schemaSQL string

// Open reads the grid administration at path into a topology.Grid.
// The file must exist.
func Open(ctx context.Context, path string) (*topology.Grid, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat grid administration: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return Load(ctx, db)
}

// Load reads cells and flow lines from db into a topology.Grid.
func Load(ctx context.Context, db *sql.DB) (*topology.Grid, error) {
	cells, err := loadCells(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, ErrNoCells
	}
	lines, err := loadFlowLines(ctx, db)
	if err != nil {
		return nil, err
	}
	var opts []topology.Option
	if len(lines) > 0 {
		opts = append(opts, topology.WithFlowLines(lines))
	}
	return topology.NewGrid(cells, opts...)
}

func loadCells(ctx context.Context, db *sql.DB) ([]topology.GridCell, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, x1, y1, x2, y2, level FROM cells ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cells: %w", err)
	}
	defer rows.Close()

	var out []topology.GridCell
	for rows.Next() {
		var c topology.GridCell
		if err := rows.Scan(&c.ID, &c.X1, &c.Y1, &c.X2, &c.Y2, &c.Level); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func loadFlowLines(ctx context.Context, db *sql.DB) ([]topology.FlowLine, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, cell_a, cell_b FROM flowlines ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flowlines: %w", err)
	}
	defer rows.Close()

	var out []topology.FlowLine
	for rows.Next() {
		var fl topology.FlowLine
		if err := rows.Scan(&fl.ID, &fl.From, &fl.To); err != nil {
			return nil, fmt.Errorf("failed to scan flowline: %w", err)
		}
		out = append(out, fl)
	}
	return out, rows.Err()
}

// Create writes cells and lines to a new grid administration at path.
// Lines may be empty, in which case readers derive them.
func Create(ctx context.Context, path string, cells []topology.GridCell, lines []topology.FlowLine) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply grid administration schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	for _, c := range cells {
		_, err := tx.ExecContext(ctx, `INSERT INTO cells (id, x1, y1, x2, y2, level) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.X1, c.Y1, c.X2, c.Y2, c.Level)
		if err != nil {
			return fmt.Errorf("failed to insert cell %d: %w", c.ID, err)
		}
	}
	for _, fl := range lines {
		_, err := tx.ExecContext(ctx, `INSERT INTO flowlines (id, cell_a, cell_b) VALUES (?, ?, ?)`,
			fl.ID, fl.From, fl.To)
		if err != nil {
			return fmt.Errorf("failed to insert flowline %d: %w", fl.ID, err)
		}
	}
	return tx.Commit()
}
