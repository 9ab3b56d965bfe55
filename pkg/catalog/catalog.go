// Package catalog keeps a SQLite record of every mask that was built: one
// row per run and one row per waveguide, with the spec it was built from.
//
//	c, err := catalog.Open(filepath.Join(dir, "catalog.db"))
//	run, err := c.Record(ctx, design, catalog.RunMeta{BatchHash: h})
//	runs, err := c.Runs(ctx, 20)
package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/geom"
	"github.com/matzehuels/sersmask/pkg/mask"
	"github.com/matzehuels/sersmask/pkg/waveguide"
)

//go:embed schema.sql
var schemaSQL string

// Catalog is a handle on the build database. It is safe for concurrent use.
type Catalog struct {
	db *sql.DB
}

// Run is one recorded build.
type Run struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	BatchHash  string    `json:"batch_hash,omitempty"`
	Waveguides int       `json:"waveguides"`
	Polygons   int       `json:"polygons"`
	Bounds     geom.Rect `json:"bounds"`
	Formats    []string  `json:"formats,omitempty"`
}

// RunMeta is what a caller knows about a build beyond the design itself.
type RunMeta struct {
	BatchHash string
	Formats   []string
	// Now overrides the creation time; zero means time.Now.
	Now time.Time
}

// Waveguide is one recorded waveguide of a run.
type Waveguide struct {
	RunID  string         `json:"run_id"`
	Index  int            `json:"index"`
	ID     string         `json:"id"`
	Name   string         `json:"name,omitempty"`
	Start  geom.Point     `json:"start"`
	End    geom.Point     `json:"end"`
	Shapes int            `json:"shapes"`
	Length float64        `json:"length"`
	Spec   waveguide.Spec `json:"spec"`
}

// Open opens (creating if needed) the catalog database at path.
// Use ":memory:" for a throwaway catalog.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open catalog %s", path)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "initialize catalog schema")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "enable foreign keys")
	}
	return &Catalog{db: db}, nil
}

// Close closes the database.
func (c *Catalog) Close() error { return c.db.Close() }

// Record stores a placed design as a new run and returns it.
func (c *Catalog) Record(ctx context.Context, d *mask.Design, meta RunMeta) (Run, error) {
	wgs := d.Waveguides()
	now := meta.Now
	if now.IsZero() {
		now = time.Now()
	}
	run := Run{
		ID:         uuid.NewString(),
		Name:       d.Name,
		CreatedAt:  now.UTC(),
		BatchHash:  meta.BatchHash,
		Waveguides: len(wgs),
		Polygons:   len(d.Polygons()),
		Bounds:     d.Bounds(),
		Formats:    meta.Formats,
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, errors.Wrap(errors.ErrCodeInternal, err, "begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, name, created_at, batch_hash, waveguide_count, polygon_count,
			min_x, min_y, max_x, max_y, formats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Name, run.CreatedAt.UnixNano(), run.BatchHash, run.Waveguides, run.Polygons,
		run.Bounds.Min.X, run.Bounds.Min.Y, run.Bounds.Max.X, run.Bounds.Max.Y,
		strings.Join(run.Formats, ","))
	if err != nil {
		return Run{}, errors.Wrap(errors.ErrCodeInternal, err, "insert run")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO waveguides (run_id, idx, id, name, start_x, start_y, end_x, end_y,
			shape_count, length, spec)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, errors.Wrap(errors.ErrCodeInternal, err, "prepare waveguide insert")
	}
	defer stmt.Close()

	for i, wg := range wgs {
		spec, err := json.Marshal(wg.Spec)
		if err != nil {
			return Run{}, errors.Wrap(errors.ErrCodeInternal, err, "encode spec of waveguide %d", i)
		}
		_, err = stmt.ExecContext(ctx, run.ID, i, wg.ID, wg.Name,
			wg.Start.X, wg.Start.Y, wg.End.X, wg.End.Y,
			len(wg.Shapes), wg.Length(), string(spec))
		if err != nil {
			return Run{}, errors.Wrap(errors.ErrCodeInternal, err, "insert waveguide %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, errors.Wrap(errors.ErrCodeInternal, err, "commit run")
	}
	return run, nil
}

const runColumns = `id, name, created_at, batch_hash, waveguide_count, polygon_count,
	min_x, min_y, max_x, max_y, formats`

// Runs returns the most recent runs first. A limit of 0 returns all runs.
func (c *Catalog) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read runs")
	}
	return runs, nil
}

// Run returns the run with the given ID.
func (c *Catalog) Run(ctx context.Context, id string) (Run, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return Run{}, errors.New(errors.ErrCodeNotFound, "run %s not found", id)
	}
	return r, err
}

// Waveguides returns the waveguides of a run in placement order.
func (c *Catalog) Waveguides(ctx context.Context, runID string) ([]Waveguide, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT run_id, idx, id, name, start_x, start_y, end_x, end_y, shape_count, length, spec
		FROM waveguides WHERE run_id = ? ORDER BY idx
	`, runID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "query waveguides")
	}
	defer rows.Close()

	var out []Waveguide
	for rows.Next() {
		var (
			w    Waveguide
			spec string
		)
		if err := rows.Scan(&w.RunID, &w.Index, &w.ID, &w.Name,
			&w.Start.X, &w.Start.Y, &w.End.X, &w.End.Y,
			&w.Shapes, &w.Length, &spec); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "scan waveguide")
		}
		if err := json.Unmarshal([]byte(spec), &w.Spec); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode spec of waveguide %d", w.Index)
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read waveguides")
	}
	return out, nil
}

// Delete removes a run and its waveguides.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete run")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.New(errors.ErrCodeNotFound, "run %s not found", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r       Run
		created int64
		formats string
	)
	err := s.Scan(&r.ID, &r.Name, &created, &r.BatchHash, &r.Waveguides, &r.Polygons,
		&r.Bounds.Min.X, &r.Bounds.Min.Y, &r.Bounds.Max.X, &r.Bounds.Max.Y, &formats)
	if err == sql.ErrNoRows {
		return Run{}, errors.New(errors.ErrCodeNotFound, "run not found")
	}
	if err != nil {
		return Run{}, errors.Wrap(errors.ErrCodeInternal, err, "scan run")
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	if formats != "" {
		r.Formats = strings.Split(formats, ",")
	}
	return r, nil
}
