// Package trace persists per-step observables of a real-time propagation to
// sqlite, so long runs can be inspected and resumed offline.
package trace

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableSteps = "steps"
)

// Step is one propagation step's record.
type Step struct {
	Step   int
	T      float64
	Field  [3]float64
	Energy float64
	Dipole [3]float64
}

type Recorder struct {
	Path string
	db   *sql.DB
}

// Open creates or truncates the trace database at path.
func Open(path string) (*Recorder, error) {
	db, err := newDB(path)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return &Recorder{Path: path, db: db}, nil
}

// OpenExisting attaches to a recorded trace without truncating it.
func OpenExisting(path string) (*Recorder, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "")
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return &Recorder{Path: path, db: db}, nil
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

// Record writes one step, replacing any previous record of the same index.
func (r *Recorder) Record(s Step) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`INSERT OR REPLACE INTO %s (step, t, fx, fy, fz, energy, dx, dy, dz) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, tableSteps)
	args := []any{s.Step, s.T, s.Field[0], s.Field[1], s.Field[2], s.Energy, s.Dipole[0], s.Dipole[1], s.Dipole[2]}
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
	}
	return nil
}

// Steps reads every recorded step back in order.
func (r *Recorder) Steps() ([]Step, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT step, t, fx, fy, fz, energy, dx, dy, dz FROM %s ORDER BY step`, tableSteps)
	rows, err := r.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	steps := make([]Step, 0)
	for rows.Next() {
		var s Step
		if err := rows.Scan(&s.Step, &s.T, &s.Field[0], &s.Field[1], &s.Field[2], &s.Energy, &s.Dipole[0], &s.Dipole[1], &s.Dipole[2]); err != nil {
			return nil, errors.Wrap(err, "")
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return steps, nil
}

func newDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}
	return db, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`DROP TABLE IF EXISTS %s`, tableSteps)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE %s (step INTEGER PRIMARY KEY, t REAL, fx REAL, fy REAL, fz REAL, energy REAL, dx REAL, dy REAL, dz REAL) STRICT`, tableSteps)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
