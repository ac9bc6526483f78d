package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("not found")

// ReadParamSet returns the earliest record with the given ID.
// Returns an error wrapping ErrNotFound if none exists.
func (s *Store) ReadParamSet(ctx context.Context, id string) (ParamSetRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, run_id, name, source, text, canonical, ir_version, seq
		FROM param_sets
		WHERE id = ?
		ORDER BY seq ASC, run_id COLLATE BINARY ASC
		LIMIT 1
	`, id)

	rec, err := scanParamSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ParamSetRecord{}, fmt.Errorf("param set %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ParamSetRecord{}, fmt.Errorf("read param set: %w", err)
	}
	return rec, nil
}

// ListParamSets returns the records of one run, or of all runs when runID
// is empty. Results are ordered by seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListParamSets(ctx context.Context, runID string) ([]ParamSetRecord, error) {
	query := `
		SELECT id, run_id, name, source, text, canonical, ir_version, seq
		FROM param_sets
	`
	var args []any
	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}
	query += " ORDER BY seq ASC, id COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query param sets: %w", err)
	}
	defer rows.Close()

	records := []ParamSetRecord{}
	for rows.Next() {
		rec, err := scanParamSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan param set: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate param sets: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanParamSet(sc scanner) (ParamSetRecord, error) {
	var rec ParamSetRecord
	err := sc.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.Name,
		&rec.Source,
		&rec.Text,
		&rec.Canonical,
		&rec.IRVersion,
		&rec.Seq,
	)
	return rec, err
}
