package store

import (
	"context"
	"fmt"

	"github.com/roach88/hwparam/internal/ir"
)

// ParamSetRecord is one stored parameter set.
type ParamSetRecord struct {
	ID        string
	RunID     string
	Name      string
	Source    string
	Text      string
	Canonical string
	IRVersion string
	Seq       int64
}

// NewRecord builds a record for an encoded parameter set. The ID is the
// content hash of name and params, so the same set encoded twice gets the
// same ID.
func NewRecord(runID, name, source string, params ir.DictAttr, seq int64) (ParamSetRecord, error) {
	id, err := ir.ParamSetID(name, params)
	if err != nil {
		return ParamSetRecord{}, fmt.Errorf("new record %s: %w", name, err)
	}
	canonical, err := ir.MarshalCanonical(params)
	if err != nil {
		return ParamSetRecord{}, fmt.Errorf("new record %s: %w", name, err)
	}
	return ParamSetRecord{
		ID:        id,
		RunID:     runID,
		Name:      name,
		Source:    source,
		Text:      params.String(),
		Canonical: string(canonical),
		IRVersion: ir.IRVersion,
		Seq:       seq,
	}, nil
}

// WriteParamSet inserts a record into the store.
// Uses ON CONFLICT DO NOTHING for idempotency - writing the same (run, id)
// twice is silently ignored. Other constraint violations still return errors.
func (s *Store) WriteParamSet(ctx context.Context, rec ParamSetRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO param_sets
		(id, run_id, name, source, text, canonical, ir_version, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		rec.ID,
		rec.RunID,
		rec.Name,
		rec.Source,
		rec.Text,
		rec.Canonical,
		rec.IRVersion,
		rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("write param set: %w", err)
	}
	return nil
}

// NextSeq returns the next unused sequence number.
func (s *Store) NextSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM param_sets").Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}
