package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/gridstate/internal/grid"
	"github.com/roach88/gridstate/internal/ir"
)

// ErrRowNotFound is returned when an update targets a row that does not
// exist.
var ErrRowNotFound = errors.New("row not found")

// ErrMissingID is returned when a modified or deleted row has no id.
var ErrMissingID = errors.New("row has no id")

// Save applies a diff in one transaction and records it in the audit
// table. Added rows without an id receive their sequence number as id,
// set on the rows of changes.Added so the caller can adopt it.
func (s *Store) Save(ctx context.Context, changes grid.Changes) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	for _, r := range changes.Added {
		if err := s.insertRow(ctx, tx, r); err != nil {
			return err
		}
	}
	for _, r := range changes.Modified {
		if err := s.updateRow(ctx, tx, r); err != nil {
			return err
		}
	}
	for _, r := range changes.Deleted {
		if err := s.deleteRow(ctx, tx, r); err != nil {
			return err
		}
	}

	digest, err := diffDigest(changes)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO saves (saved_at, modified, added, deleted, digest)
		VALUES (?, ?, ?, ?, ?)
	`,
		s.now().UTC().Format(time.RFC3339Nano),
		len(changes.Modified),
		len(changes.Added),
		len(changes.Deleted),
		digest,
	)
	if err != nil {
		return fmt.Errorf("write save record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Seed inserts rows as if added, in one transaction, without an audit
// record.
func (s *Store) Seed(ctx context.Context, rows []*ir.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, r := range rows {
		if err := s.insertRow(ctx, tx, r.Clone()); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

func (s *Store) rowID(r *ir.Row) (string, bool) {
	v, ok := r.Lookup(s.idProperty)
	if !ok || ir.IsNull(v) || ir.Stringify(v) == "" {
		return "", false
	}
	return ir.Stringify(v), true
}

// insertRow writes r. Without an id, the row is inserted under a pending
// key and then given its sequence number as id.
func (s *Store) insertRow(ctx context.Context, tx *sql.Tx, r *ir.Row) error {
	id, hasID := s.rowID(r)
	if !hasID {
		id = "pending:" + uuid.NewString()
	}
	payload, err := marshalRow(r)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO grid_rows (row_id, payload) VALUES (?, ?)`, id, payload)
	if err != nil {
		return fmt.Errorf("insert row %s: %w", id, err)
	}
	if hasID {
		return nil
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert row: %w", err)
	}
	r.Set(s.idProperty, ir.Number(seq))
	if payload, err = marshalRow(r); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE grid_rows SET row_id = ?, payload = ? WHERE seq = ?`,
		ir.Stringify(ir.Number(seq)), payload, seq)
	if err != nil {
		return fmt.Errorf("assign id to row %d: %w", seq, err)
	}
	return nil
}

func (s *Store) updateRow(ctx context.Context, tx *sql.Tx, r *ir.Row) error {
	id, ok := s.rowID(r)
	if !ok {
		return fmt.Errorf("update row: %w", ErrMissingID)
	}
	payload, err := marshalRow(r)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE grid_rows SET payload = ? WHERE row_id = ?`, payload, id)
	if err != nil {
		return fmt.Errorf("update row %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update row %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update row %s: %w", id, ErrRowNotFound)
	}
	return nil
}

func (s *Store) deleteRow(ctx context.Context, tx *sql.Tx, r *ir.Row) error {
	id, ok := s.rowID(r)
	if !ok {
		return fmt.Errorf("delete row: %w", ErrMissingID)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM grid_rows WHERE row_id = ?`, id); err != nil {
		return fmt.Errorf("delete row %s: %w", id, err)
	}
	return nil
}

// diffDigest hashes the canonical form of a diff.
func diffDigest(changes grid.Changes) (string, error) {
	data, err := changes.Canonical()
	if err != nil {
		return "", fmt.Errorf("digest changes: %w", err)
	}
	sum := sha256.Sum256(append([]byte("gridstate/save/v1\x00"), data...))
	return hex.EncodeToString(sum[:]), nil
}
