package store

import (
	"context"
	"fmt"

	"github.com/roach88/gridstate/internal/ir"
	"github.com/roach88/gridstate/internal/query"
)

// Load returns the rows matching params and records the filtered count
// for TotalCount. Returns an empty slice (not nil) when nothing matches.
func (s *Store) Load(ctx context.Context, params query.Params) ([]*ir.Row, error) {
	sqlText, args, err := s.compiler.Compile(params)
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	out := []*ir.Row{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r, err := unmarshalRow(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	total, err := s.count(ctx, params)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.total = total
	s.mu.Unlock()

	return out, nil
}

func (s *Store) count(ctx context.Context, params query.Params) (int, error) {
	sqlText, args, err := s.compiler.CompileCount(params)
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, sqlText, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

// SaveRecord is one entry of the saves audit table.
type SaveRecord struct {
	ID       int64  `json:"id"`
	SavedAt  string `json:"saved_at"`
	Modified int    `json:"modified"`
	Added    int    `json:"added"`
	Deleted  int    `json:"deleted"`
	Digest   string `json:"digest"`
}

// Saves returns the audit trail, oldest first.
func (s *Store) Saves(ctx context.Context) ([]SaveRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, saved_at, modified, added, deleted, digest
		FROM saves
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query saves: %w", err)
	}
	defer rows.Close()

	out := []SaveRecord{}
	for rows.Next() {
		var rec SaveRecord
		if err := rows.Scan(&rec.ID, &rec.SavedAt, &rec.Modified, &rec.Added, &rec.Deleted, &rec.Digest); err != nil {
			return nil, fmt.Errorf("scan save: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saves: %w", err)
	}
	return out, nil
}
