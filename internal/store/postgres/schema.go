package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the ledger tables and indexes if they do not
// exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.q.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
