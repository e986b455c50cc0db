package postgres

import (
	"context"
	"fmt"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/config"
	"github.com/abhissng/chargehub/ports"
)

var _ ports.Syncer = (*Syncer)(nil)

// Syncer creates the managed tables. Without a database section it does nothing.
type Syncer struct {
	db     *PostgresDB
	alter  bool
	logger *log.Log
}

// NewSyncer builds a Syncer for cfg, which may be nil.
func NewSyncer(cfg *config.DatabaseConfig, logger *log.Log) *Syncer {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Syncer{logger: logger.With(log.Component("schema-sync"))}
	if cfg != nil {
		s.db = NewPostgresDB(cfg, logger)
		s.alter = cfg.Alter
	}
	return s
}

// Enabled reports whether a database is configured.
func (s *Syncer) Enabled() bool {
	return s.db != nil
}

// Sync connects and, when force is set, runs the DDL in one transaction.
// Without force it only checks connectivity.
func (s *Syncer) Sync(ctx context.Context, force bool) error {
	if s.db == nil {
		s.logger.Info("no database configured, skipping schema sync")
		return nil
	}

	pool, err := s.db.Connect(ctx)
	if err != nil {
		return err
	}
	defer s.db.Close()

	if !force {
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin schema sync: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, statement := range Statements(s.alter) {
		if _, err := tx.Exec(ctx, statement); err != nil {
			return fmt.Errorf("schema sync statement failed: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schema sync: %w", err)
	}

	s.logger.Info("schema synced", log.Int("tables", len(Tables)), log.Bool("alter", s.alter))
	return nil
}
