// Package session ties the in-memory invoice collection to persistence. A
// session rehydrates stored records at startup, snapshots the collection
// after mutations, and persists a final snapshot at teardown.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/infrastructure/persistence/repository"
	"github.com/hereandnowai/invoice-processor/internal/invoice"
)

// AppSession owns the lifecycle of the record collection across restarts.
type AppSession struct {
	manager *invoice.Manager
	repo    *repository.RecordRepository
	logger  *zap.Logger
}

func New(manager *invoice.Manager, repo *repository.RecordRepository, logger *zap.Logger) *AppSession {
	return &AppSession{manager: manager, repo: repo, logger: logger}
}

// Init loads the stored records into the collection. Rehydrated records keep
// their settled status but carry placeholder files, so they cannot be
// re-processed without a fresh upload.
func (s *AppSession) Init(ctx context.Context) error {
	records, err := s.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	s.manager.Restore(records)
	s.logger.Info("session restored", zap.Int("records", len(records)))
	return nil
}

// Persist snapshots the current collection to storage.
func (s *AppSession) Persist(ctx context.Context) error {
	records := s.manager.Records()
	if err := s.repo.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	s.logger.Debug("session persisted", zap.Int("records", len(records)))
	return nil
}

// Reset wipes the collection, its previews and the stored snapshot.
func (s *AppSession) Reset(ctx context.Context) error {
	s.manager.ReleasePreviews(ctx)
	s.manager.Restore(nil)
	if err := s.repo.ReplaceAll(ctx, nil); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	s.logger.Info("session reset")
	return nil
}

// Teardown persists a final snapshot. Previews stay on disk; they are still
// valid for rehydrated records after a restart.
func (s *AppSession) Teardown(ctx context.Context) error {
	return s.Persist(ctx)
}
