package service

import (
	"context"
	"log"

	"gobag/internal/model"
	"gobag/internal/repository"
)

// migrationChunkSize bounds one atomic batch, with headroom under the
// store's hard ceiling of 500 writes per batch.
const migrationChunkSize = 450

// MigrationService re-points sessions from one item list to another in
// size-bounded atomic chunks, committed sequentially. A failed chunk leaves a
// fully migrated prefix and an untouched suffix; nothing is rolled back.
type MigrationService struct {
	sessionRepo repository.SessionRepo
	listRepo    repository.ItemListRepo
}

// NewMigrationService creates a new migration service
func NewMigrationService(sessionRepo repository.SessionRepo, listRepo repository.ItemListRepo) *MigrationService {
	return &MigrationService{
		sessionRepo: sessionRepo,
		listRepo:    listRepo,
	}
}

// Migrate re-points every affected session at toListID and returns the
// number migrated. On a chunk failure it returns a PartialMigrationError
// carrying how many sessions were committed before the failure. The source
// list itself is left alone; callers re-run the referential scan before
// retrying a delete.
func (s *MigrationService) Migrate(ctx context.Context, fromListID, toListID string, affected []*model.Session) (int, error) {
	if toListID == fromListID {
		return 0, ErrSameList
	}

	dest, err := s.listRepo.GetByID(ctx, toListID)
	if err != nil {
		return 0, err
	}
	if dest == nil {
		return 0, ErrListNotFound
	}

	ids := make([]string, 0, len(affected))
	for _, session := range affected {
		ids = append(ids, session.ID)
	}

	committed := 0
	for start := 0; start < len(ids); start += migrationChunkSize {
		end := start + migrationChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		if err := s.sessionRepo.UpdateItemListRefs(ctx, chunk, toListID); err != nil {
			log.Printf("migration chunk failed after %d session(s): %v", committed, err)
			return committed, &PartialMigrationError{Committed: committed, Err: err}
		}
		committed += len(chunk)
	}

	return committed, nil
}
