package usecase

import (
	"context"
	"log"
	"sync"

	"gemdesk/internal/domain/entity"
	"gemdesk/pkg/errors"
)

// DirectoryUseCase holds the session roster of partners and team members.
// Load is idempotent; the last successful call wins per roster.
type DirectoryUseCase struct {
	client DirectoryClient

	mu          sync.RWMutex
	partners    []entity.Entity
	teamMembers []entity.Entity
}

func NewDirectoryUseCase(client DirectoryClient) *DirectoryUseCase {
	return &DirectoryUseCase{
		client: client,
	}
}

// Load fetches both rosters, deduplicating by id (first seen wins). A failed
// roster degrades to the previously loaded one; the error is still returned
// so callers can record it.
func (uc *DirectoryUseCase) Load(ctx context.Context) ([]entity.Entity, []entity.Entity, error) {
	var loadErr error

	partners, err := uc.client.ListPartners(ctx)
	if err != nil {
		log.Printf("Load Error: Failed to load partner roster: %v", err)
		loadErr = errors.Directory("Partner roster load failed", err)
	} else {
		partners = dedupeByID(partners)
		uc.mu.Lock()
		uc.partners = partners
		uc.mu.Unlock()
	}

	teamMembers, err := uc.client.ListTeamMembers(ctx)
	if err != nil {
		log.Printf("Load Error: Failed to load team roster: %v", err)
		loadErr = errors.Directory("Team roster load failed", err)
	} else {
		teamMembers = dedupeByID(teamMembers)
		uc.mu.Lock()
		uc.teamMembers = teamMembers
		uc.mu.Unlock()
	}

	return uc.Partners(), uc.TeamMembers(), loadErr
}

func (uc *DirectoryUseCase) Partners() []entity.Entity {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return append([]entity.Entity(nil), uc.partners...)
}

func (uc *DirectoryUseCase) TeamMembers() []entity.Entity {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return append([]entity.Entity(nil), uc.teamMembers...)
}

// GetByID looks an entity up across both rosters.
func (uc *DirectoryUseCase) GetByID(id string) (*entity.Entity, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	for i := range uc.partners {
		if uc.partners[i].ID == id {
			found := uc.partners[i]
			return &found, nil
		}
	}
	for i := range uc.teamMembers {
		if uc.teamMembers[i].ID == id {
			found := uc.teamMembers[i]
			return &found, nil
		}
	}
	return nil, errors.NotFound("Entity", nil)
}

func dedupeByID(entities []entity.Entity) []entity.Entity {
	seen := make(map[string]bool, len(entities))
	deduped := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		if e.ID == "" || seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		deduped = append(deduped, e)
	}
	return deduped
}
