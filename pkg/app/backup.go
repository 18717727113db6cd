package app

import (
	"context"

	"tableflip.dev/deadlines/pkg/backup"
	"tableflip.dev/deadlines/pkg/engine"
	"tableflip.dev/deadlines/pkg/store"
)

// ImportResult summarises a completed import.
type ImportResult struct {
	Projects   int
	Templates  int
	Triggers   int
	Legacy     bool
	Unresolved []engine.Unresolved
}

// Export encodes every project, template and the settings as a backup.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.Persistence.Settings()
	if err != nil {
		return nil, err
	}
	return backup.Encode(backup.Payload{
		Projects:   s.Persistence.ListProjects(ctx),
		Templates:  s.Persistence.ListTemplates(ctx),
		Settings:   &st,
		ExportedAt: s.now(),
	})
}

// Import replaces all stored data with the backup in data. Legacy backups
// are upgraded first. Decoding finishes before anything is written, so a bad
// payload leaves the store untouched.
func (s *Service) Import(ctx context.Context, data []byte) (ImportResult, error) {
	if err := s.ready(); err != nil {
		return ImportResult{}, err
	}
	payload, err := backup.Decode(data)
	if err != nil {
		return ImportResult{}, err
	}
	s.warn(payload.Unresolved)

	s.mu.Lock()
	defer s.mu.Unlock()
	snap := store.Snapshot{
		Projects:  payload.Projects,
		Templates: payload.Templates,
	}
	if payload.Settings != nil {
		snap.Settings = *payload.Settings
	} else if snap.Settings, err = s.Persistence.Settings(); err != nil {
		return ImportResult{}, err
	}
	if err := s.Persistence.Replace(ctx, snap); err != nil {
		return ImportResult{}, err
	}
	return ImportResult{
		Projects:   len(payload.Projects),
		Templates:  len(payload.Templates),
		Triggers:   len(payload.Triggers),
		Legacy:     payload.Legacy,
		Unresolved: payload.Unresolved,
	}, nil
}
