package registry

import (
	"context"
	"fmt"

	"github.com/rishuraj778292/LLMbeing-sub001/pkg/apperrors"
)

var errProjectNotFound = fmt.Errorf("project: %w", apperrors.ErrNotFound)

// Permissive fallbacks used when a collaborator URL is not configured, e.g.
// running the subsystem standalone in development.

// OpenDirectory accepts every non-empty user ID.
type OpenDirectory struct{}

func (OpenDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	return userID != "", nil
}

// AllowAllModerator approves every message.
type AllowAllModerator struct{}

func (AllowAllModerator) Check(ctx context.Context, content string) (Verdict, error) {
	return Verdict{OK: true}, nil
}

// StaticProjects serves project lookups from a fixed map. Handy for tests and
// standalone runs.
type StaticProjects map[string]Project

func (s StaticProjects) Lookup(ctx context.Context, projectID string) (*Project, error) {
	if p, ok := s[projectID]; ok {
		return &p, nil
	}
	return nil, errProjectNotFound
}
