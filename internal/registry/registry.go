package registry

import "context"

// The messaging core does not own users, projects or moderation policy. These
// interfaces are the contracts it requires from the surrounding platform.

// Project is the slice of the project registry this service needs: enough to
// validate project-room creation and label the room.
type Project struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	Title    string `json:"title"`
}

// UserDirectory answers whether a user ID is known to the identity provider.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// ProjectRegistry looks up project ownership and title.
type ProjectRegistry interface {
	Lookup(ctx context.Context, projectID string) (*Project, error)
}

// Verdict is the moderation collaborator's answer for a piece of content.
type Verdict struct {
	OK     bool   `json:"is_valid"`
	Reason string `json:"reason,omitempty"`
}

// Moderator screens message content before it is persisted.
type Moderator interface {
	Check(ctx context.Context, content string) (Verdict, error)
}
