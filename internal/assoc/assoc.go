// Package assoc persists ticket-branch associations at two scopes: a
// workspace-local store bound to the currently open workspace, and a global
// store spanning every repository ever seen.
//
// Persistence is a versioned JSON document written atomically (temp file
// then rename). An unreadable or schema-incompatible file is backed up and
// replaced with an empty store; the engine never refuses to start over a
// bad state file.
package assoc

import (
	"errors"
	"time"
)

// Source records how an association was created.
type Source string

const (
	// SourceManual is an explicit user association.
	SourceManual Source = "manual"

	// SourceAutoDetected is an association promoted from a branch-name scan.
	SourceAutoDetected Source = "auto_detected"

	// SourceSuggestedAccepted is a suggestion the user accepted.
	SourceSuggestedAccepted Source = "suggested_accepted"
)

// Association links an external ticket identifier to a git branch within a
// specific repository. For a given (ticket, repository) pair at most one
// association exists; the same ticket may map to different branches in
// different repositories.
type Association struct {
	TicketID       string    `json:"ticketId"`
	BranchName     string    `json:"branchName"`
	RepositoryID   string    `json:"repositoryId"`
	RepositoryPath string    `json:"repositoryPath"`
	Source         Source    `json:"source"`
	CreatedAt      time.Time `json:"createdAt"`
	LastVerifiedAt time.Time `json:"lastVerifiedAt"`

	// Stale is advisory: set when verification failed for the current
	// repository. It never deletes the record; removal is always explicit.
	Stale bool `json:"stale,omitempty"`
}

// ErrDuplicateAssociation signals a violated store invariant: two records
// for one (ticket, repository) pair. It indicates a bug, not a user error,
// and is repaired on load by keeping the newest record.
var ErrDuplicateAssociation = errors.New("duplicate association for ticket and repository")

// schemaVersion is the current persisted document version.
//
// Version history:
//
//	0 (implicit) - bare JSON map of ticketId -> branchName
//	1            - versioned document with full association records
const schemaVersion = 1

// document is the persisted JSON layout.
type document struct {
	SchemaVersion int           `json:"schemaVersion"`
	Associations  []Association `json:"associations"`
}
