package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidRoute is returned when a hash is requested for an empty or
	// malformed route.
	ErrInvalidRoute = zerr.New("invalid route")

	// ErrArtifactMissing is returned when no validation artifact exists for
	// the originating pull request.
	ErrArtifactMissing = zerr.New("validation artifact not found")

	// ErrCommitConflict is returned when pushing the mutated cache loses a
	// race against another commit on the same branch.
	ErrCommitConflict = zerr.New("commit conflict on branch")
)
