package domain

import "strings"

// ApproveKeyword is the comment keyword that starts an approval command.
const ApproveKeyword = "/approve-path"

// CommentRef identifies the comment a command originated from.
type CommentRef struct {
	IssueNumber int
	CommentID   int64
}

// ApprovalCommand is a parsed approval request. Identities are
// deduplicated and keep first-seen order so batch commit messages and
// confirmation comments are deterministic.
type ApprovalCommand struct {
	Actor      string
	Identities []Identity
	Comment    CommentRef
}

// TokenWarning records one malformed token dropped during parsing.
type TokenWarning struct {
	Token  string
	Reason string
}

// ParseApprovalCommand extracts an approval command from a free-text
// comment body. It recognizes lines whose first field is the approve
// keyword followed by whitespace-separated identity tokens. Malformed
// tokens are dropped with a warning rather than failing the command; a
// body with no valid tokens yields a nil command, which callers treat as
// "not a command" rather than an error.
func ParseApprovalCommand(actor, body string) (*ApprovalCommand, []TokenWarning) {
	var (
		identities []Identity
		warnings   []TokenWarning
		seen       = make(map[Identity]bool)
	)

	for line := range strings.Lines(body) {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] != ApproveKeyword {
			continue
		}
		for _, token := range fields[1:] {
			id := Identity(token)
			if !id.Valid() {
				warnings = append(warnings, TokenWarning{
					Token:  token,
					Reason: "not a valid path identity",
				})
				continue
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			identities = append(identities, id)
		}
	}

	if len(identities) == 0 {
		return nil, warnings
	}
	return &ApprovalCommand{Actor: actor, Identities: identities}, warnings
}
