package engagement

import "errors"

// Vote values as stored. A missing row means no vote.
const (
	VoteNone = 0
	VoteUp   = 1
	VoteDown = -1
)

var (
	// errors
	ErrNoOpVote       = errors.New("vote is already in the requested state")
	ErrInvalidVote    = errors.New("vote must be one of -1, 0, 1")
	ErrMissingContent = errors.New("file content no longer exists")
)

// A Vote is one user's standing vote on one file.
type Vote struct {
	Username string `json:"username"`
	FileID   string `json:"file_id"`
	Value    int    `json:"value"`
}

// A Favorite marks a file on one user's favorites page.
type Favorite struct {
	Username string `json:"username"`
	FileID   string `json:"file_id"`
}

type voteAction int

const (
	voteCreate voteAction = iota
	voteUpdate
	voteDelete
)

// applyVote decides what a requested vote does to the current one.
// Requesting the state already held is rejected, retraction included.
func applyVote(current, requested int) (voteAction, error) {
	if requested != VoteNone && requested != VoteUp && requested != VoteDown {
		return 0, ErrInvalidVote
	}
	switch {
	case current == requested:
		return 0, ErrNoOpVote
	case current == VoteNone:
		return voteCreate, nil
	case requested == VoteNone:
		return voteDelete, nil
	default:
		return voteUpdate, nil
	}
}
