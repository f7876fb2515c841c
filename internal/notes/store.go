package notes

import "context"

// Store persists notes and coordinates stage workers. Every backend must
// make Claim exclusive: two concurrent claims never return the same note
// while its lease is live, and Commit succeeds only for the claim holder.
type Store interface {
	CreateAudio(ctx context.Context, in NewAudio) (*Note, error)
	CreateText(ctx context.Context, in NewText) (*Note, error)
	GetByID(ctx context.Context, id string) (*Note, error)
	List(ctx context.Context, offset, limit int) ([]Summary, error)
	Stats(ctx context.Context) (map[Status]int, error)

	// Claim returns nil, nil when nothing is eligible.
	Claim(ctx context.Context, req ClaimRequest) (*Note, error)
	RenewClaim(ctx context.Context, id, token string) error
	// Commit writes next and changes in one conditional update and clears the lease.
	Commit(ctx context.Context, claimed *Note, next Status, changes Changes) error

	Ping(ctx context.Context) error
	Close() error
}

// Pagination bounds shared by backends and the API.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ClampPage normalizes offset/limit pairs.
func ClampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return offset, limit
}
