package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"notehub/internal/notes"
)

// Claim leases the oldest eligible note. SQLite has no row locks, so the
// candidate is taken with a compare-and-swap update guarded on status and
// lease; losing the swap moves on to the next candidate until none is left.
func (s *Store) Claim(ctx context.Context, req notes.ClaimRequest) (*notes.Note, error) {
	ctx = ensureContext(ctx)
	if req.Token == "" {
		return nil, errors.New("claim token is empty")
	}
	if req.From.Terminal() {
		return nil, nil
	}
	stale := formatTime(req.StaleBefore)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var id string
		err := retryOnBusy(ctx, func() error {
			return s.db.QueryRowContext(
				ctx,
				`SELECT id FROM notes
                WHERE status = ? AND (claim_token IS NULL OR claimed_at < ?)
                ORDER BY created_at, seq LIMIT 1`,
				req.From,
				stale,
			).Scan(&id)
		})
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("select claim candidate: %w", err)
		}

		res, err := s.execWithRetry(
			ctx,
			`UPDATE notes SET claim_token = ?, claimed_at = ?
            WHERE id = ? AND status = ? AND (claim_token IS NULL OR claimed_at < ?)`,
			req.Token,
			formatTime(time.Now()),
			id,
			req.From,
			stale,
		)
		if err != nil {
			return nil, fmt.Errorf("claim note: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("claim rows affected: %w", err)
		}
		if affected == 1 {
			return s.GetByID(ctx, id)
		}
	}
}

// RenewClaim extends the lease held by token.
func (s *Store) RenewClaim(ctx context.Context, id, token string) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE notes SET claimed_at = ? WHERE id = ? AND claim_token = ?`,
		formatTime(time.Now()),
		id,
		token,
	)
	if err != nil {
		return fmt.Errorf("renew claim: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("renew rows affected: %w", err)
	}
	if affected == 0 {
		return notes.ErrClaimLost
	}
	return nil
}

// Commit writes the next status and stage output in one conditional update.
func (s *Store) Commit(ctx context.Context, claimed *notes.Note, next notes.Status, changes notes.Changes) error {
	if claimed == nil {
		return errors.New("commit: note is nil")
	}
	if err := changes.Validate(claimed.Status, next); err != nil {
		return err
	}
	if claimed.ClaimToken == "" {
		return notes.ErrClaimLost
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE notes SET
            status = ?,
            transcript = COALESCE(?, transcript),
            summary = COALESCE(?, summary),
            action_items = COALESCE(?, action_items),
            title = CASE WHEN TRIM(COALESCE(title, '')) = '' THEN COALESCE(?, title) ELSE title END,
            archive_path = COALESCE(?, archive_path),
            error_info = COALESCE(?, error_info),
            claim_token = NULL,
            claimed_at = NULL,
            updated_at = ?
        WHERE id = ? AND status = ? AND claim_token = ?`,
		next,
		nullablePtr(changes.Transcript),
		nullablePtr(changes.Summary),
		nullableList(changes.ActionItems),
		nullablePtr(changes.Title),
		nullablePtr(changes.ArchivePath),
		notes.EncodeErrorInfo(changes.ErrorInfo),
		formatTime(time.Now()),
		claimed.ID,
		claimed.Status,
		claimed.ClaimToken,
	)
	if err != nil {
		return fmt.Errorf("commit note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("commit rows affected: %w", err)
	}
	if affected == 0 {
		return notes.ErrClaimLost
	}
	return nil
}
