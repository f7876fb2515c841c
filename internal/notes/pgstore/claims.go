package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"notehub/internal/notes"
)

// Claim leases the oldest eligible note. Rows locked by a concurrent claim
// are skipped rather than waited on.
func (s *Store) Claim(ctx context.Context, req notes.ClaimRequest) (*notes.Note, error) {
	if req.Token == "" {
		return nil, errors.New("claim token is empty")
	}
	if req.From.Terminal() {
		return nil, nil
	}
	var note *notes.Note
	err := withRetry(ctx, func() error {
		var scanErr error
		note, scanErr = scanNote(s.pool.QueryRow(ctx,
			`UPDATE notes SET claim_token = $1, claimed_at = $2
            WHERE id = (
                SELECT id FROM notes
                WHERE status = $3 AND (claim_token IS NULL OR claimed_at < $4)
                ORDER BY created_at, seq
                LIMIT 1
                FOR UPDATE SKIP LOCKED
            )
            RETURNING `+noteColumns,
			req.Token,
			time.Now().UTC(),
			string(req.From),
			req.StaleBefore.UTC(),
		))
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim note: %w", err)
	}
	return note, nil
}

// RenewClaim extends the lease held by token.
func (s *Store) RenewClaim(ctx context.Context, id, token string) error {
	var tag int64
	err := withRetry(ctx, func() error {
		res, execErr := s.pool.Exec(ctx,
			`UPDATE notes SET claimed_at = $1 WHERE id = $2 AND claim_token = $3`,
			time.Now().UTC(), id, token,
		)
		tag = res.RowsAffected()
		return execErr
	})
	if err != nil {
		return fmt.Errorf("renew claim: %w", err)
	}
	if tag == 0 {
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

	var errorInfo *string
	if encoded, ok := notes.EncodeErrorInfo(changes.ErrorInfo).(string); ok {
		errorInfo = &encoded
	}

	var affected int64
	err := withRetry(ctx, func() error {
		res, execErr := s.pool.Exec(ctx,
			`UPDATE notes SET
                status = $1,
                transcript = COALESCE($2, transcript),
                summary = COALESCE($3, summary),
                action_items = COALESCE($4, action_items),
                title = CASE WHEN TRIM(COALESCE(title, '')) = '' THEN COALESCE($5, title) ELSE title END,
                archive_path = COALESCE($6, archive_path),
                error_info = COALESCE($7, error_info),
                claim_token = NULL,
                claimed_at = NULL,
                updated_at = $8
            WHERE id = $9 AND status = $10 AND claim_token = $11`,
			string(next),
			changes.Transcript,
			changes.Summary,
			nullableList(changes.ActionItems),
			changes.Title,
			changes.ArchivePath,
			errorInfo,
			time.Now().UTC(),
			claimed.ID,
			string(claimed.Status),
			claimed.ClaimToken,
		)
		affected = res.RowsAffected()
		return execErr
	})
	if err != nil {
		return fmt.Errorf("commit note: %w", err)
	}
	if affected == 0 {
		return notes.ErrClaimLost
	}
	return nil
}
