package noteaccess

import (
	"fmt"

	"notehub/internal/config"
	"notehub/internal/notes"
)

// Session represents a note access handle and its cleanup function.
type Session struct {
	Access Access
	close  func() error
}

// Close releases resources associated with the session.
func (s Session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenWithFallback tries API-backed access first, then falls back to direct store access.
func OpenWithFallback(
	cfg *config.Config,
	dial func() (*Client, error),
	openStore func() (notes.Store, error),
) (Session, error) {
	if dial != nil {
		if client, err := dial(); err == nil && client != nil {
			return Session{Access: NewAPIAccess(client)}, nil
		}
	}

	if openStore == nil {
		return Session{}, fmt.Errorf("open note store: no store opener configured")
	}
	store, err := openStore()
	if err != nil {
		return Session{}, fmt.Errorf("open note store: %w", err)
	}
	access, err := NewStoreAccess(cfg, store)
	if err != nil {
		_ = store.Close()
		return Session{}, err
	}
	return Session{
		Access: access,
		close:  store.Close,
	}, nil
}
