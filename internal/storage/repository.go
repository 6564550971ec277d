// Package storage persists client-local state (token pair, guest session
// key, guest contact data, delivery method) in a sqlite key/value table.
// It is the Go-native stand-in for the browser's local storage.
package storage

import "context"

// Well-known state keys.
const (
	KeyAccessToken     = "access_token"
	KeyRefreshToken    = "refresh_token"
	KeyGuestSessionKey = "guest_session_key"
	KeyGuestData       = "guest_data"
	KeyDeliveryMethod  = "delivery_method"
)

// Repository is a context-aware key/value store. Get returns nil (not an
// error) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
