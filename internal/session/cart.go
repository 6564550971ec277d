// Package session contains the client-side state containers for cart and
// wishlist, and their synchronization with the backend. Displayed state is
// always a server echo: every mutation is followed by a full reload rather
// than an optimistic local patch, so client totals never drift from
// server-computed pricing.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/mvaldeb/tienda/internal/api"
	"github.com/mvaldeb/tienda/internal/common"
	"github.com/mvaldeb/tienda/internal/logging"
	"github.com/mvaldeb/tienda/internal/models"
	"github.com/mvaldeb/tienda/internal/storage"
)

// CartManager owns the client-visible cart state and mediates between the
// anonymous (session-key) cart and the authenticated (user) cart, including
// the one-time migration when a guest logs in.
//
// Mutations are serialized: a slow remove and a fast quantity update cannot
// interleave and leave the rendered state behind the last server write.
// Loads carry a generation counter so a stale response arriving after a
// newer load is discarded, not applied.
type CartManager struct {
	gw  *api.Gateway
	db  *sql.DB
	log logging.Logger

	opMu sync.Mutex // serializes mutations

	mu            sync.RWMutex // guards the fields below
	gen           uint64
	items         []models.CartItem
	summary       models.CartSummary
	authenticated bool
}

func NewCartManager(gw *api.Gateway, db *sql.DB, log logging.Logger) *CartManager {
	return &CartManager{gw: gw, db: db, log: log}
}

func (m *CartManager) stateRepo() storage.Repository {
	return storage.NewSQLiteRepository(m.db)
}

// Items returns the last server-loaded cart lines.
func (m *CartManager) Items() []models.CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.CartItem, len(m.items))
	copy(out, m.items)
	return out
}

// Summary returns the last server-computed summary.
func (m *CartManager) Summary() models.CartSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summary
}

// Authenticated reports the manager's current identity state.
func (m *CartManager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// Load refetches items and summary from the backend and replaces the local
// snapshot. It is the only mutator of displayed state.
func (m *CartManager) Load(ctx context.Context) error {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	items, summary, err := m.fetch(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		// A newer load superseded this one while it was in flight.
		m.log.Debug(ctx, "discarding stale cart load", "gen", gen, "current", m.gen)
		return nil
	}
	m.items = items
	m.summary = summary
	return nil
}

func (m *CartManager) fetch(ctx context.Context) ([]models.CartItem, models.CartSummary, error) {
	var items []models.CartItem
	resp, err := m.gw.Do(ctx, http.MethodGet, "/cart", nil, api.Options{})
	if err != nil {
		return nil, models.CartSummary{}, err
	}
	if err := resp.Decode(&items); err != nil {
		return nil, models.CartSummary{}, err
	}

	var summary models.CartSummary
	resp, err = m.gw.Do(ctx, http.MethodGet, "/cart/summary", nil, api.Options{})
	if err != nil {
		return nil, models.CartSummary{}, err
	}
	if err := resp.Decode(&summary); err != nil {
		return nil, models.CartSummary{}, err
	}

	return items, summary, nil
}

type addItemRequest struct {
	ProductID  int64  `json:"product_id"`
	Quantity   int    `json:"quantity"`
	SessionKey string `json:"session_key,omitempty"`
}

// AddItem adds qty units of a product to the cart and reloads. Works
// anonymously: no Authorization header is required.
func (m *CartManager) AddItem(ctx context.Context, productID int64, qty int) error {
	if qty < 1 {
		return fmt.Errorf("quantity must be at least 1: %w", common.ErrValidation)
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	req := addItemRequest{ProductID: productID, Quantity: qty}
	if !m.Authenticated() {
		key, err := m.ensureSessionKey(ctx)
		if err != nil {
			return err
		}
		req.SessionKey = key
	}

	if _, err := m.gw.Do(ctx, http.MethodPost, "/cart", req, api.Options{}); err != nil {
		return err
	}
	return m.Load(ctx)
}

// AddItemAsGuest persists the guest's contact data locally before the add so
// a failed add can be retried with the same data (at-least-once, not
// transactional), then performs a regular AddItem.
func (m *CartManager) AddItemAsGuest(ctx context.Context, productID int64, qty int, guest models.GuestIdentity) error {
	if qty < 1 {
		return fmt.Errorf("quantity must be at least 1: %w", common.ErrValidation)
	}

	data, err := json.Marshal(guest)
	if err != nil {
		return err
	}
	repo := m.stateRepo()
	if err := repo.Set(ctx, storage.KeyGuestData, data); err != nil {
		return err
	}
	if guest.DeliveryMethod != "" {
		if err := repo.Set(ctx, storage.KeyDeliveryMethod, []byte(guest.DeliveryMethod)); err != nil {
			return err
		}
	}
	if guest.SessionKey != "" {
		if err := repo.Set(ctx, storage.KeyGuestSessionKey, []byte(guest.SessionKey)); err != nil {
			return err
		}
	}

	return m.AddItem(ctx, productID, qty)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity sets the quantity of an existing cart line and reloads.
// Quantities below 1 are rejected locally without touching the network;
// removal is the only way to reach zero, and the UI must treat sub-1 input
// as a remove candidate.
func (m *CartManager) UpdateQuantity(ctx context.Context, itemID int64, qty int) error {
	if qty < 1 {
		return fmt.Errorf("quantity must be at least 1: %w", common.ErrValidation)
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	path := fmt.Sprintf("/cart/%d", itemID)
	if _, err := m.gw.Do(ctx, http.MethodPatch, path, updateQuantityRequest{Quantity: qty}, api.Options{}); err != nil {
		return err
	}
	return m.Load(ctx)
}

// RemoveItem deletes a cart line and reloads.
func (m *CartManager) RemoveItem(ctx context.Context, itemID int64) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	path := fmt.Sprintf("/cart/%d", itemID)
	if _, err := m.gw.Do(ctx, http.MethodDelete, path, nil, api.Options{}); err != nil {
		return err
	}
	return m.Load(ctx)
}

// Clear empties the cart and reloads.
func (m *CartManager) Clear(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, err := m.gw.Do(ctx, http.MethodDelete, "/cart/clear", nil, api.Options{}); err != nil {
		return err
	}
	return m.Load(ctx)
}

type migrateRequest struct {
	SessionKey string `json:"session_key"`
}

// SetAuthenticated switches the identity state.
//
// Anonymous to authenticated runs at most one migration of the guest cart
// into the user's cart, keyed by the locally stored session key. The key and
// the guest data are cleared after a successful attempt even when the server
// had nothing to migrate, making repeated transitions no-ops. Authenticated
// to anonymous reloads from the anonymous endpoint; the user's cart is not
// visible anonymously.
func (m *CartManager) SetAuthenticated(ctx context.Context, authenticated bool) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	was := m.authenticated
	m.authenticated = authenticated
	m.mu.Unlock()

	if authenticated && !was {
		if err := m.migrateGuestCart(ctx); err != nil {
			return err
		}
	}
	return m.Load(ctx)
}

func (m *CartManager) migrateGuestCart(ctx context.Context) error {
	repo := m.stateRepo()
	key, err := repo.Get(ctx, storage.KeyGuestSessionKey)
	if err != nil {
		return err
	}
	if len(key) == 0 {
		// Nothing to migrate; a consumed or never-issued key is not an error.
		return nil
	}

	_, err = m.gw.Do(ctx, http.MethodPost, "/cart/migrate-to-user", migrateRequest{SessionKey: string(key)}, api.Options{RequireAuth: true})
	if err != nil {
		return err
	}

	if err := repo.Delete(ctx, storage.KeyGuestSessionKey); err != nil {
		return err
	}
	if err := repo.Delete(ctx, storage.KeyGuestData); err != nil {
		return err
	}
	m.log.Info(ctx, "guest cart migrated to user")
	return nil
}

// ensureSessionKey returns the stored guest session key, minting and
// persisting one on first anonymous use.
func (m *CartManager) ensureSessionKey(ctx context.Context) (string, error) {
	repo := m.stateRepo()
	key, err := repo.Get(ctx, storage.KeyGuestSessionKey)
	if err != nil {
		return "", err
	}
	if len(key) > 0 {
		return string(key), nil
	}

	minted := uuid.NewString()
	if err := repo.Set(ctx, storage.KeyGuestSessionKey, []byte(minted)); err != nil {
		return "", err
	}
	return minted, nil
}

// SessionKey returns the stored guest session key, or "" when none exists.
func (m *CartManager) SessionKey(ctx context.Context) (string, error) {
	key, err := m.stateRepo().Get(ctx, storage.KeyGuestSessionKey)
	if err != nil {
		return "", err
	}
	return string(key), nil
}

// StoredGuest returns the locally persisted guest identity, or nil when no
// guest data has been stored.
func (m *CartManager) StoredGuest(ctx context.Context) (*models.GuestIdentity, error) {
	data, err := m.stateRepo().Get(ctx, storage.KeyGuestData)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var guest models.GuestIdentity
	if err := json.Unmarshal(data, &guest); err != nil {
		return nil, fmt.Errorf("failed to decode stored guest data: %w", err)
	}
	return &guest, nil
}
