package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/mvaldeb/tienda/internal/api"
	"github.com/mvaldeb/tienda/internal/auth"
	"github.com/mvaldeb/tienda/internal/logging"
	"github.com/mvaldeb/tienda/internal/models"
)

// WishlistManager mirrors CartManager's read/mutate/reload discipline but
// strictly requires authentication. Without a valid token every operation
// short-circuits to an empty state and issues no network call; callers
// cannot tell "not logged in" from "server says empty", which is intended.
type WishlistManager struct {
	gw     *api.Gateway
	tokens *auth.TokenStore
	log    logging.Logger

	opMu sync.Mutex

	mu      sync.RWMutex
	gen     uint64
	items   []models.WishlistItem
	summary models.WishlistSummary
}

func NewWishlistManager(gw *api.Gateway, tokens *auth.TokenStore, log logging.Logger) *WishlistManager {
	return &WishlistManager{gw: gw, tokens: tokens, log: log}
}

// Items returns the last loaded wishlist entries.
func (m *WishlistManager) Items() []models.WishlistItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.WishlistItem, len(m.items))
	copy(out, m.items)
	return out
}

// Summary returns the last loaded wishlist summary.
func (m *WishlistManager) Summary() models.WishlistSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.summary
}

// Contains reports whether productID is currently wishlisted.
func (m *WishlistManager) Contains(productID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.Product.ID == productID {
			return true
		}
	}
	return false
}

// Load refetches wishlist items and summary, or resets to empty without any
// network call when no valid token is available.
func (m *WishlistManager) Load(ctx context.Context) error {
	ok, err := m.loggedIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		m.reset()
		return nil
	}

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	var items []models.WishlistItem
	resp, err := m.gw.Do(ctx, http.MethodGet, "/wishlist", nil, api.Options{RequireAuth: true})
	if err != nil {
		return err
	}
	if err := resp.Decode(&items); err != nil {
		return err
	}

	var summary models.WishlistSummary
	resp, err = m.gw.Do(ctx, http.MethodGet, "/wishlist/summary", nil, api.Options{RequireAuth: true})
	if err != nil {
		return err
	}
	if err := resp.Decode(&summary); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		m.log.Debug(ctx, "discarding stale wishlist load", "gen", gen, "current", m.gen)
		return nil
	}
	m.items = items
	m.summary = summary
	return nil
}

type toggleRequest struct {
	ProductID int64 `json:"product_id"`
}

// Toggle adds the product to the wishlist when absent and removes it when
// present, then reloads. No-op without a valid token.
func (m *WishlistManager) Toggle(ctx context.Context, productID int64) error {
	ok, err := m.loggedIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		m.reset()
		return nil
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if _, err := m.gw.Do(ctx, http.MethodPost, "/wishlist/toggle", toggleRequest{ProductID: productID}, api.Options{RequireAuth: true}); err != nil {
		return err
	}
	return m.Load(ctx)
}

// Remove deletes a wishlist entry by its id, then reloads. No-op without a
// valid token.
func (m *WishlistManager) Remove(ctx context.Context, itemID int64) error {
	ok, err := m.loggedIn(ctx)
	if err != nil {
		return err
	}
	if !ok {
		m.reset()
		return nil
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	path := fmt.Sprintf("/wishlist/%d", itemID)
	if _, err := m.gw.Do(ctx, http.MethodDelete, path, nil, api.Options{RequireAuth: true}); err != nil {
		return err
	}
	return m.Load(ctx)
}

func (m *WishlistManager) loggedIn(ctx context.Context) (bool, error) {
	token, err := m.tokens.GetValid(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

func (m *WishlistManager) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.items = nil
	m.summary = models.WishlistSummary{}
}
