package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mvaldeb/tienda/internal/api"
	"github.com/mvaldeb/tienda/internal/auth"
	"github.com/mvaldeb/tienda/internal/models"
)

type wishlistBackend struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]models.WishlistItem // keyed by entry id
	hits   int
}

func newWishlistBackend() *wishlistBackend {
	return &wishlistBackend{nextID: 1, items: map[int64]models.WishlistItem{}}
}

func (b *wishlistBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /wishlist", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.hits++
		items := make([]models.WishlistItem, 0, len(b.items))
		for _, item := range b.items {
			items = append(items, item)
		}
		_ = json.NewEncoder(w).Encode(items)
	})

	mux.HandleFunc("GET /wishlist/summary", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.hits++
		_ = json.NewEncoder(w).Encode(models.WishlistSummary{TotalItems: len(b.items)})
	})

	mux.HandleFunc("POST /wishlist/toggle", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.hits++
		var req struct {
			ProductID int64 `json:"product_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		for id, item := range b.items {
			if item.Product.ID == req.ProductID {
				delete(b.items, id)
				return
			}
		}
		b.items[b.nextID] = models.WishlistItem{ID: b.nextID, Product: models.Product{ID: req.ProductID}}
		b.nextID++
	})

	mux.HandleFunc("DELETE /wishlist/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.hits++
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		delete(b.items, id)
	})

	return mux
}

func (b *wishlistBackend) hitCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits
}

func newWishlistManager(t *testing.T, name string, backend *wishlistBackend) (*WishlistManager, *auth.TokenStore) {
	t.Helper()

	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	db := setupDB(t, name)
	tokens := auth.NewTokenStore(db, srv.URL+"/auth/token/refresh", srv.Client(), testLogger())
	gw, err := api.NewGateway(srv.URL, 5*time.Second, tokens, testLogger())
	require.NoError(t, err)

	return NewWishlistManager(gw, tokens, testLogger()), tokens
}

func TestWishlistManager_AnonymousShortCircuits(t *testing.T) {
	ctx := context.Background()
	backend := newWishlistBackend()
	m, _ := newWishlistManager(t, "wishanon", backend)

	require.NoError(t, m.Load(ctx))
	require.NoError(t, m.Toggle(ctx, 7))
	require.NoError(t, m.Remove(ctx, 1))

	require.Empty(t, m.Items())
	require.Equal(t, 0, m.Summary().TotalItems)
	require.Equal(t, 0, backend.hitCount(), "no network traffic without a valid token")
}

func TestWishlistManager_ToggleAddsAndRemoves(t *testing.T) {
	ctx := context.Background()
	backend := newWishlistBackend()
	m, tokens := newWishlistManager(t, "wishtoggle", backend)

	require.NoError(t, tokens.Save(ctx, makeToken(t, time.Now().Add(time.Hour)), "refresh"))

	require.NoError(t, m.Toggle(ctx, 7))
	require.True(t, m.Contains(7))
	require.Equal(t, 1, m.Summary().TotalItems)

	require.NoError(t, m.Toggle(ctx, 7))
	require.False(t, m.Contains(7))
	require.Equal(t, 0, m.Summary().TotalItems)
}

func TestWishlistManager_RemoveByEntryID(t *testing.T) {
	ctx := context.Background()
	backend := newWishlistBackend()
	m, tokens := newWishlistManager(t, "wishremove", backend)

	require.NoError(t, tokens.Save(ctx, makeToken(t, time.Now().Add(time.Hour)), "refresh"))

	require.NoError(t, m.Toggle(ctx, 3))
	require.NoError(t, m.Toggle(ctx, 4))
	require.Len(t, m.Items(), 2)

	var entryID int64
	for _, item := range m.Items() {
		if item.Product.ID == 3 {
			entryID = item.ID
		}
	}
	require.NotZero(t, entryID)

	require.NoError(t, m.Remove(ctx, entryID))
	require.False(t, m.Contains(3))
	require.True(t, m.Contains(4))
}

func TestWishlistManager_ExpiredTokenResetsState(t *testing.T) {
	ctx := context.Background()
	backend := newWishlistBackend()
	m, tokens := newWishlistManager(t, "wishexpired", backend)

	require.NoError(t, tokens.Save(ctx, makeToken(t, time.Now().Add(time.Hour)), "refresh"))
	require.NoError(t, m.Toggle(ctx, 7))
	require.True(t, m.Contains(7))

	require.NoError(t, tokens.Clear(ctx))
	require.NoError(t, m.Load(ctx))
	require.Empty(t, m.Items(), "logged-out state renders empty")
	require.Equal(t, 0, m.Summary().TotalItems)
}
