package auth

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/mvaldeb/tienda/internal/common"
	"github.com/mvaldeb/tienda/internal/logging"
	"github.com/mvaldeb/tienda/internal/storage"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

func setupDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE state (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func makeToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func makeTokenWithoutExp(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "42"})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func storedToken(t *testing.T, db *sql.DB, key string) string {
	t.Helper()
	v, err := storage.NewSQLiteRepository(db).Get(context.Background(), key)
	require.NoError(t, err)
	return string(v)
}

// ---- expiry ----

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  bool
	}{
		{"empty token", func(t *testing.T) string { return "" }, true},
		{"garbage token", func(t *testing.T) string { return "not.a.jwt" }, true},
		{"missing exp claim", makeTokenWithoutExp, true},
		{"expired", func(t *testing.T) string { return makeToken(t, time.Now().Add(-time.Minute)) }, true},
		{"valid", func(t *testing.T) string { return makeToken(t, time.Now().Add(time.Hour)) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsExpired(tt.token(t)))
		})
	}
}

func TestGetValid(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t, "getvalid")
	s := NewTokenStore(db, "http://unused", nil, testLogger())

	got, err := s.GetValid(ctx)
	require.NoError(t, err)
	require.Empty(t, got, "no stored token must yield empty")

	expired := makeToken(t, time.Now().Add(-time.Minute))
	require.NoError(t, s.Save(ctx, expired, "refresh"))
	got, err = s.GetValid(ctx)
	require.NoError(t, err)
	require.Empty(t, got, "expired token must yield empty")

	valid := makeToken(t, time.Now().Add(time.Hour))
	require.NoError(t, s.Save(ctx, valid, "refresh"))
	got, err = s.GetValid(ctx)
	require.NoError(t, err)
	require.Equal(t, valid, got)
}

// ---- refresh ----

func TestRefresh_SuccessPersistsNewAccess(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t, "refreshok")

	newAccess := makeToken(t, time.Now().Add(time.Hour))
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access":"` + newAccess + `"}`))
	}))
	t.Cleanup(srv.Close)

	s := NewTokenStore(db, srv.URL, srv.Client(), testLogger())
	require.NoError(t, s.Save(ctx, makeToken(t, time.Now().Add(-time.Minute)), "old-refresh"))

	got, err := s.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, newAccess, got)
	require.Equal(t, int32(1), calls.Load())

	require.Equal(t, newAccess, storedToken(t, db, storage.KeyAccessToken))
	// Refresh token not rotated by the server: the old one stays.
	require.Equal(t, "old-refresh", storedToken(t, db, storage.KeyRefreshToken))
}

func TestRefresh_ConcurrentCallsShareOneExchange(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t, "refreshdedup")

	newAccess := makeToken(t, time.Now().Add(time.Hour))
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(`{"access":"` + newAccess + `"}`))
	}))
	t.Cleanup(srv.Close)

	s := NewTokenStore(db, srv.URL, srv.Client(), testLogger())
	require.NoError(t, s.Save(ctx, makeToken(t, time.Now().Add(-time.Minute)), "refresh"))

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Refresh(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), calls.Load(), "concurrent refreshes must share a single exchange")
}

func TestRefresh_FailureClearsBothTokens(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t, "refreshfail")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	s := NewTokenStore(db, srv.URL, srv.Client(), testLogger())
	require.NoError(t, s.Save(ctx, makeToken(t, time.Now().Add(-time.Minute)), "dead-refresh"))

	_, err := s.Refresh(ctx)
	require.ErrorIs(t, err, common.ErrAuthentication)

	require.Empty(t, storedToken(t, db, storage.KeyAccessToken))
	require.Empty(t, storedToken(t, db, storage.KeyRefreshToken))
}

func TestRefresh_WithoutStoredRefreshToken(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t, "refreshnone")
	s := NewTokenStore(db, "http://unused", nil, testLogger())

	_, err := s.Refresh(ctx)
	require.ErrorIs(t, err, common.ErrAuthentication)
}
