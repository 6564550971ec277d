// Package auth owns the persisted credential pair (access/refresh token) and
// its lifecycle: expiry checks, refresh against the backend auth endpoint,
// and clearing on logout or irrecoverable refresh failure.
package auth

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/mvaldeb/tienda/internal/common"
	"github.com/mvaldeb/tienda/internal/dbx"
	"github.com/mvaldeb/tienda/internal/logging"
	"github.com/mvaldeb/tienda/internal/storage"
)

// IsExpired reports whether token's embedded exp claim is absent, malformed,
// or in the past. Malformed input counts as expired (fail closed); the
// signature is deliberately not verified, the check only gates a local
// refresh decision.
func IsExpired(token string) bool {
	if token == "" {
		return true
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Before(time.Now())
}

// TokenStore is the single owner of the persisted token pair. Session
// managers and the gateway read tokens only through it.
type TokenStore struct {
	db         *sql.DB
	refreshURL string
	httpClient *http.Client
	sfg        singleflight.Group
	log        logging.Logger
}

func NewTokenStore(db *sql.DB, refreshURL string, httpClient *http.Client, log logging.Logger) *TokenStore {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TokenStore{db: db, refreshURL: refreshURL, httpClient: httpClient, log: log}
}

func (s *TokenStore) stateRepo() storage.Repository {
	return storage.NewSQLiteRepository(s.db)
}

// Access returns the stored access token, or "" when none is stored.
func (s *TokenStore) Access(ctx context.Context) (string, error) {
	v, err := s.stateRepo().Get(ctx, storage.KeyAccessToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// GetValid returns the current access token if present and unexpired, and ""
// otherwise. Callers decide whether to refresh.
func (s *TokenStore) GetValid(ctx context.Context) (string, error) {
	token, err := s.Access(ctx)
	if err != nil {
		return "", err
	}
	if token == "" || IsExpired(token) {
		return "", nil
	}
	return token, nil
}

// Save persists the token pair atomically.
func (s *TokenStore) Save(ctx context.Context, access, refresh string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := storage.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, storage.KeyAccessToken, []byte(access)); err != nil {
			return err
		}
		return repo.Set(ctx, storage.KeyRefreshToken, []byte(refresh))
	})
}

// Clear removes both tokens.
func (s *TokenStore) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := storage.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, storage.KeyAccessToken); err != nil {
			return err
		}
		return repo.Delete(ctx, storage.KeyRefreshToken)
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Refresh exchanges the stored refresh token for a new access token.
// Concurrent callers share a single in-flight exchange. On any failure both
// tokens are cleared and the error wraps common.ErrAuthentication: the
// caller must send the user back to login.
func (s *TokenStore) Refresh(ctx context.Context) (string, error) {
	v, err, _ := s.sfg.Do("refresh", func() (any, error) {
		return s.doRefresh(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *TokenStore) doRefresh(ctx context.Context) (string, error) {
	refresh, err := s.stateRepo().Get(ctx, storage.KeyRefreshToken)
	if err != nil {
		return "", err
	}
	if len(refresh) == 0 {
		return "", fmt.Errorf("no refresh token stored: %w", common.ErrAuthentication)
	}

	body, err := json.Marshal(refreshRequest{Refresh: string(refresh)})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.refreshURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", s.reject(ctx, fmt.Errorf("token refresh failed: %w", common.ErrAuthentication))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", s.reject(ctx, fmt.Errorf("token refresh rejected (%d): %w", resp.StatusCode, common.ErrAuthentication))
	}

	var rr refreshResponse
	if err := json.Unmarshal(mustReadAll(resp.Body), &rr); err != nil || rr.Access == "" {
		return "", s.reject(ctx, fmt.Errorf("token refresh returned no access token: %w", common.ErrAuthentication))
	}

	// The backend may rotate the refresh token; keep the old one otherwise.
	newRefresh := rr.Refresh
	if newRefresh == "" {
		newRefresh = string(refresh)
	}
	if err := s.Save(ctx, rr.Access, newRefresh); err != nil {
		return "", err
	}

	s.log.Info(ctx, "access token refreshed")
	return rr.Access, nil
}

// reject clears the stored pair and passes err through.
func (s *TokenStore) reject(ctx context.Context, err error) error {
	if clearErr := s.Clear(ctx); clearErr != nil {
		s.log.Error(ctx, "failed to clear tokens after refresh failure", "error", clearErr)
	}
	return err
}

func mustReadAll(r io.Reader) []byte {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil
	}
	return b
}
