package auth

import (
	"context"
	"time"

	"github.com/mvaldeb/tienda/internal/logging"
)

// Sweeper periodically checks the stored access token and clears the pair
// when it has expired while the shell sat idle. The sweep is purely local:
// no network call is ever issued from here.
type Sweeper struct {
	tokens    *TokenStore
	onExpired func()
	log       logging.Logger
}

// NewSweeper creates a sweeper over tokens. onExpired, if non-nil, runs after
// an expired pair has been cleared so the shell can drop its auth state.
func NewSweeper(tokens *TokenStore, onExpired func(), log logging.Logger) *Sweeper {
	return &Sweeper{tokens: tokens, onExpired: onExpired, log: log}
}

// Run ticks every interval until ctx is cancelled. Callers own the lifecycle:
// start it with the shell and cancel the context on shutdown.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	access, err := s.tokens.Access(ctx)
	if err != nil {
		s.log.Error(ctx, "auth sweep: failed to read access token", "error", err)
		return
	}
	if access == "" || !IsExpired(access) {
		return
	}

	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Error(ctx, "auth sweep: failed to clear expired tokens", "error", err)
		return
	}
	s.log.Info(ctx, "auth sweep: cleared expired token pair")

	if s.onExpired != nil {
		s.onExpired()
	}
}
