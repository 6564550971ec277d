// Package cli is the interactive shell over the storefront client core. It
// plays the role of the original page layer: wiring, command dispatch, and
// interpreting outcomes (including the "redirect to login" signal) that the
// core returns instead of performing navigation side effects itself.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/mvaldeb/tienda/internal/api"
	"github.com/mvaldeb/tienda/internal/auth"
	"github.com/mvaldeb/tienda/internal/checkout"
	"github.com/mvaldeb/tienda/internal/config"
	"github.com/mvaldeb/tienda/internal/logging"
	"github.com/mvaldeb/tienda/internal/payment"
	"github.com/mvaldeb/tienda/internal/session"
	"github.com/mvaldeb/tienda/internal/storage"
)

type App struct {
	cfg      *config.Config
	db       *sql.DB
	tokens   *auth.TokenStore
	gw       *api.Gateway
	cart     *session.CartManager
	wishlist *session.WishlistManager
	checkout *checkout.Orchestrator
	payments *payment.Client
	resolver *payment.Resolver
	log      logging.Logger
	reader   *bufio.Reader

	// loggedIn is read by the command loop and written by the sweeper
	// callback, so plain bool access would race.
	loggedIn atomic.Bool
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, cfg.StoragePath)
	if err != nil {
		return nil, err
	}

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	tokens := auth.NewTokenStore(db, cfg.BaseURL+"/auth/token/refresh", nil, log)

	gw, err := api.NewGateway(cfg.BaseURL, cfg.HTTPTimeout, tokens, log)
	if err != nil {
		return nil, err
	}

	payments := payment.NewClient(gw, log)
	cart := session.NewCartManager(gw, db, log)
	wishlist := session.NewWishlistManager(gw, tokens, log)
	orchestrator := checkout.NewOrchestrator(gw, cart, payments, &consoleWidget{}, cfg.PaymentPublicKey, log)

	a := &App{
		cfg:      cfg,
		db:       db,
		tokens:   tokens,
		gw:       gw,
		cart:     cart,
		wishlist: wishlist,
		checkout: orchestrator,
		payments: payments,
		resolver: payment.NewResolver(payments),
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
	}

	// Resume a previous session when a usable token pair survived.
	token, err := tokens.GetValid(ctx)
	if err == nil && token != "" {
		a.loggedIn.Store(true)
		_ = cart.SetAuthenticated(ctx, true)
	}

	return a, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run starts the auth sweeper scoped to ctx and enters the command loop.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sweeper := auth.NewSweeper(a.tokens, a.onSessionExpired, a.log)
	go sweeper.Run(ctx, a.cfg.SweepInterval)

	a.repl(ctx)
}
