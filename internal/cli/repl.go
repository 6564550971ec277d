package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mvaldeb/tienda/internal/common"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

func (a *App) prompt() string {
	if a.loggedIn.Load() {
		return "tienda (user)> "
	}
	return "tienda (guest)> "
}

// repl reads a line, parses the first token as the command, and dispatches.
// Exits on EOF or "exit"/"quit".
func (a *App) repl(ctx context.Context) {
	printlnFn("tienda shell (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(a.prompt())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			a.printHelp()
		case "login":
			err = a.login(ctx)
		case "logout":
			err = a.logout(ctx)
		case "cart":
			err = a.showCart(ctx)
		case "add":
			err = a.addToCart(ctx, args)
		case "qty":
			err = a.updateQuantity(ctx, args)
		case "rm":
			err = a.removeFromCart(ctx, args)
		case "clear":
			err = a.clearCart(ctx)
		case "wish":
			err = a.showWishlist(ctx)
		case "toggle":
			err = a.toggleWishlist(ctx, args)
		case "wishrm":
			err = a.removeFromWishlist(ctx, args)
		case "checkout":
			err = a.runCheckout(ctx)
		case "orders":
			err = a.showOrders(ctx)
		case "paystatus":
			err = a.payStatus(ctx, args)
		case "exit", "quit":
			return
		default:
			printlnFn("unknown command:", cmd)
		}

		if err != nil {
			a.handleErr(ctx, err)
		}
	}
}

func (a *App) printHelp() {
	printlnFn("Commands: login, logout, cart, add <product> [qty], qty <item> <n>, rm <item>, clear, wish, toggle <product>, wishrm <item>, checkout, orders, paystatus [path] [status] [payment-id], exit")
}

// handleErr is the single top-level handler the error taxonomy bubbles to.
// Authentication failures clear auth state and signal the login redirect;
// everything else is shown and left to the user to retry.
func (a *App) handleErr(ctx context.Context, err error) {
	switch {
	case errors.Is(err, common.ErrAuthentication):
		a.onSessionExpired()
		printlnFn("session expired, please log in again")
	case errors.Is(err, common.ErrValidation):
		printlnFn("invalid input:", err)
	case errors.Is(err, common.ErrNetwork):
		printlnFn("network problem, try again:", err)
	default:
		printlnFn("error:", err)
	}
}

func (a *App) onSessionExpired() {
	a.loggedIn.Store(false)
	ctx := context.Background()
	_ = a.tokens.Clear(ctx)
	_ = a.cart.SetAuthenticated(ctx, false)
}
