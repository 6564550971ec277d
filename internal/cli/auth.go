package cli

import (
	"context"
	"net/http"

	"github.com/mvaldeb/tienda/internal/api"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// login authenticates against the backend and switches the cart identity,
// which triggers the one-time guest cart migration.
func (a *App) login(ctx context.Context) error {
	email, err := a.readLine("email: ")
	if err != nil {
		return err
	}
	password, err := a.readPassword("password: ")
	if err != nil {
		return err
	}

	resp, err := a.gw.Do(ctx, http.MethodPost, "/auth/token", loginRequest{Email: email, Password: string(password)}, api.Options{})
	if err != nil {
		return err
	}
	var lr loginResponse
	if err := resp.Decode(&lr); err != nil {
		return err
	}

	if err := a.tokens.Save(ctx, lr.Access, lr.Refresh); err != nil {
		return err
	}
	a.loggedIn.Store(true)

	if err := a.cart.SetAuthenticated(ctx, true); err != nil {
		return err
	}
	if err := a.wishlist.Load(ctx); err != nil {
		return err
	}
	printlnFn("logged in")
	return nil
}

// logout clears credentials and drops back to the anonymous cart.
func (a *App) logout(ctx context.Context) error {
	if err := a.tokens.Clear(ctx); err != nil {
		return err
	}
	a.loggedIn.Store(false)
	if err := a.cart.SetAuthenticated(ctx, false); err != nil {
		return err
	}
	printlnFn("logged out")
	return nil
}
