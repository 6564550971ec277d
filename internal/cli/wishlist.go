package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mvaldeb/tienda/internal/common"
)

func (a *App) showWishlist(ctx context.Context) error {
	if err := a.wishlist.Load(ctx); err != nil {
		return err
	}
	items := a.wishlist.Items()
	if len(items) == 0 {
		printlnFn("wishlist is empty")
		return nil
	}
	for _, item := range items {
		printlnFn(fmt.Sprintf("#%d  %s  %s", item.ID, item.Product.Name, item.Product.EffectivePrice()))
	}
	return nil
}

func (a *App) toggleWishlist(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: toggle <product>: %w", common.ErrValidation)
	}
	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad product id %q: %w", args[0], common.ErrValidation)
	}

	if err := a.wishlist.Toggle(ctx, productID); err != nil {
		return err
	}
	if a.wishlist.Contains(productID) {
		printlnFn("added to wishlist")
	} else {
		printlnFn("removed from wishlist")
	}
	return nil
}

func (a *App) removeFromWishlist(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: wishrm <item>: %w", common.ErrValidation)
	}
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad item id %q: %w", args[0], common.ErrValidation)
	}

	if err := a.wishlist.Remove(ctx, itemID); err != nil {
		return err
	}
	printlnFn("removed from wishlist")
	return nil
}
