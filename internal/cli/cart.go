package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mvaldeb/tienda/internal/common"
	"github.com/mvaldeb/tienda/internal/models"
)

func (a *App) showCart(ctx context.Context) error {
	if err := a.cart.Load(ctx); err != nil {
		return err
	}
	items := a.cart.Items()
	if len(items) == 0 {
		printlnFn("cart is empty")
		return nil
	}
	for _, item := range items {
		line := fmt.Sprintf("#%d  %s  x%d  @%s  = %s", item.ID, item.Product.Name, item.Quantity, item.UnitPrice, item.Subtotal)
		if item.Product.OnOffer() {
			line += "  (offer)"
		}
		printlnFn(line)
	}
	s := a.cart.Summary()
	printlnFn(fmt.Sprintf("total: %d items, %s", s.TotalItems, s.TotalPrice))
	return nil
}

func (a *App) addToCart(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: add <product> [qty]: %w", common.ErrValidation)
	}
	productID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad product id %q: %w", args[0], common.ErrValidation)
	}
	qty := 1
	if len(args) > 1 {
		qty, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad quantity %q: %w", args[1], common.ErrValidation)
		}
	}

	if a.loggedIn.Load() {
		if err := a.cart.AddItem(ctx, productID, qty); err != nil {
			return err
		}
	} else {
		guest, err := a.guestIdentity(ctx)
		if err != nil {
			return err
		}
		if err := a.cart.AddItemAsGuest(ctx, productID, qty, guest); err != nil {
			return err
		}
	}
	return a.showCart(ctx)
}

// guestIdentity reuses stored guest data when present and prompts otherwise.
func (a *App) guestIdentity(ctx context.Context) (models.GuestIdentity, error) {
	stored, err := a.cart.StoredGuest(ctx)
	if err != nil {
		return models.GuestIdentity{}, err
	}
	if stored != nil {
		return *stored, nil
	}

	name, err := a.readLine("name: ")
	if err != nil {
		return models.GuestIdentity{}, err
	}
	email, err := a.readLine("email: ")
	if err != nil {
		return models.GuestIdentity{}, err
	}
	phone, err := a.readLine("phone: ")
	if err != nil {
		return models.GuestIdentity{}, err
	}
	address, err := a.readLine("address (empty for pickup): ")
	if err != nil {
		return models.GuestIdentity{}, err
	}

	method := models.DeliveryMethodDelivery
	if address == "" {
		method = models.DeliveryMethodPickup
	}
	return models.GuestIdentity{
		Contact:        models.GuestContact{Name: name, Email: email, Phone: phone, Address: address},
		DeliveryMethod: method,
	}, nil
}

func (a *App) updateQuantity(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: qty <item> <n>: %w", common.ErrValidation)
	}
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad item id %q: %w", args[0], common.ErrValidation)
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad quantity %q: %w", args[1], common.ErrValidation)
	}

	if err := a.cart.UpdateQuantity(ctx, itemID, qty); err != nil {
		return err
	}
	return a.showCart(ctx)
}

func (a *App) removeFromCart(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm <item>: %w", common.ErrValidation)
	}
	itemID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad item id %q: %w", args[0], common.ErrValidation)
	}

	if err := a.cart.RemoveItem(ctx, itemID); err != nil {
		return err
	}
	return a.showCart(ctx)
}

func (a *App) clearCart(ctx context.Context) error {
	if err := a.cart.Clear(ctx); err != nil {
		return err
	}
	printlnFn("cart cleared")
	return nil
}
