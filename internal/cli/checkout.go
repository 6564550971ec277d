package cli

import (
	"context"
	"fmt"

	"github.com/mvaldeb/tienda/internal/checkout"
	"github.com/mvaldeb/tienda/internal/payment"
)

// consoleWidget is the shell's stand-in for the hosted payment widget: it
// prints the redirect link the widget would open on submit.
type consoleWidget struct{}

func (w *consoleWidget) Render(ctx context.Context, publicKey, preferenceID string) error {
	printlnFn("payment widget ready (preference " + preferenceID + ")")
	return nil
}

func (a *App) runCheckout(ctx context.Context) error {
	if err := a.cart.Load(ctx); err != nil {
		return err
	}
	if len(a.cart.Items()) == 0 {
		printlnFn("cart is empty, nothing to check out")
		return nil
	}

	form, err := a.checkout.PrefillForm(ctx)
	if err != nil {
		return err
	}
	if !form.Prefilled && form.Contact.Email == "" {
		guest, err := a.guestIdentity(ctx)
		if err != nil {
			return err
		}
		form = checkout.Form{Contact: guest.Contact, DeliveryMethod: guest.DeliveryMethod}
	}

	shipping := checkout.ShippingCost(a.cart.Summary().TotalPrice, form.DeliveryMethod)
	printlnFn(fmt.Sprintf("shipping (%s): %s", form.DeliveryMethod, shipping))

	// Stage 2+3 run as one sequence; a failure retries the whole thing.
	intent, err := a.checkout.Run(ctx, form)
	if err != nil {
		retry, readErr := a.readLine("checkout failed, retry? [y/N]: ")
		if readErr != nil {
			return err
		}
		if retry == "y" {
			intent, err = a.checkout.Run(ctx, form)
		}
		if err != nil {
			return err
		}
	}

	printlnFn(fmt.Sprintf("order total: %s", intent.Total))
	if intent.Preference.InitPoint != "" {
		printlnFn("complete the payment at: " + intent.Preference.InitPoint)
	}
	return nil
}

func (a *App) showOrders(ctx context.Context) error {
	orders, err := a.checkout.OrderHistory(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		printlnFn("no orders yet")
		return nil
	}
	for _, o := range orders {
		printlnFn(fmt.Sprintf("#%d  %s  %s  %s", o.ID, o.Status, o.Total, o.CreatedAt))
	}
	return nil
}

// payStatus classifies a redirect return. Usage:
//
//	paystatus [path] [status] [payment-id]
func (a *App) payStatus(ctx context.Context, args []string) error {
	var info payment.ReturnInfo
	if len(args) > 0 {
		info.Path = args[0]
	}
	if len(args) > 1 {
		info.Status = args[1]
	}
	if len(args) > 2 {
		info.PaymentID = args[2]
	}

	status := a.resolver.Resolve(ctx, info)
	printlnFn("payment status: " + status.String())
	return nil
}
