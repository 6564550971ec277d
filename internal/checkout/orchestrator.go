// Package checkout sequences order preparation and payment preference
// creation. The authenticated path creates a server-side order first and
// scopes the preference to its id; the guest path defers order creation
// until the payment is confirmed, scoping the preference to the guest
// session key so no unpaid orphan orders accumulate.
package checkout

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mvaldeb/tienda/internal/api"
	"github.com/mvaldeb/tienda/internal/common"
	"github.com/mvaldeb/tienda/internal/logging"
	"github.com/mvaldeb/tienda/internal/models"
	"github.com/mvaldeb/tienda/internal/payment"
	"github.com/mvaldeb/tienda/internal/session"
)

// Delivery pricing. Pickup is always free; delivery is free from the
// threshold up, flat fee below it.
var (
	freeShippingThreshold = decimal.NewFromInt(50000)
	deliveryFee           = decimal.NewFromInt(3500)
)

// ShippingCost returns the delivery surcharge for a cart total.
func ShippingCost(cartTotal decimal.Decimal, method models.DeliveryMethod) decimal.Decimal {
	if method == models.DeliveryMethodPickup {
		return decimal.Zero
	}
	if cartTotal.GreaterThanOrEqual(freeShippingThreshold) {
		return decimal.Zero
	}
	return deliveryFee
}

// Form is the stage-1 output: confirmed contact and delivery selection.
// Prefilled is true when the data came from the authenticated user's stored
// profile rather than manual entry.
type Form struct {
	Contact        models.GuestContact
	DeliveryMethod models.DeliveryMethod
	Prefilled      bool
}

// Intent is the stage-2 output: everything stage 3 needs to mount the
// payment widget. Exactly one of OrderID/SessionKey is set.
type Intent struct {
	OrderID    int64
	SessionKey string
	Guest      bool
	Total      decimal.Decimal
	Preference models.PaymentPreference
}

type Orchestrator struct {
	gw        *api.Gateway
	cart      *session.CartManager
	payments  *payment.Client
	widget    WidgetRenderer
	publicKey string
	log       logging.Logger
}

func NewOrchestrator(gw *api.Gateway, cart *session.CartManager, payments *payment.Client, widget WidgetRenderer, publicKey string, log logging.Logger) *Orchestrator {
	return &Orchestrator{gw: gw, cart: cart, payments: payments, widget: widget, publicKey: publicKey, log: log}
}

// PrefillForm builds the stage-1 form. Authenticated identities skip manual
// entry: the stored profile is fetched and used as-is. Guests get whatever
// identity was persisted by an earlier AddItemAsGuest, or an empty form.
func (o *Orchestrator) PrefillForm(ctx context.Context) (Form, error) {
	if o.cart.Authenticated() {
		resp, err := o.gw.Do(ctx, http.MethodGet, "/users/profile", nil, api.Options{RequireAuth: true})
		if err != nil {
			return Form{}, err
		}
		var profile models.UserProfile
		if err := resp.Decode(&profile); err != nil {
			return Form{}, err
		}
		return Form{
			Contact: models.GuestContact{
				Name:    profile.Name,
				Email:   profile.Email,
				Phone:   profile.Phone,
				Address: profile.Address,
			},
			DeliveryMethod: models.DeliveryMethodDelivery,
			Prefilled:      true,
		}, nil
	}

	guest, err := o.cart.StoredGuest(ctx)
	if err != nil {
		return Form{}, err
	}
	form := Form{DeliveryMethod: models.DeliveryMethodDelivery}
	if guest != nil {
		form.Contact = guest.Contact
		if guest.DeliveryMethod != "" {
			form.DeliveryMethod = guest.DeliveryMethod
		}
	}
	return form, nil
}

type createOrderRequest struct {
	DeliveryMethod models.DeliveryMethod `json:"delivery_method"`
}

type createOrderResponse struct {
	OrderID int64           `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

type guestPrepareRequest struct {
	models.GuestContact
	DeliveryMethod models.DeliveryMethod `json:"delivery_method"`
	SessionKey     string                `json:"session_key,omitempty"`
}

type guestPrepareResponse struct {
	SessionKey string          `json:"session_key"`
	Total      decimal.Decimal `json:"total"`
}

// Begin runs stage 2 from scratch: order preparation plus preference
// request. It is invoked automatically after the form stage, with no
// separate user-triggered submit in between. Any failure surfaces whole;
// the retry action re-runs Begin entirely. The collaborator deduplicates
// preference creation per order/session key, so there is no partial resume
// to manage.
func (o *Orchestrator) Begin(ctx context.Context, form Form) (*Intent, error) {
	if o.cart.Authenticated() {
		return o.beginUser(ctx, form)
	}
	return o.beginGuest(ctx, form)
}

func (o *Orchestrator) beginUser(ctx context.Context, form Form) (*Intent, error) {
	resp, err := o.gw.Do(ctx, http.MethodPost, "/orders", createOrderRequest{DeliveryMethod: form.DeliveryMethod}, api.Options{RequireAuth: true})
	if err != nil {
		return nil, err
	}
	var order createOrderResponse
	if err := resp.Decode(&order); err != nil {
		return nil, err
	}
	if order.OrderID == 0 {
		return nil, fmt.Errorf("order creation returned no order id: %w", common.ErrServer)
	}

	pref, err := o.payments.CreatePreference(ctx, payment.PreferenceRef{OrderID: strconv.FormatInt(order.OrderID, 10)})
	if err != nil {
		return nil, err
	}

	o.log.Info(ctx, "checkout prepared", "order_id", order.OrderID)
	return &Intent{OrderID: order.OrderID, Total: order.Total, Preference: pref}, nil
}

func (o *Orchestrator) beginGuest(ctx context.Context, form Form) (*Intent, error) {
	key, err := o.cart.SessionKey(ctx)
	if err != nil {
		return nil, err
	}

	req := guestPrepareRequest{GuestContact: form.Contact, DeliveryMethod: form.DeliveryMethod, SessionKey: key}
	resp, err := o.gw.Do(ctx, http.MethodPost, "/orders/guest/prepare", req, api.Options{})
	if err != nil {
		return nil, err
	}
	var prep guestPrepareResponse
	if err := resp.Decode(&prep); err != nil {
		return nil, err
	}
	if prep.SessionKey == "" {
		return nil, fmt.Errorf("guest payment preparation returned no session key: %w", common.ErrServer)
	}

	pref, err := o.payments.CreatePreference(ctx, payment.PreferenceRef{SessionKey: prep.SessionKey})
	if err != nil {
		return nil, err
	}

	o.log.Info(ctx, "guest checkout prepared", "session_key", prep.SessionKey)
	return &Intent{SessionKey: prep.SessionKey, Guest: true, Total: prep.Total, Preference: pref}, nil
}

// Mount runs stage 3: bind the hosted widget to the prepared preference.
// Widget failures classify as payment-integration errors, surfaced as a
// general checkout error with retry.
func (o *Orchestrator) Mount(ctx context.Context, intent *Intent) error {
	if err := o.widget.Render(ctx, o.publicKey, intent.Preference.PreferenceID); err != nil {
		return fmt.Errorf("widget render failed: %v: %w", err, common.ErrPaymentIntegration)
	}
	return nil
}

// Run executes stages 2 and 3 in sequence. A failure anywhere means the
// caller retries Run with the same form.
func (o *Orchestrator) Run(ctx context.Context, form Form) (*Intent, error) {
	intent, err := o.Begin(ctx, form)
	if err != nil {
		return nil, err
	}
	if err := o.Mount(ctx, intent); err != nil {
		return nil, err
	}
	return intent, nil
}
