// Package payment talks to the external payment collaborator through the
// backend: preference creation per checkout attempt, live payment lookup,
// and classification of redirect-return state into a user-facing status.
package payment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mvaldeb/tienda/internal/api"
	"github.com/mvaldeb/tienda/internal/common"
	"github.com/mvaldeb/tienda/internal/logging"
	"github.com/mvaldeb/tienda/internal/models"
)

// PreferenceRef scopes a payment preference to exactly one of an existing
// order (authenticated flow) or a guest session key (order deferred until
// payment confirmation).
type PreferenceRef struct {
	OrderID    string
	SessionKey string
}

type createPreferenceRequest struct {
	OrderID    string `json:"order_id,omitempty"`
	SessionKey string `json:"session_key,omitempty"`
}

// Payment is the backend's view of one provider payment.
type Payment struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Client struct {
	gw  *api.Gateway
	log logging.Logger
}

func NewClient(gw *api.Gateway, log logging.Logger) *Client {
	return &Client{gw: gw, log: log}
}

// CreatePreference asks the collaborator for a payment preference. The
// collaborator deduplicates creation per order/session key, so re-running a
// failed checkout stage is safe.
func (c *Client) CreatePreference(ctx context.Context, ref PreferenceRef) (models.PaymentPreference, error) {
	if (ref.OrderID == "") == (ref.SessionKey == "") {
		return models.PaymentPreference{}, fmt.Errorf("preference needs exactly one of order id or session key: %w", common.ErrValidation)
	}

	req := createPreferenceRequest{OrderID: ref.OrderID, SessionKey: ref.SessionKey}
	resp, err := c.gw.Do(ctx, http.MethodPost, "/payments/create-preference", req, api.Options{})
	if err != nil {
		return models.PaymentPreference{}, err
	}

	var pref models.PaymentPreference
	if err := resp.Decode(&pref); err != nil {
		return models.PaymentPreference{}, err
	}
	if pref.PreferenceID == "" {
		return models.PaymentPreference{}, fmt.Errorf("collaborator returned no preference id: %w", common.ErrPaymentIntegration)
	}

	c.log.Info(ctx, "payment preference created", "preference_id", pref.PreferenceID)
	return pref, nil
}

// VerifyPayment fetches the live provider status for a payment identifier.
// Works for both authenticated and guest identities: the bearer token is
// attached best-effort only.
func (c *Client) VerifyPayment(ctx context.Context, paymentID string) (Payment, error) {
	resp, err := c.gw.Do(ctx, http.MethodGet, "/payments/"+paymentID, nil, api.Options{})
	if err != nil {
		return Payment{}, err
	}

	var p Payment
	if err := resp.Decode(&p); err != nil {
		return Payment{}, err
	}
	return p, nil
}
