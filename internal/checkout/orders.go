package checkout

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/mvaldeb/tienda/internal/api"
)

// OrderSummary is one row of the authenticated user's order history.
type OrderSummary struct {
	ID        int64           `json:"id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt string          `json:"created_at"`
}

// OrderHistory lists the authenticated user's past orders, newest first as
// returned by the backend. Guests have no history: orders created through
// the guest flow belong to no account.
func (o *Orchestrator) OrderHistory(ctx context.Context) ([]OrderSummary, error) {
	resp, err := o.gw.Do(ctx, http.MethodGet, "/orders", nil, api.Options{RequireAuth: true})
	if err != nil {
		return nil, err
	}
	var orders []OrderSummary
	if err := resp.Decode(&orders); err != nil {
		return nil, err
	}
	return orders, nil
}
