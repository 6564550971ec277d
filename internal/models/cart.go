package models

import "github.com/shopspring/decimal"

// CartItem is one line of the server-side cart. UnitPrice and Subtotal are
// server-computed (offers applied there) and never recalculated locally.
type CartItem struct {
	ID        int64           `json:"id"`
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartSummary is the server-computed aggregate over the cart. It is a derived
// read-only view: the client displays it verbatim and never mutates it.
type CartSummary struct {
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemsCount int             `json:"items_count"`
}
