// Package models defines the client-visible entities of the storefront:
// cart contents, wishlist entries, guest identity, and payment objects.
package models

import "github.com/shopspring/decimal"

// Product is the subset of the catalog entity referenced by cart and
// wishlist items.
//
// OfferPrice is nil when no offer is active for the product. Callers must go
// through EffectivePrice instead of checking the field at every call site.
type Product struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Price      decimal.Decimal  `json:"price"`
	OfferPrice *decimal.Decimal `json:"offer_price,omitempty"`
	Stock      int              `json:"stock"`
}

// EffectivePrice returns the offer price when an offer is active, and the
// regular price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.OfferPrice != nil {
		return *p.OfferPrice
	}
	return p.Price
}

// OnOffer reports whether an active offer applies to the product.
func (p Product) OnOffer() bool {
	return p.OfferPrice != nil
}
