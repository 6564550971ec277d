package models

// WishlistItem binds a product to the authenticated user's wishlist.
// Wishlists have no anonymous variant.
type WishlistItem struct {
	ID      int64   `json:"id"`
	Product Product `json:"product"`
}

// WishlistSummary is the server-computed aggregate over the wishlist.
type WishlistSummary struct {
	TotalItems int `json:"total_items"`
}
