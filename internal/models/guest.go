package models

// DeliveryMethod selects how an order is fulfilled.
type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

// GuestContact is the contact block a guest supplies at checkout.
type GuestContact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// GuestIdentity describes an unauthenticated shopper: the server-issued
// session key the anonymous cart is bound to, plus locally retained contact
// data. It exists only while unauthenticated; a successful login migrates the
// server-side cart once and discards the local identity.
type GuestIdentity struct {
	SessionKey     string         `json:"session_key"`
	Contact        GuestContact   `json:"contact"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
}
