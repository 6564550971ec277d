package models

// UserProfile is the stored contact profile of an authenticated user, used
// to prefill the checkout contact stage.
type UserProfile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
