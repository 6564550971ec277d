package models

// PaymentPreference is the payment collaborator's server-side object for one
// checkout attempt. Ephemeral: referenced while the widget is mounted,
// never persisted.
type PaymentPreference struct {
	PreferenceID     string `json:"preference_id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point,omitempty"`
}

// PaymentStatus is the user-facing classification of a payment attempt,
// derived one-way from the provider's response.
type PaymentStatus string

const (
	PaymentStatusVerifying PaymentStatus = "verifying"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusUnknown   PaymentStatus = "unknown"
	PaymentStatusError     PaymentStatus = "error"
)

// IsTerminal reports whether no further resolution can change the status.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusRejected
}

func (s PaymentStatus) String() string {
	return string(s)
}
