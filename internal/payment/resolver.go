package payment

import (
	"context"
	"strings"

	"github.com/mvaldeb/tienda/internal/models"
)

// Verifier is the live-lookup dependency of the resolver. *Client satisfies
// it.
type Verifier interface {
	VerifyPayment(ctx context.Context, paymentID string) (Payment, error)
}

// ReturnInfo carries what the provider redirect left behind: the local
// return path, the provider's query-string statuses, and the payment
// identifier usable for a live lookup.
type ReturnInfo struct {
	Path             string
	Status           string
	CollectionStatus string
	PaymentID        string
}

// Resolver classifies a redirect return into a PaymentStatus. Pure
// precedence: an explicit path hint wins over query-string statuses, which
// win over a live fetch by payment id. Anything unmapped is unknown, never
// silently approved or rejected.
type Resolver struct {
	verifier Verifier
}

func NewResolver(verifier Verifier) *Resolver {
	return &Resolver{verifier: verifier}
}

// Resolve returns exactly one status for any input.
func (r *Resolver) Resolve(ctx context.Context, info ReturnInfo) models.PaymentStatus {
	if s, ok := classifyPath(info.Path); ok {
		return s
	}

	if info.Status != "" || info.CollectionStatus != "" {
		if s := ClassifyProviderStatus(info.Status); s != models.PaymentStatusUnknown {
			return s
		}
		return ClassifyProviderStatus(info.CollectionStatus)
	}

	if info.PaymentID != "" && r.verifier != nil {
		p, err := r.verifier.VerifyPayment(ctx, info.PaymentID)
		if err != nil {
			return models.PaymentStatusError
		}
		return ClassifyProviderStatus(p.Status)
	}

	return models.PaymentStatusUnknown
}

func classifyPath(path string) (models.PaymentStatus, bool) {
	switch {
	case strings.Contains(path, "/success"):
		return models.PaymentStatusApproved, true
	case strings.Contains(path, "/failure"):
		return models.PaymentStatusRejected, true
	case strings.Contains(path, "/pending"):
		return models.PaymentStatusPending, true
	default:
		return models.PaymentStatusUnknown, false
	}
}

// ClassifyProviderStatus maps a provider status string to the user-facing
// enum. The mapping is one-way and total: unrecognized statuses are unknown.
func ClassifyProviderStatus(status string) models.PaymentStatus {
	switch status {
	case "approved":
		return models.PaymentStatusApproved
	case "rejected", "cancelled":
		return models.PaymentStatusRejected
	case "pending", "in_process", "in_mediation":
		return models.PaymentStatusPending
	default:
		return models.PaymentStatusUnknown
	}
}
