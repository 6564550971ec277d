package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvaldeb/tienda/internal/models"
)

type fakeVerifier struct {
	status string
	err    error
	calls  int
	lastID string
}

func (f *fakeVerifier) VerifyPayment(_ context.Context, paymentID string) (Payment, error) {
	f.calls++
	f.lastID = paymentID
	if f.err != nil {
		return Payment{}, f.err
	}
	return Payment{ID: paymentID, Status: f.status}, nil
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		info     ReturnInfo
		verifier *fakeVerifier
		want     models.PaymentStatus
	}{
		{
			name: "success path wins over contradicting query",
			info: ReturnInfo{Path: "/pago/success", Status: "rejected"},
			want: models.PaymentStatusApproved,
		},
		{
			name: "failure path",
			info: ReturnInfo{Path: "/pago/failure"},
			want: models.PaymentStatusRejected,
		},
		{
			name: "pending path",
			info: ReturnInfo{Path: "/pago/pending"},
			want: models.PaymentStatusPending,
		},
		{
			name: "query status without path hint",
			info: ReturnInfo{Path: "/pago/retorno", Status: "approved"},
			want: models.PaymentStatusApproved,
		},
		{
			name: "collection_status fallback when status is unmapped",
			info: ReturnInfo{Path: "/pago/retorno", Status: "garbage", CollectionStatus: "in_process"},
			want: models.PaymentStatusPending,
		},
		{
			name:     "payment id triggers live lookup",
			info:     ReturnInfo{Path: "/pago/retorno", PaymentID: "123"},
			verifier: &fakeVerifier{status: "approved"},
			want:     models.PaymentStatusApproved,
		},
		{
			name:     "failed lookup is error, not unknown",
			info:     ReturnInfo{Path: "/pago/retorno", PaymentID: "123"},
			verifier: &fakeVerifier{err: errors.New("backend down")},
			want:     models.PaymentStatusError,
		},
		{
			name: "nothing usable is unknown",
			info: ReturnInfo{Path: "/pago/retorno"},
			want: models.PaymentStatusUnknown,
		},
		{
			name:     "query statuses suppress the live lookup",
			info:     ReturnInfo{Path: "/pago/retorno", Status: "pending", PaymentID: "123"},
			verifier: &fakeVerifier{status: "approved"},
			want:     models.PaymentStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.verifier)
			got := r.Resolve(ctx, tt.info)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_QueryStatusesNeverFallThroughToLookup(t *testing.T) {
	v := &fakeVerifier{status: "approved"}
	r := NewResolver(v)

	got := r.Resolve(context.Background(), ReturnInfo{
		Path:      "/pago/retorno",
		Status:    "garbage",
		PaymentID: "123",
	})
	require.Equal(t, models.PaymentStatusUnknown, got, "unmapped query statuses resolve to unknown")
	require.Zero(t, v.calls, "a present query status decides, even when unmapped")
}

func TestClassifyProviderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.PaymentStatus
	}{
		{"approved", models.PaymentStatusApproved},
		{"rejected", models.PaymentStatusRejected},
		{"cancelled", models.PaymentStatusRejected},
		{"pending", models.PaymentStatusPending},
		{"in_process", models.PaymentStatusPending},
		{"in_mediation", models.PaymentStatusPending},
		{"", models.PaymentStatusUnknown},
		{"charged_back", models.PaymentStatusUnknown},
		{"APPROVED", models.PaymentStatusUnknown},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ClassifyProviderStatus(tt.in), "status %q", tt.in)
	}
}

func TestClassifyProviderStatus_NeverApprovesUnrecognized(t *testing.T) {
	for _, s := range []string{"", "ok", "success", "done", "authorized", "refunded"} {
		require.NotEqual(t, models.PaymentStatusApproved, ClassifyProviderStatus(s), "status %q", s)
	}
}

func TestPaymentStatus_IsTerminal(t *testing.T) {
	require.True(t, models.PaymentStatusApproved.IsTerminal())
	require.True(t, models.PaymentStatusRejected.IsTerminal())
	require.False(t, models.PaymentStatusPending.IsTerminal())
	require.False(t, models.PaymentStatusVerifying.IsTerminal())
	require.False(t, models.PaymentStatusUnknown.IsTerminal())
}
