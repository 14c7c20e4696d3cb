package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaymentTransitions(t *testing.T) {
	require.True(t, CanTransitionPayment(PaymentStatusPending, PaymentStatusPaid))
	require.True(t, CanTransitionPayment(PaymentStatusPending, PaymentStatusFailed))
	require.True(t, CanTransitionPayment(PaymentStatusPaid, PaymentStatusRefunded))

	// PAID never goes back to PENDING, FAILED is terminal
	require.False(t, CanTransitionPayment(PaymentStatusPaid, PaymentStatusPending))
	require.False(t, CanTransitionPayment(PaymentStatusPaid, PaymentStatusPaid))
	require.False(t, CanTransitionPayment(PaymentStatusFailed, PaymentStatusPaid))
	require.False(t, CanTransitionPayment(PaymentStatusRefunded, PaymentStatusPaid))
}

func TestAdminTransitions(t *testing.T) {
	require.True(t, CanTransitionAdmin(AdminStatusPending, AdminStatusApproved))
	require.True(t, CanTransitionAdmin(AdminStatusPending, AdminStatusRejected))
	require.True(t, CanTransitionAdmin(AdminStatusApproved, AdminStatusCompleted))

	require.False(t, CanTransitionAdmin(AdminStatusRejected, AdminStatusApproved))
	require.False(t, CanTransitionAdmin(AdminStatusCompleted, AdminStatusApproved))
	require.False(t, CanTransitionAdmin(AdminStatusPending, AdminStatusCompleted))
}
