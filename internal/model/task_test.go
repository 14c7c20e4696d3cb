package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func steps(completed ...int) []TaskStep {
	done := make(map[int]bool, len(completed))
	for _, n := range completed {
		done[n] = true
	}

	out := make([]TaskStep, 0, StepReviewLive)
	for n := StepOrderPlaced; n <= StepReviewLive; n++ {
		status := StepStatusPending
		if done[n] {
			status = StepStatusCompleted
		}
		out = append(out, TaskStep{StepNumber: n, Status: status})
	}
	return out
}

func TestDeriveTaskLabel(t *testing.T) {
	cases := []struct {
		name      string
		completed []int
		want      string
	}{
		{"no steps completed", nil, TaskLabelPending},
		{"step 1 only", []int{1}, TaskLabelOrderPlaced},
		{"steps 1 and 2", []int{1, 2}, TaskLabelDelivered},
		{"steps 1 to 3", []int{1, 2, 3}, TaskLabelReviewSubmitted},
		{"all four steps", []int{1, 2, 3, 4}, TaskLabelRefundCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DeriveTaskLabel(steps(tc.completed...)))
		})
	}
}

func TestDeriveTaskLabelEmptySteps(t *testing.T) {
	require.Equal(t, TaskLabelPending, DeriveTaskLabel(nil))
	require.Equal(t, TaskLabelPending, DeriveTaskLabel([]TaskStep{}))
}

func TestTaskLabelHighestStepWins(t *testing.T) {
	// label follows the highest completed step even with gaps in between
	require.Equal(t, TaskLabelRefundCompleted, DeriveTaskLabel(steps(1, 4)))
}
