package approval

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.False(t, StatusPending.Terminal())
	for _, status := range []Status{StatusApproved, StatusRejected, StatusExpired, StatusCanceled} {
		assert.True(t, status.Valid(), string(status))
		assert.True(t, status.Terminal(), string(status))
	}
	assert.False(t, Status("unknown").Valid())
	assert.False(t, Status("unknown").Terminal())
}

func TestCanTransition(t *testing.T) {
	type testCase struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}

	tests := []testCase{
		{name: "pending to approved", from: StatusPending, to: StatusApproved, allowed: true},
		{name: "pending to rejected", from: StatusPending, to: StatusRejected, allowed: true},
		{name: "pending to expired", from: StatusPending, to: StatusExpired, allowed: true},
		{name: "pending to canceled", from: StatusPending, to: StatusCanceled, allowed: true},
		{name: "pending to pending", from: StatusPending, to: StatusPending, allowed: false},
		{name: "terminal states absorb", from: StatusApproved, to: StatusExpired, allowed: false},
		{name: "expired stays expired", from: StatusExpired, to: StatusApproved, allowed: false},
		{name: "unknown target", from: StatusPending, to: Status("junk"), allowed: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
		})
	}
}

func TestNewRequestValidate(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	type testCase struct {
		name    string
		request *NewRequest
		valid   bool
	}

	tests := []testCase{
		{
			name: "valid request",
			request: &NewRequest{
				WorkflowID: "wf-1", AgentName: "planner",
				TaskDescription: "deploy to production", ExpiresAt: now.Add(time.Hour),
			},
			valid: true,
		},
		{
			name:    "missing workflow id",
			request: &NewRequest{AgentName: "planner", ExpiresAt: now.Add(time.Hour)},
		},
		{
			name:    "missing agent name",
			request: &NewRequest{WorkflowID: "wf-1", ExpiresAt: now.Add(time.Hour)},
		},
		{
			name:    "expiry equals creation time",
			request: &NewRequest{WorkflowID: "wf-1", AgentName: "planner", ExpiresAt: now},
		},
		{
			name:    "expiry in the past",
			request: &NewRequest{WorkflowID: "wf-1", AgentName: "planner", ExpiresAt: now.Add(-time.Hour)},
		},
		{
			name: "oversized description",
			request: &NewRequest{
				WorkflowID: "wf-1", AgentName: "planner",
				TaskDescription: strings.Repeat("x", MaxTaskDescription+1),
				ExpiresAt:       now.Add(time.Hour),
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.request.Validate(now)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestRequestOverdue(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pending := &Request{Status: StatusPending, ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, pending.Overdue(now))

	notDue := &Request{Status: StatusPending, ExpiresAt: now.Add(2 * time.Hour)}
	assert.False(t, notDue.Overdue(now))

	// deadline exactly at now is not overdue yet
	boundary := &Request{Status: StatusPending, ExpiresAt: now}
	assert.False(t, boundary.Overdue(now))

	decided := &Request{Status: StatusApproved, ExpiresAt: now.Add(-time.Hour)}
	assert.False(t, decided.Overdue(now))
}
