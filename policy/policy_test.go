package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		description string
		policy      *Policy
		agentName   string
		expect      string
	}{
		{
			description: "nil policy defaults to review",
			policy:      nil,
			agentName:   "planner",
			expect:      OutcomeReview,
		},
		{
			description: "auto approve match",
			policy:      &Policy{AutoApprove: []string{"reporter"}},
			agentName:   "reporter",
			expect:      OutcomeApprove,
		},
		{
			description: "match is case-insensitive",
			policy:      &Policy{AutoApprove: []string{"Reporter"}},
			agentName:   "rePorter",
			expect:      OutcomeApprove,
		},
		{
			description: "reject list has priority",
			policy:      &Policy{AutoApprove: []string{"planner"}, AutoReject: []string{"planner"}},
			agentName:   "planner",
			expect:      OutcomeReject,
		},
		{
			description: "unmatched agent requires review",
			policy:      &Policy{AutoApprove: []string{"reporter"}},
			agentName:   "planner",
			expect:      OutcomeReview,
		},
		{
			description: "decide fallback is consulted",
			policy: &Policy{Decide: func(_ context.Context, agentName, _ string, _ *Policy) string {
				if agentName == "janitor" {
					return OutcomeApprove
				}
				return OutcomeReview
			}},
			agentName: "janitor",
			expect:    OutcomeApprove,
		},
	}

	for _, testCase := range testCases {
		actual := testCase.policy.Evaluate(ctx, testCase.agentName, "")
		assert.Equal(t, testCase.expect, actual, testCase.description)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	assert.Nil(t, ToConfig(nil))
	assert.Nil(t, FromConfig(nil))

	original := &Policy{AutoApprove: []string{"a"}, AutoReject: []string{"b"}}
	restored := FromConfig(ToConfig(original))
	assert.Equal(t, original.AutoApprove, restored.AutoApprove)
	assert.Equal(t, original.AutoReject, restored.AutoReject)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	p := &Policy{AutoApprove: []string{"a"}}
	ctx := WithPolicy(context.Background(), p)
	assert.Same(t, p, FromContext(ctx))
}
