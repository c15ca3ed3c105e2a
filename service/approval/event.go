package approval

import "time"

// Event is the envelope published on the approval event queue.
type Event struct {
	Topic   string            `json:"topic"`
	Data    interface{}       `json:"data,omitempty"`    // *Request | *Decision | *Expiry
	Headers map[string]string `json:"headers,omitempty"` // optional - tenant, correlation-id etc.
}

// Standard event topics.
const (
	TopicRequestCreated  = "request.created"
	TopicRequestExpired  = "request.expired"
	TopicRequestCanceled = "request.canceled"
	TopicDecisionCreated = "decision.created"
)

// Expiry is the payload of a request.expired event. Delivery is
// at-least-once; consumers deduplicate on the (WorkflowID, RequestID) pair.
type Expiry struct {
	RequestID  string    `json:"requestId"`
	WorkflowID string    `json:"workflowId"`
	ExpiredAt  time.Time `json:"expiredAt"`
}
