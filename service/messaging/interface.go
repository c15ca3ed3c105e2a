// Package messaging defines the abstract queue used to hand approval events
// to the workflow orchestrator. Delivery is at-least-once: a message stays
// in flight until acknowledged, and a Nack requeues it up to the configured
// retry limit.
package messaging

import (
	"context"
)

// Vendor represents the name of a queue implementation.
type Vendor string

const (
	// VendorMemory selects the in-process channel-backed queue.
	VendorMemory Vendor = "memory"

	// VendorFS selects the filesystem-backed queue.
	VendorFS Vendor = "fs"
)

// Queue represents an abstract message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue.
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing of this message.
	Ack() error

	// Nack indicates failure in processing this message.
	Nack(err error) error
}
