//go:generate go run go.uber.org/mock/mockgen -source=subscription.go -destination=../mocks/mock_subscription.go -package=mocks
package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Result is a full recomputed query result. Pushes always carry the
// complete result, never a delta, so a subscriber's latest push is
// always consistent with the latest committed write it covers.
type Result any

// Query recomputes the read this subscription serves.
type Query func(ctx context.Context) (Result, error)

// ResultSink receives recomputed results. Consume is called on the
// write path and must not block indefinitely.
type ResultSink interface {
	Consume(ctx context.Context, result Result) error
}

// Subscription is one active read query with its dependency set.
type Subscription struct {
	ID    uuid.UUID
	deps  []Dependency
	query Query
	sink  ResultSink

	// deliverMu serializes deliveries and lets cancellation wait out an
	// in-flight one.
	deliverMu sync.Mutex
}

// Handle is the cancellable side of an active subscription. After
// Cancel returns, no further pushes occur and all tracking state for
// the subscription is released.
type Handle struct {
	ID     uuid.UUID
	broker *Broker
}

func (h *Handle) Cancel() {
	h.broker.unsubscribe(h.ID)
}
