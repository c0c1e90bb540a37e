package subscription

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Broker is the observer registry of the reactive layer. It indexes
// subscriptions by dependency tuple; writes invalidate by tuple, never
// by polling.
//
// Broker is safe for concurrent use by multiple goroutines.
type Broker struct {
	mu            sync.RWMutex
	log           *slog.Logger
	subscriptions map[uuid.UUID]*Subscription
	byDependency  map[Dependency]map[uuid.UUID]*Subscription
}

func NewBroker(log *slog.Logger) *Broker {
	return &Broker{
		log:           log,
		subscriptions: make(map[uuid.UUID]*Subscription),
		byDependency:  make(map[Dependency]map[uuid.UUID]*Subscription),
	}
}

// Subscribe registers the query against its dependency set, computes
// it once and pushes the initial result. The returned handle stops all
// future pushes when cancelled.
func (b *Broker) Subscribe(ctx context.Context, deps []Dependency, query Query, sink ResultSink) (*Handle, error) {
	sub := &Subscription{ID: uuid.New(), deps: deps, query: query, sink: sink}

	b.mu.Lock()
	b.subscriptions[sub.ID] = sub
	for _, dep := range deps {
		if _, ok := b.byDependency[dep]; !ok {
			b.byDependency[dep] = make(map[uuid.UUID]*Subscription)
		}
		b.byDependency[dep][sub.ID] = sub
	}
	b.mu.Unlock()

	if err := b.push(ctx, sub); err != nil {
		b.unsubscribe(sub.ID)
		return nil, err
	}
	return &Handle{ID: sub.ID, broker: b}, nil
}

// Invalidate recomputes and re-delivers every subscription whose
// dependency set overlaps the touched tuples. The service write path
// calls it right after a write commits, so each recompute observes the
// new state. Delivery order across subscribers is unspecified.
func (b *Broker) Invalidate(ctx context.Context, touched ...Dependency) {
	for _, sub := range b.collect(touched) {
		if err := b.push(ctx, sub); err != nil {
			b.log.Warn("subscription push failed",
				"subscription_id", sub.ID,
				"error", err)
		}
	}
}

// ActiveCount reports how many subscriptions are currently registered.
func (b *Broker) ActiveCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscriptions)
}

// collect resolves the touched tuples to the affected subscriptions,
// matching both the exact tuple and the whole-collection wildcard.
func (b *Broker) collect(touched []Dependency) []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[uuid.UUID]struct{})
	var affected []*Subscription
	for _, t := range touched {
		for _, dep := range []Dependency{t, {Collection: t.Collection}} {
			for id, sub := range b.byDependency[dep] {
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				affected = append(affected, sub)
			}
		}
	}
	return affected
}

func (b *Broker) push(ctx context.Context, sub *Subscription) error {
	result, err := sub.query(ctx)
	if err != nil {
		return err
	}

	// Delivery holds the subscription's mutex; unsubscribe takes the
	// same mutex after deregistering, so a cancel cannot complete while
	// a delivery is in flight, and a delivery that starts after the
	// cancel observes the deregistration and drops its result.
	sub.deliverMu.Lock()
	defer sub.deliverMu.Unlock()

	b.mu.RLock()
	_, active := b.subscriptions[sub.ID]
	b.mu.RUnlock()
	if !active {
		return nil
	}
	return sub.sink.Consume(ctx, result)
}

func (b *Broker) unsubscribe(id uuid.UUID) {
	b.mu.Lock()
	sub, ok := b.subscriptions[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.subscriptions, id)

	for _, dep := range sub.deps {
		members := b.byDependency[dep]
		delete(members, id)

		// No empty sets left behind to prevent memory leaks over time.
		if len(members) == 0 {
			delete(b.byDependency, dep)
		}
	}
	b.mu.Unlock()

	// Wait out an in-flight delivery before returning, so the caller
	// never sees a push after Cancel.
	sub.deliverMu.Lock()
	sub.deliverMu.Unlock()
}
