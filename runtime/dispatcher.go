package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/observability"
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

// Dispatcher pushes a stored message to the live connections of both participants.
//
// Delivery is at-most-once: no acknowledgment, no retry, no queue.
// A push to a missing, full or closed handle is dropped and never reported
// to the sender. For a given sender, pushes follow the order in which
// Dispatch is called.
type Dispatcher struct {
	log         *slog.Logger
	registry    contract.IPresenceRegistry
	metrics     *observability.Metrics
	sinkTimeout time.Duration
}

func NewDispatcher(log *slog.Logger, registry contract.IPresenceRegistry,
	metrics *observability.Metrics, sinkTimeout time.Duration) *Dispatcher {
	return &Dispatcher{log: log, registry: registry, metrics: metrics, sinkTimeout: sinkTimeout}
}

// Dispatch looks up the receiver then the sender.
// The sender gets an echo so that its other open tabs see the message too.
// A connection registered for both identities is pushed once.
func (d *Dispatcher) Dispatch(ctx context.Context, message domain.Message) {
	evt := event.NewMessage{Message: message}
	var pushed []domain.ConnectionID

	for _, identity := range []domain.Identity{message.To, message.From} {
		handle, ok := d.registry.Lookup(identity)
		if !ok {
			d.metrics.RecordDelivery(observability.DeliveryOffline)
			continue
		}
		if lo.Contains(pushed, handle.ConnectionID()) {
			continue
		}
		pushed = append(pushed, handle.ConnectionID())
		d.push(ctx, identity, handle, evt)
	}
}

// push detaches from the caller's cancellation: a stored message is pushed
// even when the request that sent it is already gone.
func (d *Dispatcher) push(ctx context.Context, identity domain.Identity, handle contract.Handle, evt event.DomainEvent) {
	ctx = context.WithoutCancel(ctx)
	if d.sinkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.sinkTimeout)
		defer cancel()
	}
	if err := handle.Consume(ctx, evt); err != nil {
		d.log.Debug("Push dropped",
			"identity", identity,
			"connection_id", handle.ConnectionID(),
			"error", err)
		d.metrics.RecordDelivery(observability.DeliveryDropped)
		return
	}
	d.metrics.RecordDelivery(observability.DeliveryPushed)
}
