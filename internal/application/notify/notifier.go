package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/MyDadsSoft/recoverys/internal/domain/order"
	"github.com/MyDadsSoft/recoverys/internal/domain/transport"
	"go.uber.org/zap"
)

// embedColor keeps the staff-channel notification styling of the legacy bot
const embedColor = 3735316

// Notifier announces new orders to the staff channel. Dispatch is detached
// from the order-submission response: the order is already durable when the
// notifier sees it, and a notification failure is logged, never propagated.
type Notifier struct {
	gateway        transport.Gateway
	queue          *Queue
	staffChannelID string
	logger         *zap.Logger

	// serializes drains so a readiness flap cannot start two
	drainMu sync.Mutex
}

// NewNotifier creates a Notifier sending to the given staff channel
func NewNotifier(gateway transport.Gateway, staffChannelID string, logger *zap.Logger) *Notifier {
	return &Notifier{
		gateway:        gateway,
		queue:          NewQueue(),
		staffChannelID: staffChannelID,
		logger:         logger,
	}
}

// Dispatch notifies the staff channel about a new order. When the gateway is
// not ready the order is enqueued synchronously, preserving creation order
// for the later drain; when ready the send happens on its own goroutine so
// the caller never waits on the transport.
func (n *Notifier) Dispatch(o order.Order) {
	if !n.gateway.Ready() {
		n.queue.Enqueue(o)
		n.logger.Info("gateway not ready, order queued for dispatch",
			zap.Int64("order_id", o.ID),
			zap.Int("queued", n.queue.Len()),
		)
		return
	}

	go n.send(context.Background(), o)
}

// HandleReady drains the pending queue. Called once per readiness
// false→true transition; orders are dispatched one at a time in enqueue
// order, and a failed send is logged and skipped so it cannot block the
// orders behind it.
func (n *Notifier) HandleReady(ctx context.Context) {
	n.drainMu.Lock()
	defer n.drainMu.Unlock()

	drained := 0
	for {
		o, ok := n.queue.Dequeue()
		if !ok {
			break
		}
		n.send(ctx, o)
		drained++
	}
	if drained > 0 {
		n.logger.Info("pending dispatch queue drained", zap.Int("orders", drained))
	}
}

// Pending returns the number of orders awaiting dispatch
func (n *Notifier) Pending() int {
	return n.queue.Len()
}

// send delivers one staff-channel notification, logging failure
func (n *Notifier) send(ctx context.Context, o order.Order) {
	if err := n.gateway.SendToChannel(ctx, n.staffChannelID, buildEmbed(o)); err != nil {
		n.logger.Error("failed to notify staff channel",
			zap.Int64("order_id", o.ID),
			zap.Error(err),
		)
		return
	}
	n.logger.Info("staff channel notified", zap.Int64("order_id", o.ID))
}

// buildEmbed renders the "New Order Received" notification
func buildEmbed(o order.Order) transport.OrderEmbed {
	return transport.OrderEmbed{
		Title: "New Order Received",
		Color: embedColor,
		Fields: []transport.EmbedField{
			{Name: "Order", Value: fmt.Sprintf("#%d", o.ID), Inline: true},
			{Name: "Name", Value: o.Name, Inline: true},
			{Name: "Email", Value: o.Email, Inline: true},
			{Name: "Discord", Value: o.DiscordRef, Inline: true},
			{Name: "Package", Value: o.PackageSelected, Inline: true},
			{Name: "Price", Value: fmt.Sprintf("%s %s", o.Price, o.Currency), Inline: true},
		},
		Timestamp: o.CreatedAt,
	}
}
