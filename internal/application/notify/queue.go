package notify

import (
	"sync"

	"github.com/MyDadsSoft/recoverys/internal/domain/order"
)

// Queue is a strict FIFO buffer of orders awaiting transport readiness.
// Orders created while the gateway is down are parked here and dispatched in
// enqueue order once readiness returns.
type Queue struct {
	mu     sync.Mutex
	orders []order.Order
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends an order to the back of the queue
func (q *Queue) Enqueue(o order.Order) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.orders = append(q.orders, o)
}

// Dequeue removes and returns the order at the front of the queue
func (q *Queue) Dequeue() (order.Order, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.orders) == 0 {
		return order.Order{}, false
	}
	o := q.orders[0]
	q.orders = q.orders[1:]
	return o, true
}

// Len returns the number of queued orders
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.orders)
}
