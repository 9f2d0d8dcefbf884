package order

import "context"

// Repository defines the persistence port for the order ledger.
// Implementations own the canonical collection and its on-disk mirror; all
// other components operate on orders only through these operations.
type Repository interface {
	// Append assigns the next id to the order and adds it to the ledger,
	// persisting the snapshot before returning. A failed disk write is
	// returned as a PERSISTENCE_WARNING domain error; the in-memory
	// collection still holds the order.
	Append(ctx context.Context, o *Order) error

	// List returns all orders in insertion (creation) order.
	List(ctx context.Context) ([]Order, error)

	// FindByID returns the order with the given id, or NOT_FOUND.
	FindByID(ctx context.Context, id int64) (*Order, error)

	// MarkReplied flips the replied flag of the identified order to true and
	// persists the snapshot. Flipping an already-replied order is a no-op.
	MarkReplied(ctx context.Context, id int64) error

	// MarkFirstUnreplied atomically finds the earliest unreplied order
	// matching the predicate, flips its replied flag, and persists. Returns
	// NOT_FOUND when no unreplied order matches.
	MarkFirstUnreplied(ctx context.Context, match func(*Order) bool) (*Order, error)
}
