package order

import (
	"strings"
	"time"

	"github.com/MyDadsSoft/recoverys/internal/domain/catalog"
	"github.com/MyDadsSoft/recoverys/internal/domain/shared"
)

// Order represents a customer order in the ledger.
// IDs are monotonically increasing integers assigned by the Ledger Store at
// creation time, so the store's natural order is creation order.
type Order struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	DiscordRef      string           `json:"discordRef"`
	PackageSelected string           `json:"packageSelected"`
	Currency        catalog.Currency `json:"currency"`
	Price           string           `json:"price"`
	Replied         bool             `json:"replied"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// New creates a new order with the given customer fields and computed price.
// The ID is assigned later by the Ledger Store on append.
func New(name, email, discordRef, packageSelected string, currency catalog.Currency, price string) (*Order, error) {
	if name == "" || email == "" || discordRef == "" || packageSelected == "" || currency == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Missing required fields")
	}

	return &Order{
		Name:            name,
		Email:           email,
		DiscordRef:      discordRef,
		PackageSelected: packageSelected,
		Currency:        currency,
		Price:           price,
		Replied:         false,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// MarkReplied transitions the replied flag from false to true.
// The transition is one-way; marking an already-replied order is an error so
// callers cannot double-count a reply.
func (o *Order) MarkReplied() error {
	if o.Replied {
		return shared.NewDomainError("INVALID_STATE", "Order has already been replied to")
	}
	o.Replied = true
	return nil
}

// MatchesRecipient reports whether the order's stored recipient reference
// refers to the given transport user. The stored reference may be a raw user
// id, a mention token wrapping the id, or a free-text handle.
func (o *Order) MatchesRecipient(userID, handle string) bool {
	ref := strings.TrimSpace(o.DiscordRef)
	if ref == "" {
		return false
	}
	if userID != "" {
		if ref == userID {
			return true
		}
		if ref == "<@"+userID+">" || ref == "<@!"+userID+">" {
			return true
		}
	}
	if handle != "" && strings.EqualFold(ref, handle) {
		return true
	}
	return false
}
