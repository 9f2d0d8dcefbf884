package transport

import (
	"context"
	"time"
)

// User identifies a chat-platform user reachable through the gateway
type User struct {
	ID       string
	Username string
}

// OrderEmbed is the staff-channel notification payload for a new order
type OrderEmbed struct {
	Title     string
	Color     int
	Fields    []EmbedField
	Timestamp time.Time
}

// EmbedField is a single name/value pair in an embed
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Event is an inbound gateway event. Implementations are the tagged variants
// below; consumers dispatch with a type switch.
type Event interface {
	isEvent()
}

// ChannelCommand is a staff command received in a guild channel,
// e.g. "reply <recipient-ref> <message text>".
type ChannelCommand struct {
	ChannelID   string
	AuthorID    string
	AuthorRoles []string
	Name        string
	Args        []string
}

// DirectMessage is a DM received by the bot user
type DirectMessage struct {
	AuthorID     string
	AuthorHandle string
	Content      string
}

// ReadyChange signals a readiness transition of the gateway connection
type ReadyChange struct {
	Ready bool
}

func (ChannelCommand) isEvent() {}
func (DirectMessage) isEvent()  {}
func (ReadyChange) isEvent()    {}

// Gateway is the external chat-platform capability. The connection and
// protocol internals belong to the implementation; the core only needs
// directed sends, a channel send, user resolution, and the event stream.
type Gateway interface {
	// Ready reports whether the gateway can currently send and receive
	Ready() bool

	// SendDirect sends a direct message to the user with the given id
	SendDirect(ctx context.Context, userID, text string) error

	// SendToChannel sends an embed to the given channel
	SendToChannel(ctx context.Context, channelID string, embed OrderEmbed) error

	// SendText sends a plain text message to the given channel
	SendText(ctx context.Context, channelID, text string) error

	// User resolves a user by platform id
	User(ctx context.Context, id string) (*User, error)

	// UserByHandle resolves a user by case-insensitive handle among locally
	// known users. The local cache is not guaranteed to be complete, so a
	// miss here does not prove the user doesn't exist.
	UserByHandle(ctx context.Context, handle string) (*User, error)

	// Events returns the inbound event stream. The channel is closed when
	// the gateway shuts down.
	Events() <-chan Event
}
