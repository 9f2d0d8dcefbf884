package reply

import (
	"context"
	"fmt"
	"strings"

	"github.com/MyDadsSoft/recoverys/internal/application/notify"
	"github.com/MyDadsSoft/recoverys/internal/domain/order"
	"github.com/MyDadsSoft/recoverys/internal/domain/shared"
	"github.com/MyDadsSoft/recoverys/internal/domain/transport"
	"go.uber.org/zap"
)

// dmPrefix keeps the direct-message framing of the legacy bot
const dmPrefix = "**Reply from MyDadsSoft Recoverys:**\n"

// Coordinator resolves reply recipients, delivers direct messages, and
// performs the at-most-once replied transition on the matching order. It is
// the single consumer of the gateway's inbound event stream.
type Coordinator struct {
	repo           order.Repository
	gateway        transport.Gateway
	notifier       *notify.Notifier
	staffChannelID string
	allowedRoleIDs []string
	logger         *zap.Logger
}

// NewCoordinator creates a Coordinator. allowedRoleIDs may be empty, in
// which case the reply command is open to the whole staff channel.
func NewCoordinator(repo order.Repository, gateway transport.Gateway, notifier *notify.Notifier, staffChannelID string, allowedRoleIDs []string, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		repo:           repo,
		gateway:        gateway,
		notifier:       notifier,
		staffChannelID: staffChannelID,
		allowedRoleIDs: allowedRoleIDs,
		logger:         logger,
	}
}

// Reply delivers a direct reply for the given order id (the HTTP path).
// The order is left unmodified on any failure, so the caller can safely
// resubmit; success flips the replied flag exactly once.
func (c *Coordinator) Reply(ctx context.Context, orderID int64, message string) error {
	if strings.TrimSpace(message) == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Message is required")
	}

	o, err := c.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !c.gateway.Ready() {
		return shared.ErrTransportUnavailable
	}

	user, err := c.resolve(ctx, o.DiscordRef)
	if err != nil {
		return shared.NewDomainError("NOT_FOUND",
			fmt.Sprintf("Recipient %q could not be resolved", o.DiscordRef))
	}

	if err := c.gateway.SendDirect(ctx, user.ID, dmPrefix+message); err != nil {
		c.logger.Error("reply delivery failed",
			zap.Int64("order_id", orderID),
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return shared.NewDomainError("DELIVERY_FAILED", "Failed to send the direct message")
	}

	if err := c.repo.MarkReplied(ctx, o.ID); err != nil && !shared.IsCode(err, "PERSISTENCE_WARNING") {
		return err
	}

	c.logger.Info("order replied",
		zap.Int64("order_id", o.ID),
		zap.String("user_id", user.ID),
	)
	return nil
}

// Run consumes the inbound event stream until the context is cancelled or
// the gateway closes the stream. Events are handled sequentially, so
// readiness drains and command replies keep their arrival order.
func (c *Coordinator) Run(ctx context.Context) {
	events := c.gateway.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handle(ctx, ev)
		}
	}
}

// handle dispatches one inbound event by variant
func (c *Coordinator) handle(ctx context.Context, ev transport.Event) {
	switch e := ev.(type) {
	case transport.ReadyChange:
		if e.Ready {
			c.notifier.HandleReady(ctx)
		}
	case transport.ChannelCommand:
		c.handleCommand(ctx, e)
	case transport.DirectMessage:
		// Inbound DMs carry no commands; log them for staff follow-up
		c.logger.Info("direct message received",
			zap.String("from", e.AuthorHandle),
			zap.String("user_id", e.AuthorID),
		)
	}
}

// handleCommand processes "reply <recipient-ref> <message text>" from the
// staff channel. The reply is delivered first; the earliest unreplied order
// for the resolved recipient is then flipped, and an ad-hoc reply with no
// pending order is allowed.
func (c *Coordinator) handleCommand(ctx context.Context, cmd transport.ChannelCommand) {
	if cmd.Name != "reply" || cmd.ChannelID != c.staffChannelID {
		return
	}

	if !c.roleAllowed(cmd.AuthorRoles) {
		c.notice(ctx, "You do not have permission to use this command.")
		return
	}

	if len(cmd.Args) < 2 {
		c.notice(ctx, "Usage: reply <user> <message>")
		return
	}
	ref := cmd.Args[0]
	message := strings.Join(cmd.Args[1:], " ")

	user, err := c.resolve(ctx, ref)
	if err != nil {
		c.logger.Warn("reply recipient not found",
			zap.String("ref", ref),
			zap.Error(err),
		)
		c.notice(ctx, fmt.Sprintf("User not found: %s", ref))
		return
	}

	if err := c.gateway.SendDirect(ctx, user.ID, dmPrefix+message); err != nil {
		c.logger.Error("reply delivery failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		c.notice(ctx, fmt.Sprintf("Failed to send DM to %s.", user.Username))
		return
	}

	matched, err := c.repo.MarkFirstUnreplied(ctx, func(o *order.Order) bool {
		return o.MatchesRecipient(user.ID, user.Username)
	})
	switch {
	case err == nil:
		c.logger.Info("order replied via command",
			zap.Int64("order_id", matched.ID),
			zap.String("user_id", user.ID),
		)
		c.notice(ctx, fmt.Sprintf("Message sent to %s (order #%d marked replied).", user.Username, matched.ID))
	case shared.IsCode(err, "PERSISTENCE_WARNING"):
		c.logger.Warn("replied flag persisted in memory only",
			zap.Int64("order_id", matched.ID),
			zap.Error(err),
		)
		c.notice(ctx, fmt.Sprintf("Message sent to %s (order #%d marked replied).", user.Username, matched.ID))
	case shared.IsCode(err, "NOT_FOUND"):
		// Ad-hoc reply with no pending order; delivered, nothing to flip
		c.notice(ctx, fmt.Sprintf("Message sent to %s.", user.Username))
	default:
		c.logger.Error("failed to mark order replied", zap.Error(err))
		c.notice(ctx, fmt.Sprintf("Message sent to %s.", user.Username))
	}
}

// roleAllowed checks the optional role allow-list
func (c *Coordinator) roleAllowed(roles []string) bool {
	if len(c.allowedRoleIDs) == 0 {
		return true
	}
	for _, have := range roles {
		for _, want := range c.allowedRoleIDs {
			if have == want {
				return true
			}
		}
	}
	return false
}

// notice sends command feedback to the staff channel, logging send failure
func (c *Coordinator) notice(ctx context.Context, text string) {
	if err := c.gateway.SendText(ctx, c.staffChannelID, text); err != nil {
		c.logger.Error("failed to send channel notice", zap.Error(err))
	}
}

// resolve turns a recipient reference into a transport user. Resolution
// order: mention syntax, then all-digit raw id, then case-insensitive handle
// among locally known users.
func (c *Coordinator) resolve(ctx context.Context, ref string) (*transport.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty recipient reference")
	}
	if id, ok := parseMention(ref); ok {
		return c.gateway.User(ctx, id)
	}
	if isDigits(ref) {
		return c.gateway.User(ctx, ref)
	}
	return c.gateway.UserByHandle(ctx, ref)
}

// parseMention extracts the user id from <@id> or <@!id> mention syntax
func parseMention(ref string) (string, bool) {
	if !strings.HasPrefix(ref, "<@") || !strings.HasSuffix(ref, ">") {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(ref, "<@"), ">")
	id = strings.TrimPrefix(id, "!")
	if id == "" || !isDigits(id) {
		return "", false
	}
	return id, true
}

// isDigits reports whether s is a non-empty run of ASCII digits
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
