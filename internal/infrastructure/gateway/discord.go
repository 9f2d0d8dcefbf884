package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/MyDadsSoft/recoverys/internal/domain/transport"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Discord implements transport.Gateway on top of a discordgo session.
// Connection and gateway-protocol details stay in here; the core sees only
// readiness, sends, user resolution, and the typed event stream.
type Discord struct {
	session *discordgo.Session
	logger  *zap.Logger

	ready  atomic.Bool
	events chan transport.Event
}

// NewDiscord creates a Discord gateway with the given bot token.
// Call Open to connect.
func NewDiscord(token string, logger *zap.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	d := &Discord{
		session: session,
		logger:  logger,
		events:  make(chan transport.Event, 64),
	}

	session.AddHandler(d.onReady)
	session.AddHandler(d.onResumed)
	session.AddHandler(d.onDisconnect)
	session.AddHandler(d.onMessageCreate)

	return d, nil
}

// Open connects the websocket session
func (d *Discord) Open() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	return nil
}

// Close disconnects the session and closes the event stream
func (d *Discord) Close() error {
	err := d.session.Close()
	close(d.events)
	return err
}

// Ready reports whether the gateway can currently send and receive
func (d *Discord) Ready() bool {
	return d.ready.Load()
}

// Events returns the inbound event stream
func (d *Discord) Events() <-chan transport.Event {
	return d.events
}

// SendDirect sends a direct message to the user with the given id
func (d *Discord) SendDirect(ctx context.Context, userID, text string) error {
	channel, err := d.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("open DM channel for %s: %w", userID, err)
	}
	if _, err := d.session.ChannelMessageSend(channel.ID, text); err != nil {
		return fmt.Errorf("send DM to %s: %w", userID, err)
	}
	return nil
}

// SendToChannel sends an embed to the given channel
func (d *Discord) SendToChannel(ctx context.Context, channelID string, embed transport.OrderEmbed) error {
	fields := make([]*discordgo.MessageEmbedField, 0, len(embed.Fields))
	for _, f := range embed.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	msg := &discordgo.MessageEmbed{
		Title:     embed.Title,
		Color:     embed.Color,
		Fields:    fields,
		Timestamp: embed.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}
	if _, err := d.session.ChannelMessageSendEmbed(channelID, msg); err != nil {
		return fmt.Errorf("send embed to channel %s: %w", channelID, err)
	}
	return nil
}

// SendText sends a plain text message to the given channel
func (d *Discord) SendText(ctx context.Context, channelID, text string) error {
	if _, err := d.session.ChannelMessageSend(channelID, text); err != nil {
		return fmt.Errorf("send message to channel %s: %w", channelID, err)
	}
	return nil
}

// User resolves a user by platform id
func (d *Discord) User(ctx context.Context, id string) (*transport.User, error) {
	u, err := d.session.User(id)
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	return &transport.User{ID: u.ID, Username: u.Username}, nil
}

// UserByHandle resolves a user by case-insensitive handle among members in
// the session's state cache. The cache only holds members the gateway has
// seen, so a miss does not prove the user doesn't exist.
func (d *Discord) UserByHandle(ctx context.Context, handle string) (*transport.User, error) {
	d.session.State.RLock()
	defer d.session.State.RUnlock()

	for _, guild := range d.session.State.Guilds {
		for _, member := range guild.Members {
			if member.User == nil {
				continue
			}
			if strings.EqualFold(member.User.Username, handle) {
				return &transport.User{ID: member.User.ID, Username: member.User.Username}, nil
			}
		}
	}
	return nil, fmt.Errorf("no known user with handle %q", handle)
}

func (d *Discord) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	d.logger.Info("discord gateway ready", zap.String("user", r.User.Username))
	d.ready.Store(true)
	d.emit(transport.ReadyChange{Ready: true})
}

func (d *Discord) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	d.logger.Info("discord gateway resumed")
	d.ready.Store(true)
	d.emit(transport.ReadyChange{Ready: true})
}

func (d *Discord) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	d.logger.Warn("discord gateway disconnected")
	d.ready.Store(false)
	d.emit(transport.ReadyChange{Ready: false})
}

// onMessageCreate converts inbound messages into typed events. Guild
// messages become ChannelCommand (first token is the command name), DMs
// become DirectMessage. Filtering by channel, role, and command name is the
// consumer's concern.
func (d *Discord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == s.State.User.ID {
		return
	}

	if m.GuildID == "" {
		d.emit(transport.DirectMessage{
			AuthorID:     m.Author.ID,
			AuthorHandle: m.Author.Username,
			Content:      m.Content,
		})
		return
	}

	tokens := strings.Fields(m.Content)
	if len(tokens) == 0 {
		return
	}
	var roles []string
	if m.Member != nil {
		roles = m.Member.Roles
	}
	d.emit(transport.ChannelCommand{
		ChannelID:   m.ChannelID,
		AuthorID:    m.Author.ID,
		AuthorRoles: roles,
		Name:        strings.ToLower(tokens[0]),
		Args:        tokens[1:],
	})
}

// emit pushes an event without ever blocking the discordgo callback
// goroutine; if the consumer has fallen this far behind, drop and log.
func (d *Discord) emit(ev transport.Event) {
	select {
	case d.events <- ev:
	default:
		d.logger.Warn("event stream full, dropping inbound event")
	}
}

// Ensure Discord implements the gateway port
var _ transport.Gateway = (*Discord)(nil)
