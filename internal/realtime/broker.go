// Package realtime carries row-change notifications over Redis pub/sub.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Table names the kind of row that changed.
type Table string

const (
	TableTickets       Table = "tickets"
	TableNotifications Table = "notifications"
	TableComments      Table = "comments"
)

// Op is the kind of change.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Change describes one row change. Receivers only use it as a trigger to
// recompute; the row itself is re-read from the store.
type Change struct {
	Table    Table     `json:"table"`
	Op       Op        `json:"op"`
	RowID    string    `json:"row_id"`
	TicketID string    `json:"ticket_id,omitempty"`
	UserID   string    `json:"user_id,omitempty"`
	At       time.Time `json:"at"`
}

// Publisher publishes changes.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Broker publishes and subscribes to changes on Redis channels scoped by
// table and row filter.
type Broker struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

const defaultPrefix = "portal"

// NewBroker creates a broker. Channel names are prefixed with prefix.
func NewBroker(client *redis.Client, prefix string, logger *zap.Logger) *Broker {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{client: client, prefix: prefix, logger: logger}
}

// channel joins the prefix and parts. A nil broker names channels with
// the default prefix.
func (b *Broker) channel(parts ...string) string {
	prefix := defaultPrefix
	if b != nil {
		prefix = b.prefix
	}
	return strings.Join(append([]string{prefix}, parts...), ":")
}

// TicketsChannel carries every ticket change.
func (b *Broker) TicketsChannel() string {
	return b.channel("tickets")
}

// NotificationsChannel carries notification changes for one user.
func (b *Broker) NotificationsChannel(userID string) string {
	return b.channel("notifications", userID)
}

// CommentsChannel carries comment changes for one ticket.
func (b *Broker) CommentsChannel(ticketID string) string {
	return b.channel("comments", ticketID)
}

// ChannelFor returns the channel a change is published on.
func (b *Broker) ChannelFor(change Change) (string, error) {
	switch change.Table {
	case TableTickets:
		return b.TicketsChannel(), nil
	case TableNotifications:
		if change.UserID == "" {
			return "", errors.New("notification change without user id")
		}
		return b.NotificationsChannel(change.UserID), nil
	case TableComments:
		if change.TicketID == "" {
			return "", errors.New("comment change without ticket id")
		}
		return b.CommentsChannel(change.TicketID), nil
	}
	return "", errors.New("unknown table " + string(change.Table))
}

// Publish sends change to its channel.
func (b *Broker) Publish(ctx context.Context, change Change) error {
	if b == nil || b.client == nil {
		return errors.New("realtime broker not configured")
	}
	channel, err := b.ChannelFor(change)
	if err != nil {
		return err
	}
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channel, payload).Err()
}

// Subscription is a live feed of changes.
type Subscription struct {
	C      <-chan Change
	pubsub *redis.PubSub
}

// Close stops the subscription and closes C.
func (s *Subscription) Close() error {
	if s == nil || s.pubsub == nil {
		return nil
	}
	return s.pubsub.Close()
}

// Subscribe listens on channels until ctx is done or the subscription is
// closed. Malformed payloads are logged and skipped.
func (b *Broker) Subscribe(ctx context.Context, channels ...string) (*Subscription, error) {
	if b == nil || b.client == nil {
		return nil, errors.New("realtime broker not configured")
	}
	pubsub := b.client.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan Change, 16)
	go func() {
		defer close(out)
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = pubsub.Close()
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				change, err := Decode([]byte(msg.Payload))
				if err != nil {
					b.logger.Warn("dropping malformed change", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					_ = pubsub.Close()
					return
				}
			}
		}
	}()
	return &Subscription{C: out, pubsub: pubsub}, nil
}

// Decode parses a published payload.
func Decode(payload []byte) (Change, error) {
	var change Change
	if err := json.Unmarshal(payload, &change); err != nil {
		return Change{}, err
	}
	if change.Table == "" {
		return Change{}, errors.New("change without table")
	}
	return change, nil
}
