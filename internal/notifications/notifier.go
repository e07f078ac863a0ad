// Package notifications delivers like events to connected companies in real time.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"boostly/internal/middleware"
	"boostly/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	companyChannelPattern = "notifications:company:*"

	// EventPostLiked is published to the owning company when one of its posts is liked.
	EventPostLiked = "post_liked"
)

// CompanyChannel returns the Redis channel carrying events for a company.
func CompanyChannel(companyID uint) string {
	return fmt.Sprintf("notifications:company:%d", companyID)
}

// Event is the envelope written to websocket clients.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PostLiked describes one accepted like.
type PostLiked struct {
	PostID         uint      `json:"post_id"`
	OwnerCompanyID uint      `json:"owner_company_id"`
	LikedBy        uint      `json:"liked_by_company_id"`
	LikedAt        time.Time `json:"liked_at"`
}

// Notifier publishes events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishPostLiked sends a post_liked event to the owner's channel. A nil
// Redis client makes it a no-op.
func (n *Notifier) PublishPostLiked(ctx context.Context, ev PostLiked) error {
	if n == nil || n.rdb == nil {
		return nil
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	envelope, err := json.Marshal(Event{Type: EventPostLiked, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := n.rdb.Publish(ctx, CompanyChannel(ev.OwnerCompanyID), envelope).Err(); err != nil {
		return err
	}
	observability.NotificationsPublished.WithLabelValues(EventPostLiked).Inc()
	return nil
}

// StartCompanySubscriber subscribes to every company channel and calls
// onMessage for each message until ctx is cancelled.
func (n *Notifier) StartCompanySubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, companyChannelPattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", companyChannelPattern, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in company subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
