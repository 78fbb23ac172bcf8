package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"transporte/internal/domain"
	"transporte/internal/utils"
)

const (
	TopicSeatSold        = "seat.sold"
	TopicSeatHeld        = "seat.held"
	TopicSeatStatus      = "seat.status_changed"
	TopicDepartureStatus = "departure.status_changed"
	TopicParcelShipped   = "parcel.shipped"
	TopicParcelStatus    = "parcel.status_changed"
)

// Topics lists every topic the services publish to.
var Topics = []string{
	TopicSeatSold, TopicSeatHeld, TopicSeatStatus,
	TopicDepartureStatus, TopicParcelShipped, TopicParcelStatus,
}

// Event is the JSON payload carried by every message.
type Event struct {
	Topic       string    `json:"topic"`
	DepartureID domain.ID `json:"departureId"`
	EntityID    domain.ID `json:"entityId,omitempty"`
	Status      string    `json:"status,omitempty"`
	ActorID     domain.ID `json:"actorId,omitempty"`
	RequestID   string    `json:"requestId,omitempty"`
	At          time.Time `json:"at"`
}

// Bus publishes domain events. A nil *Bus drops everything, which keeps
// services usable without messaging.
type Bus struct {
	pub message.Publisher
	sub message.Subscriber
}

func NewBus(pub message.Publisher, sub message.Subscriber) *Bus {
	return &Bus{pub: pub, sub: sub}
}

// NewInProcessBus builds a bus on watermill's Go channel pub/sub.
func NewInProcessBus(log *zap.Logger) *Bus {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, NewZapLoggerAdapter(log))
	return NewBus(ch, ch)
}

func (b *Bus) Publish(ctx context.Context, ev Event) error {
	if b == nil || b.pub == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	if ev.RequestID == "" {
		ev.RequestID = utils.RequestIDFrom(ctx)
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if ev.RequestID != "" {
		msg.Metadata.Set("request_id", ev.RequestID)
	}
	return b.pub.Publish(ev.Topic, msg)
}

// Emit publishes and logs failures instead of returning them; events never
// roll back a committed write.
func (b *Bus) Emit(ctx context.Context, ev Event) {
	if err := b.Publish(ctx, ev); err != nil {
		utils.LogError(ctx, "events", "publish", err, zap.String("topic", ev.Topic))
	}
}

// Subscribe decodes messages of one topic into handle until ctx ends.
func (b *Bus) Subscribe(ctx context.Context, topic string, handle func(context.Context, Event)) error {
	if b == nil || b.sub == nil {
		return nil
	}
	msgs, err := b.sub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	go func() {
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				// Undecodable payloads are dropped; redelivery would loop.
				utils.LogError(ctx, "events", "decode", err, zap.String("topic", topic), zap.String("message_uuid", msg.UUID))
				msg.Ack()
				continue
			}
			handle(utils.WithRequestID(ctx, ev.RequestID), ev)
			msg.Ack()
		}
	}()
	return nil
}

func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	if c, ok := b.pub.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
