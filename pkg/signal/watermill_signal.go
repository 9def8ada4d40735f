package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"voice-coach-be/internal/pkg/logger"
	"voice-coach-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type documentUpdatedMessage struct {
	SessionID string `json:"session_id"`
}

// WatermillSignal routes signals over an in-process gochannel topic.
type WatermillSignal struct {
	pubSub  *gochannel.GoChannel
	topic   string
	pending *pendingSet
	logger  logger.ILogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatermillSignal subscribes before returning so no publish is missed.
func NewWatermillSignal(pubSub *gochannel.GoChannel, topic string, log logger.ILogger) (*WatermillSignal, error) {
	ctx, cancel := context.WithCancel(context.Background())

	messages, err := pubSub.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	s := &WatermillSignal{
		pubSub:  pubSub,
		topic:   topic,
		pending: newPendingSet(),
		logger:  log,
		cancel:  cancel,
	}

	s.wg.Add(1)
	go s.consume(messages)

	return s, nil
}

func (s *WatermillSignal) consume(messages <-chan *message.Message) {
	defer s.wg.Done()

	for msg := range messages {
		var payload documentUpdatedMessage
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			s.logger.Warn("WatermillSignal", "Dropping malformed update message", map[string]interface{}{
				"message_id": msg.UUID,
				"error":      err.Error(),
			})
			msg.Ack()
			continue
		}
		s.pending.mark(payload.SessionID)
		msg.Ack()
	}
}

func (s *WatermillSignal) Publish(ctx context.Context, sessionID string) error {
	payload, err := json.Marshal(documentUpdatedMessage{SessionID: sessionID})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", events.TypeDocumentUpdated)
	msg.SetContext(ctx)

	if err := s.pubSub.Publish(s.topic, msg); err != nil {
		return fmt.Errorf("failed to publish update for %s: %w", sessionID, err)
	}
	return nil
}

func (s *WatermillSignal) Pending(ctx context.Context, sessionID string) (bool, error) {
	return s.pending.take(sessionID), nil
}

func (s *WatermillSignal) Watch(sessionID string) (<-chan struct{}, func()) {
	return s.pending.watch(sessionID)
}

// Close stops the subscription. The shared GoChannel stays open.
func (s *WatermillSignal) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}
