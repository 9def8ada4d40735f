package signal

import (
	"context"
	"fmt"

	"voice-coach-be/pkg/events"
	pktNats "voice-coach-be/pkg/nats"
)

type eventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
	Close()
}

type eventSubscriber interface {
	Subscribe(ctx context.Context, subject string, handler pktNats.EventHandler) error
	Close()
}

// NatsSignal publishes document.updated events on JetStream and marks
// sessions pending as they arrive on this process's ordered consumer.
type NatsSignal struct {
	pub     eventPublisher
	sub     eventSubscriber
	pending *pendingSet
}

// NewNatsSignal starts consuming before returning. Either side may be nil
// when this process only publishes or only listens. The signal owns both
// connections, so they are closed when it cannot start.
func NewNatsSignal(ctx context.Context, pub *pktNats.Publisher, sub *pktNats.Subscriber) (*NatsSignal, error) {
	var p eventPublisher
	if pub != nil {
		p = pub
	}
	var s eventSubscriber
	if sub != nil {
		s = sub
	}
	return newNatsSignal(ctx, p, s)
}

func newNatsSignal(ctx context.Context, pub eventPublisher, sub eventSubscriber) (*NatsSignal, error) {
	s := &NatsSignal{pub: pub, sub: sub, pending: newPendingSet()}

	if sub != nil {
		subject := pktNats.SubjectPrefix + events.TypeDocumentUpdated + ".>"
		err := sub.Subscribe(ctx, subject, func(ctx context.Context, event events.Event) error {
			s.pending.mark(events.SessionIDOf(event))
			return nil
		})
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to subscribe to document updates: %w", err)
		}
	}

	return s, nil
}

func (s *NatsSignal) Publish(ctx context.Context, sessionID string) error {
	if s.pub == nil {
		return fmt.Errorf("nats publisher not connected")
	}
	return s.pub.Publish(ctx, events.NewDocumentUpdated(sessionID))
}

func (s *NatsSignal) Pending(ctx context.Context, sessionID string) (bool, error) {
	return s.pending.take(sessionID), nil
}

func (s *NatsSignal) Watch(sessionID string) (<-chan struct{}, func()) {
	return s.pending.watch(sessionID)
}

func (s *NatsSignal) Close() error {
	if s.sub != nil {
		s.sub.Close()
	}
	if s.pub != nil {
		s.pub.Close()
	}
	return nil
}
