package events

import (
	"go.uber.org/zap"

	"github.com/ember-dating/match-service/internal/domain"
)

// Sender is the hub-shaped sink the subscriber forwards into.
type Sender interface {
	Send(userID string, payload []byte)
}

// Subscriber turns consumed envelopes back into hub pushes. Each instance
// consumes with a unique group id so the topic fans out to all of them; an
// instance without an open connection for the recipient just drops the event.
type Subscriber struct {
	sink   Sender
	logger *zap.SugaredLogger
}

func NewSubscriber(sink Sender, logger *zap.SugaredLogger) *Subscriber {
	return &Subscriber{sink: sink, logger: logger}
}

// Handle is wired as the kafka consumer callback; key is the recipient.
func (s *Subscriber) Handle(key string, value []byte) {
	ev, err := domain.DecodeEvent(value)
	if err != nil {
		s.logger.Warnw("dropping malformed event", "err", err)
		return
	}
	switch ev.Kind {
	case domain.EventMatchCreated, domain.EventMessageCreated:
		s.sink.Send(key, value)
	default:
		s.logger.Debugw("ignoring unknown event kind", "kind", ev.Kind)
	}
}
