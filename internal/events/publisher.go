package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ember-dating/match-service/internal/domain"
	"github.com/ember-dating/match-service/internal/kafka"
)

// Publisher routes events toward a recipient's live connections by writing
// the envelope to the events topic keyed by user id. Every instance's
// subscriber sees it and forwards it to its local hub, so delivery works the
// same whether the recipient's socket lives on this process or another.
// Failures are logged and swallowed: the durable record is the source of
// truth, a missed push is recovered by refetch.
type Publisher struct {
	prod   *kafka.Producer
	logger *zap.SugaredLogger
}

func NewPublisher(prod *kafka.Producer, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{prod: prod, logger: logger}
}

func (p *Publisher) Notify(userID string, ev domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.prod.Publish(ctx, userID, ev.Encode()); err != nil {
		p.logger.Warnw("event publish failed", "kind", ev.Kind, "user", userID, "err", err)
	}
}
