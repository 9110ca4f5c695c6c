package viewmodel

import (
	"sync"

	"github.com/ember-dating/match-service/internal/domain"
	"github.com/ember-dating/match-service/internal/service"
)

// MatchList is the client-side cache of matches and open chat threads. The
// server's match list is the source of truth; pushed events are merged on
// top of it and a full refetch may arrive at any time, so every apply path
// has to tolerate seeing the same match or message twice.
type MatchList struct {
	mu      sync.Mutex
	order   []string
	matches map[string]*service.MatchSummary
	threads map[string][]domain.Message
	seenMsg map[string]map[string]struct{}
}

func NewMatchList() *MatchList {
	return &MatchList{
		matches: make(map[string]*service.MatchSummary),
		threads: make(map[string][]domain.Message),
		seenMsg: make(map[string]map[string]struct{}),
	}
}

// ApplySnapshot replaces the match list with a full fetch. Open threads
// survive: their logs are re-fetched separately by OpenThread.
func (l *MatchList) ApplySnapshot(matches []service.MatchSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = l.order[:0]
	l.matches = make(map[string]*service.MatchSummary, len(matches))
	for i := range matches {
		m := matches[i]
		l.order = append(l.order, m.MatchID)
		l.matches[m.MatchID] = &m
	}
}

// ApplyMatchCreated appends a pushed match unless a concurrent snapshot
// already delivered it.
func (l *MatchList) ApplyMatchCreated(ev domain.MatchCreatedPayload) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.matches[ev.MatchID]; ok {
		return
	}
	l.order = append(l.order, ev.MatchID)
	l.matches[ev.MatchID] = &service.MatchSummary{
		MatchID: ev.MatchID,
		User:    ev.Counterpart,
	}
}

// OpenThread installs the fetched message log for a match the user opened.
func (l *MatchList) OpenThread(matchID string, messages []domain.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.threads[matchID] = append([]domain.Message(nil), messages...)
	seen := make(map[string]struct{}, len(messages))
	for _, m := range messages {
		seen[m.MessageID] = struct{}{}
	}
	l.seenMsg[matchID] = seen
}

func (l *MatchList) CloseThread(matchID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.threads, matchID)
	delete(l.seenMsg, matchID)
}

// ApplyMessageCreated refreshes the match's last message and, if its thread
// is open, merges the message into the log — by id, duplicates ignored,
// append order preserved.
func (l *MatchList) ApplyMessageCreated(ev domain.MessageCreatedPayload) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if m, ok := l.matches[ev.MatchID]; ok {
		msg := ev.Message
		m.LastMessage = &msg
	}

	seen, open := l.seenMsg[ev.MatchID]
	if !open {
		return
	}
	if _, dup := seen[ev.Message.MessageID]; dup {
		return
	}
	seen[ev.Message.MessageID] = struct{}{}
	l.threads[ev.MatchID] = append(l.threads[ev.MatchID], ev.Message)
}

// ApplyEvent dispatches a raw pushed envelope. Unknown kinds are ignored.
func (l *MatchList) ApplyEvent(payload []byte) {
	ev, err := domain.DecodeEvent(payload)
	if err != nil {
		return
	}
	switch ev.Kind {
	case domain.EventMatchCreated:
		if ev.MatchCreated != nil {
			l.ApplyMatchCreated(*ev.MatchCreated)
		}
	case domain.EventMessageCreated:
		if ev.MessageCreated != nil {
			l.ApplyMessageCreated(*ev.MessageCreated)
		}
	}
}

// Matches returns the cached list in arrival order.
func (l *MatchList) Matches() []service.MatchSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]service.MatchSummary, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.matches[id])
	}
	return out
}

// Thread returns the open message log for a match, nil if not open.
func (l *MatchList) Thread(matchID string) []domain.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	msgs, ok := l.threads[matchID]
	if !ok {
		return nil
	}
	return append([]domain.Message(nil), msgs...)
}
