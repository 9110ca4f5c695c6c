package service

import (
	"context"
	"crypto/cipher"
	"encoding/base64"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ember-dating/match-service/internal/crypto"
	"github.com/ember-dating/match-service/internal/domain"
)

// ProfileReader resolves counterpart profiles for match listings.
type ProfileReader interface {
	GetPublic(ctx context.Context, id string) (*domain.PublicProfile, error)
}

// MatchSummary is one row of a user's match list.
type MatchSummary struct {
	MatchID     string               `json:"match_id"`
	User        domain.PublicProfile `json:"user"`
	MatchedAt   time.Time            `json:"matched_at"`
	LastMessage *domain.Message      `json:"last_message,omitempty"`
}

// ChatService covers everything after the match: listing matches, reading a
// thread, appending messages, unmatching. When an AEAD is configured,
// message content is stored AES-GCM encrypted and only leaves this layer as
// plaintext.
type ChatService struct {
	matches      MatchStore
	profiles     ProfileReader
	notifier     Notifier
	aead         cipher.AEAD
	maxChars     int
	historyLimit int
	logger       *zap.SugaredLogger
}

func NewChatService(matches MatchStore, profiles ProfileReader, notifier Notifier, aead cipher.AEAD, maxChars, historyLimit int, logger *zap.SugaredLogger) *ChatService {
	return &ChatService{
		matches:      matches,
		profiles:     profiles,
		notifier:     notifier,
		aead:         aead,
		maxChars:     maxChars,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// SendMessage validates and appends, then pushes message.created to the
// other participant only; the sender already has the message.
func (s *ChatService) SendMessage(ctx context.Context, matchID, sender, content string) (*domain.Message, error) {
	if content == "" || utf8.RuneCountInString(content) > s.maxChars {
		return nil, domain.ErrInvalidContent
	}

	stored := content
	encrypted := false
	if s.aead != nil {
		ct, err := crypto.Encrypt(s.aead, []byte(content))
		if err != nil {
			return nil, err
		}
		stored = base64.StdEncoding.EncodeToString(ct)
		encrypted = true
	}

	msg, match, err := s.matches.AppendMessage(ctx, matchID, sender, stored, encrypted)
	if err != nil {
		return nil, err
	}

	// callers and the pushed event see plaintext
	msg.Content = content
	msg.Encrypted = false

	if s.notifier != nil {
		s.notifier.Notify(match.OtherUser(sender), domain.NewMessageCreated(matchID, *msg))
	}

	return msg, nil
}

// ListMessages returns the tail of the thread, newest historyLimit entries,
// decrypted.
func (s *ChatService) ListMessages(ctx context.Context, matchID, caller string) ([]domain.Message, error) {
	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.HasParticipant(caller) {
		return nil, domain.ErrForbidden
	}

	msgs := m.Messages
	if s.historyLimit > 0 && len(msgs) > s.historyLimit {
		msgs = msgs[len(msgs)-s.historyLimit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	for i := range out {
		s.decrypt(&out[i])
	}
	return out, nil
}

// ListMatches returns the caller's active matches with counterpart profiles,
// the durable state a client reconciles against after reconnect.
func (s *ChatService) ListMatches(ctx context.Context, userID string) ([]MatchSummary, error) {
	matches, err := s.matches.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]MatchSummary, 0, len(matches))
	for _, m := range matches {
		other := m.OtherUser(userID)
		profile, err := s.profiles.GetPublic(ctx, other)
		if err != nil {
			if s.logger != nil {
				s.logger.Warnw("counterpart profile missing", "match", m.ID, "user", other)
			}
			continue
		}
		last := m.LastMessage
		if last != nil {
			lm := *last
			s.decrypt(&lm)
			last = &lm
		}
		out = append(out, MatchSummary{
			MatchID:     m.ID,
			User:        *profile,
			MatchedAt:   m.MatchedAt,
			LastMessage: last,
		})
	}
	return out, nil
}

// Unmatch soft-deactivates; the record is never deleted.
func (s *ChatService) Unmatch(ctx context.Context, matchID, caller string) error {
	m, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return err
	}
	if !m.HasParticipant(caller) {
		return domain.ErrForbidden
	}
	if !m.IsActive {
		return nil
	}
	return s.matches.Deactivate(ctx, matchID)
}

// decrypt restores plaintext in place. A message that fails to decrypt is
// left as stored rather than dropped.
func (s *ChatService) decrypt(m *domain.Message) {
	if !m.Encrypted || m.Content == "" || s.aead == nil {
		return
	}
	ct, err := base64.StdEncoding.DecodeString(m.Content)
	if err != nil {
		return
	}
	plain, err := crypto.Decrypt(s.aead, ct)
	if err != nil {
		if s.logger != nil {
			s.logger.Warnw("message decrypt failed", "message", m.MessageID, "err", err)
		}
		return
	}
	m.Content = string(plain)
	m.Encrypted = false
}
