package domain

import "time"

type Message struct {
	MessageID string    `bson:"message_id" json:"message_id"`
	Content   string    `bson:"content" json:"content"`
	Sender    string    `bson:"sender" json:"sender"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	IsRead    bool      `bson:"is_read" json:"is_read"`

	// Encrypted marks content as AES-GCM ciphertext (base64) at rest; it is
	// always cleared before a message leaves the service layer.
	Encrypted bool `bson:"encrypted" json:"-"`
}

// Match is the durable record of a mutual like between exactly two users.
// It is created once, its users pair never changes, and it is only ever
// soft-deactivated, never deleted.
type Match struct {
	ID           string    `bson:"_id" json:"id"`
	PairKey      string    `bson:"pair_key" json:"-"`
	Users        []string  `bson:"users" json:"users"`
	MatchedAt    time.Time `bson:"matched_at" json:"matched_at"`
	Messages     []Message `bson:"messages" json:"messages"`
	LastMessage  *Message  `bson:"last_message,omitempty" json:"last_message,omitempty"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
	MessageCount int       `bson:"message_count" json:"message_count"`
}

// PairKey builds the canonical order-independent key for a user pair. The
// unique index on this key is what guarantees at most one Match per pair.
func PairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

func (m *Match) HasParticipant(userID string) bool {
	for _, id := range m.Users {
		if id == userID {
			return true
		}
	}
	return false
}

// OtherUser returns the counterpart of userID in the pair.
func (m *Match) OtherUser(userID string) string {
	for _, id := range m.Users {
		if id != userID {
			return id
		}
	}
	return ""
}
