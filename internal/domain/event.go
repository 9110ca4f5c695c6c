package domain

import "encoding/json"

const (
	EventMatchCreated   = "match.created"
	EventMessageCreated = "message.created"
)

// Event is the envelope pushed over the live channel. Kind selects exactly
// one of the payload fields.
type Event struct {
	Kind           string                 `json:"kind"`
	MatchCreated   *MatchCreatedPayload   `json:"match_created,omitempty"`
	MessageCreated *MessageCreatedPayload `json:"message_created,omitempty"`
}

type MatchCreatedPayload struct {
	MatchID     string        `json:"match_id"`
	Counterpart PublicProfile `json:"counterpart"`
}

type MessageCreatedPayload struct {
	MatchID string  `json:"match_id"`
	Message Message `json:"message"`
}

func NewMatchCreated(matchID string, counterpart PublicProfile) Event {
	return Event{
		Kind:         EventMatchCreated,
		MatchCreated: &MatchCreatedPayload{MatchID: matchID, Counterpart: counterpart},
	}
}

func NewMessageCreated(matchID string, msg Message) Event {
	return Event{
		Kind:           EventMessageCreated,
		MessageCreated: &MessageCreatedPayload{MatchID: matchID, Message: msg},
	}
}

func (e Event) Encode() []byte {
	b, _ := json.Marshal(e)
	return b
}

func DecodeEvent(b []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(b, &e)
	return e, err
}
