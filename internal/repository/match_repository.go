package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ember-dating/match-service/internal/domain"
)

// MatchRepository owns the matches collection and the two transactional
// writes that span it and the users collection: match formation and soft
// unmatch. The unique pair_key index serializes concurrent formation of the
// same pair.
type MatchRepository struct {
	client *mongo.Client
	users  *mongo.Collection
	coll   *mongo.Collection
}

func NewMatchRepository(client *mongo.Client, db *mongo.Database) *MatchRepository {
	r := &MatchRepository{
		client: client,
		users:  db.Collection("users"),
		coll:   db.Collection("matches"),
	}
	_, _ = r.coll.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "users", Value: 1}, {Key: "is_active", Value: 1}},
		},
	})
	return r
}

// FormMatch creates the Match record for a mutual like and appends each user
// to the other's matches set, atomically. The returned bool reports whether
// this call created the record; the loser of a simultaneous mutual like gets
// the winner's match back instead of an error.
func (r *MatchRepository) FormMatch(ctx context.Context, actor, target string) (*domain.Match, bool, error) {
	match := &domain.Match{
		ID:        uuid.NewString(),
		PairKey:   domain.PairKey(actor, target),
		Users:     []string{actor, target},
		MatchedAt: time.Now().UTC(),
		Messages:  []domain.Message{},
		IsActive:  true,
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return nil, false, err
	}
	defer session.EndSession(ctx)

	// WithTransaction retries TransientTransactionError internally; the
	// duplicate-key race falls through to the lookup below.
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.coll.InsertOne(sc, match); err != nil {
			return nil, err
		}
		if _, err := r.users.UpdateByID(sc, actor,
			bson.M{"$addToSet": bson.M{"matches": target}}); err != nil {
			return nil, err
		}
		if _, err := r.users.UpdateByID(sc, target,
			bson.M{"$addToSet": bson.M{"matches": actor}}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			existing, lookupErr := r.getByPairKey(ctx, match.PairKey)
			if lookupErr != nil {
				return nil, false, lookupErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return match, true, nil
}

func (r *MatchRepository) getByPairKey(ctx context.Context, pairKey string) (*domain.Match, error) {
	var m domain.Match
	if err := r.coll.FindOne(ctx, bson.M{"pair_key": pairKey}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepository) Get(ctx context.Context, matchID string) (*domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.Match
	if err := r.coll.FindOne(ctx, bson.M{"_id": matchID}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListActiveByUser returns a user's active matches, most recent activity
// first (matches without messages sort last), without the embedded message
// log; list views only need the last_message cache.
func (r *MatchRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "last_message.timestamp", Value: -1}, {Key: "matched_at", Value: -1}}).
		SetProjection(bson.M{"messages": 0})
	cur, err := r.coll.Find(ctx, bson.M{"users": userID, "is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Match{}
	for cur.Next(ctx) {
		var m domain.Match
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}

const appendAttempts = 5

var errAppendContention = errors.New("message append contention, retries exhausted")

// AppendMessage appends a message with a server-assigned timestamp that
// never runs backwards within a match, and refreshes the last_message cache
// in the same update. The update filter requires the tail seen at clamp
// time to still be <= the new timestamp, so two concurrent appends cannot
// commit out of timestamp order; the loser re-reads and re-clamps. The
// pre-append match is returned so callers can address the other
// participant.
func (r *MatchRepository) AppendMessage(ctx context.Context, matchID, sender, content string, encrypted bool) (*domain.Message, *domain.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	for attempt := 0; attempt < appendAttempts; attempt++ {
		m, err := r.Get(ctx, matchID)
		if err != nil {
			return nil, nil, err
		}
		if !m.IsActive {
			return nil, nil, domain.ErrNotFound
		}
		if !m.HasParticipant(sender) {
			return nil, nil, domain.ErrForbidden
		}

		ts := time.Now().UTC()
		if m.LastMessage != nil && ts.Before(m.LastMessage.Timestamp) {
			ts = m.LastMessage.Timestamp
		}
		msg := domain.Message{
			MessageID: uuid.NewString(),
			Content:   content,
			Sender:    sender,
			Timestamp: ts,
			IsRead:    false,
			Encrypted: encrypted,
		}

		res, err := r.coll.UpdateOne(ctx,
			bson.M{
				"_id": matchID, "is_active": true, "users": sender,
				"$or": []bson.M{
					{"last_message": bson.M{"$exists": false}},
					{"last_message.timestamp": bson.M{"$lte": ts}},
				},
			},
			bson.M{
				"$push": bson.M{"messages": msg},
				"$set":  bson.M{"last_message": msg},
				"$inc":  bson.M{"message_count": 1},
			})
		if err != nil {
			return nil, nil, err
		}
		if res.MatchedCount == 1 {
			return &msg, m, nil
		}
		// guard lost: deactivated, or a concurrent append advanced the
		// tail past ts; the next iteration re-reads and sorts out which
	}
	return nil, nil, errAppendContention
}

// Deactivate soft-unmatches: the record stays, drops out of active listings,
// and both users' matches sets lose the counterpart so they stay symmetric
// with active records.
func (r *MatchRepository) Deactivate(ctx context.Context, matchID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	m, err := r.Get(ctx, matchID)
	if err != nil {
		return err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.coll.UpdateByID(sc, matchID,
			bson.M{"$set": bson.M{"is_active": false}}); err != nil {
			return nil, err
		}
		if _, err := r.users.UpdateByID(sc, m.Users[0],
			bson.M{"$pull": bson.M{"matches": m.Users[1]}}); err != nil {
			return nil, err
		}
		if _, err := r.users.UpdateByID(sc, m.Users[1],
			bson.M{"$pull": bson.M{"matches": m.Users[0]}}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
