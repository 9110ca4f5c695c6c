package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ember-dating/match-service/internal/domain"
)

// UserRepository owns the users collection. The match engine touches only
// the likes/dislikes/matches sets; profile fields belong to the profile
// endpoints.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	r := &UserRepository{coll: db.Collection("users")}
	_, _ = r.coll.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "age", Value: 1}, {Key: "gender", Value: 1}},
	})
	return r
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if u.Likes == nil {
		u.Likes = []string{}
	}
	if u.Dislikes == nil {
		u.Dislikes = []string{}
	}
	if u.Matches == nil {
		u.Matches = []string{}
	}

	_, err := r.coll.UpdateByID(ctx, u.ID,
		bson.M{"$setOnInsert": u},
		options.Update().SetUpsert(true))
	return err
}

func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var u domain.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetPublic(ctx context.Context, id string) (*domain.PublicProfile, error) {
	u, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := u.Public()
	return &p, nil
}

// RecordLike adds target to actor's likes. Repeated calls are no-ops. A like
// is unilateral: nothing on the target's document changes.
func (r *UserRepository) RecordLike(ctx context.Context, actor, target string) error {
	return r.recordInterest(ctx, actor, target, "likes")
}

// RecordDislike adds target to actor's dislikes. A dislike never removes an
// earlier like and never touches an existing match.
func (r *UserRepository) RecordDislike(ctx context.Context, actor, target string) error {
	return r.recordInterest(ctx, actor, target, "dislikes")
}

func (r *UserRepository) recordInterest(ctx context.Context, actor, target, field string) error {
	if actor == target {
		return domain.ErrSelfAction
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": target})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": actor},
		bson.M{"$addToSet": bson.M{field: target}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Discover returns candidate profiles for a user: inside the preferred age
// range, of a shown gender, profile complete, and never seen before (not in
// likes, dislikes or matches). Ranking quality and distance are out of scope
// here; callers get insertion order capped at limit.
func (r *UserRepository) Discover(ctx context.Context, u *domain.User, limit int64) ([]domain.PublicProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	genders := []string{}
	if u.Preferences.ShowMen {
		genders = append(genders, "male")
	}
	if u.Preferences.ShowWomen {
		genders = append(genders, "female")
	}
	if u.Preferences.ShowNonBinary {
		genders = append(genders, "non-binary", "other")
	}

	seen := make([]string, 0, len(u.Likes)+len(u.Dislikes)+len(u.Matches)+1)
	seen = append(seen, u.ID)
	seen = append(seen, u.Likes...)
	seen = append(seen, u.Dislikes...)
	seen = append(seen, u.Matches...)

	filter := bson.M{
		"_id":                 bson.M{"$nin": seen},
		"age":                 bson.M{"$gte": u.Preferences.AgeMin, "$lte": u.Preferences.AgeMax},
		"gender":              bson.M{"$in": genders},
		"is_profile_complete": true,
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.PublicProfile{}
	for cur.Next(ctx) {
		var p domain.PublicProfile
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

func (r *UserRepository) TouchLastActive(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_active": time.Now().UTC()}})
	return err
}
