package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/botlab/robot-access/internal/core/domain"
)

const collectionAccounts = "accounts"

// AccountRepository is the MongoDB credential store. Every method maps to a
// single server-side operation, so concurrent writers never interleave.
type AccountRepository struct {
	col *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{col: db.Collection(collectionAccounts)}
}

type accountDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Username      string             `bson:"username"`
	PasswordHash  string             `bson:"password_hash"`
	Role          string             `bson:"role"`
	Disabled      bool               `bson:"disabled"`
	Blacklisted   bool               `bson:"blacklisted"`
	DateOfBirth   time.Time          `bson:"date_of_birth"`
	BoundResource string             `bson:"bound_resource"`
	WindowStart   time.Time          `bson:"window_start"`
	WindowEnd     time.Time          `bson:"window_end"`
	SessionToken  string             `bson:"session_token"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func toDoc(a *domain.Account) accountDoc {
	return accountDoc{
		Username:      a.Username,
		PasswordHash:  a.PasswordHash,
		Role:          string(a.Role),
		Disabled:      a.Disabled,
		Blacklisted:   a.Blacklisted,
		DateOfBirth:   a.DateOfBirth,
		BoundResource: string(a.BoundResource),
		WindowStart:   a.Window.Start,
		WindowEnd:     a.Window.End,
		SessionToken:  a.SessionToken,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		ID:            d.ID.Hex(),
		Username:      d.Username,
		PasswordHash:  d.PasswordHash,
		Role:          domain.Role(d.Role),
		Disabled:      d.Disabled,
		Blacklisted:   d.Blacklisted,
		DateOfBirth:   d.DateOfBirth.UTC(),
		BoundResource: domain.Resource(d.BoundResource),
		Window:        domain.Window{Start: d.WindowStart.UTC(), End: d.WindowEnd.UTC()},
		SessionToken:  d.SessionToken,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
}

// updateDocument renders a partial update as a $set document. UpdatedAt is
// always refreshed.
func updateDocument(u domain.AccountUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if u.PasswordHash != nil {
		set["password_hash"] = *u.PasswordHash
	}
	if u.Disabled != nil {
		set["disabled"] = *u.Disabled
	}
	if u.Blacklisted != nil {
		set["blacklisted"] = *u.Blacklisted
	}
	if u.BoundResource != nil {
		set["bound_resource"] = string(*u.BoundResource)
	}
	if u.Window != nil {
		set["window_start"] = u.Window.Start
		set["window_end"] = u.Window.End
	}
	if u.SessionToken != nil {
		set["session_token"] = *u.SessionToken
	}
	return bson.M{"$set": set}
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDoc
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, domain.StoreError("find account", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) Insert(ctx context.Context, acc *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDoc(acc)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, domain.StoreError("insert account", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) UpdateFields(ctx context.Context, username string, update domain.AccountUpdate) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc accountDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"username": username}, updateDocument(update, time.Now().UTC()), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, domain.StoreError("update account", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) CompareAndClearSession(ctx context.Context, username, expected string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"username": username, "session_token": expected},
		bson.M{"$set": bson.M{"session_token": "", "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, domain.StoreError("clear session", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *AccountRepository) FindOverlapping(ctx context.Context, resource domain.Resource, w domain.Window, exclude string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"bound_resource": string(resource),
		"username":       bson.M{"$ne": exclude},
		"window_start":   bson.M{"$lte": w.End},
		"window_end":     bson.M{"$gte": w.Start},
	}
	var doc accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, domain.StoreError("find overlapping", err)
	}
	return doc.toDomain(), nil
}

// EnsureIndexes creates the unique username index and the allocation lookup index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "bound_resource", Value: 1}, {Key: "window_start", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
