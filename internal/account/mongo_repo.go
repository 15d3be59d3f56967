package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding accounts.
const CollectionName = "users"

type mongoAccount struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Phone        string             `bson:"phone"`
	Location     string             `bson:"location"`
	PasswordHash string             `bson:"password"`
	IsActive     bool               `bson:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d mongoAccount) toAccount() Account {
	return Account{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		Location:     d.Location,
		PasswordHash: d.PasswordHash,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

type MongoRepo struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRepo(db *mongo.Database, timeout time.Duration) *MongoRepo {
	return &MongoRepo{coll: db.Collection(CollectionName), timeout: timeout}
}

func (r *MongoRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// EnsureIndexes creates the unique email index.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.coll.Indexes().CreateOne(timeoutCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}
	return nil
}

func (r *MongoRepo) Create(ctx context.Context, a *Account) error {
	doc := mongoAccount{
		ID:           primitive.NewObjectID(),
		Name:         a.Name,
		Email:        a.Email,
		Phone:        a.Phone,
		Location:     a.Location,
		PasswordHash: a.PasswordHash,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.coll.InsertOne(timeoutCtx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	a.ID = doc.ID.Hex()
	return nil
}

func (r *MongoRepo) findOne(ctx context.Context, filter bson.M) (Account, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var doc mongoAccount
	if err := r.coll.FindOne(timeoutCtx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("find account: %w", err)
	}
	return doc.toAccount(), nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Account{}, ErrInvalidID
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoRepo) GetByEmail(ctx context.Context, email string) (Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepo) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]Account, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	cur, err := r.coll.Find(timeoutCtx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}
	var docs []mongoAccount
	if err := cur.All(timeoutCtx, &docs); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	out := make([]Account, len(docs))
	for i, d := range docs {
		out[i] = d.toAccount()
	}
	return out, nil
}

func (r *MongoRepo) GetByIDs(ctx context.Context, ids []string) ([]Account, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []Account{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *MongoRepo) Search(ctx context.Context, q SearchQuery) ([]Account, int, error) {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Text), Options: "i"}
	filter := bson.M{
		"isActive": true,
		"$or":      bson.A{bson.M{"name": re}, bson.M{"location": re}},
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	total, err := r.coll.CountDocuments(timeoutCtx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}).
		SetCollation(&options.Collation{Locale: "en", Strength: 2}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	found, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return found, int(total), nil
}

func (r *MongoRepo) CountActive(ctx context.Context) (int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	n, err := r.coll.CountDocuments(timeoutCtx, bson.M{"isActive": true})
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return int(n), nil
}
