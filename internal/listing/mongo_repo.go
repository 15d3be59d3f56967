package listing

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

// CollectionName is the Mongo collection holding listings.
const CollectionName = "books"

type mongoListing struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Author      string             `bson:"author"`
	Genre       string             `bson:"genre"`
	Condition   string             `bson:"condition"`
	Price       float64            `bson:"price"`
	Description string             `bson:"description"`
	ImageURL    string             `bson:"imageUrl"`
	Seller      primitive.ObjectID `bson:"seller"`
	Status      string             `bson:"status"`
	Views       int64              `bson:"views"`
	Featured    bool               `bson:"featured"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d mongoListing) toListing() Listing {
	return Listing{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Author:      d.Author,
		Genre:       d.Genre,
		Condition:   Condition(d.Condition),
		Price:       d.Price,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		SellerID:    d.Seller.Hex(),
		Status:      Status(d.Status),
		Views:       d.Views,
		Featured:    d.Featured,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
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

// EnsureIndexes creates the query indexes if they do not exist.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "seller", Value: 1}}},
		{Keys: bson.D{{Key: "genre", Value: 1}}},
		{Keys: bson.D{{Key: "condition", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "author", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("books_text"),
		},
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.coll.Indexes().CreateMany(timeoutCtx, models); err != nil {
		return fmt.Errorf("create listing indexes: %w", err)
	}
	return nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

func (r *MongoRepo) Create(ctx context.Context, l *Listing) error {
	seller, err := objectID(l.SellerID)
	if err != nil {
		return err
	}
	doc := mongoListing{
		ID:          primitive.NewObjectID(),
		Title:       l.Title,
		Author:      l.Author,
		Genre:       l.Genre,
		Condition:   string(l.Condition),
		Price:       l.Price,
		Description: l.Description,
		ImageURL:    l.ImageURL,
		Seller:      seller,
		Status:      string(l.Status),
		Featured:    l.Featured,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.coll.InsertOne(timeoutCtx, doc); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	l.ID = doc.ID.Hex()
	l.Views = 0
	return nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (Listing, error) {
	oid, err := objectID(id)
	if err != nil {
		return Listing{}, err
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var doc mongoListing
	if err := r.coll.FindOne(timeoutCtx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("find listing: %w", err)
	}
	return doc.toListing(), nil
}

// mongoFilter translates f into a query document.
func mongoFilter(f Filter) (bson.M, bool) {
	q := bson.M{"status": string(StatusAvailable)}
	if f.Genre != nil {
		q["genre"] = *f.Genre
	}
	if f.Condition != nil {
		q["condition"] = string(*f.Condition)
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		q["price"] = price
	}
	if f.Search != "" {
		tokens := f.SearchTokens()
		if len(tokens) == 0 {
			return nil, false
		}
		var or bson.A
		for _, t := range tokens {
			re := primitive.Regex{Pattern: regexp.QuoteMeta(t), Options: "i"}
			or = append(or, bson.M{"title": re}, bson.M{"author": re}, bson.M{"description": re})
		}
		q["$or"] = or
	}
	return q, true
}

func (r *MongoRepo) find(ctx context.Context, q bson.M, opts ...*options.FindOptions) ([]Listing, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	cur, err := r.coll.Find(timeoutCtx, q, opts...)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	var docs []mongoListing
	if err := cur.All(timeoutCtx, &docs); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	out := make([]Listing, len(docs))
	for i, d := range docs {
		out[i] = d.toListing()
	}
	return out, nil
}

func (r *MongoRepo) Find(ctx context.Context, f Filter) ([]Listing, error) {
	q, ok := mongoFilter(f)
	if !ok {
		return []Listing{}, nil
	}
	return r.find(ctx, q)
}

func (r *MongoRepo) ListBySeller(ctx context.Context, sellerID string) ([]Listing, error) {
	seller, err := objectID(sellerID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"seller": seller}, opts)
}

func (r *MongoRepo) findOneAndUpdate(ctx context.Context, id string, update bson.M) (Listing, error) {
	oid, err := objectID(id)
	if err != nil {
		return Listing{}, err
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc mongoListing
	if err := r.coll.FindOneAndUpdate(timeoutCtx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Listing{}, ErrNotFound
		}
		return Listing{}, fmt.Errorf("update listing: %w", err)
	}
	return doc.toListing(), nil
}

func (r *MongoRepo) Update(ctx context.Context, id string, p Patch) (Listing, error) {
	fields := p.Fields()
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	for _, fv := range fields {
		set[fv.Name] = fv.Value
	}
	return r.findOneAndUpdate(ctx, id, bson.M{"$set": set})
}

func (r *MongoRepo) IncrementViews(ctx context.Context, id string) (Listing, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
}

func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := r.coll.DeleteOne(timeoutCtx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type groupCount struct {
	Key   string `bson:"_id"`
	Count int    `bson:"count"`
}

func (r *MongoRepo) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]groupCount, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	cur, err := r.coll.Aggregate(timeoutCtx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate listings: %w", err)
	}
	var out []groupCount
	if err := cur.All(timeoutCtx, &out); err != nil {
		return nil, fmt.Errorf("decode aggregate: %w", err)
	}
	return out, nil
}

func (r *MongoRepo) CountByStatus(ctx context.Context, sellerID string) (StatusCounts, error) {
	seller, err := objectID(sellerID)
	if err != nil {
		return StatusCounts{}, err
	}
	groups, err := r.aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"seller": seller}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return StatusCounts{}, err
	}
	var counts StatusCounts
	for _, g := range groups {
		counts.Add(Status(g.Key), g.Count)
	}
	return counts, nil
}

func (r *MongoRepo) Stats(ctx context.Context, topGenres int) (Stats, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	total, err := r.coll.CountDocuments(timeoutCtx, bson.M{})
	if err != nil {
		return Stats{}, fmt.Errorf("count listings: %w", err)
	}
	available, err := r.coll.CountDocuments(timeoutCtx, bson.M{"status": string(StatusAvailable)})
	if err != nil {
		return Stats{}, fmt.Errorf("count available listings: %w", err)
	}
	groups, err := r.aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": string(StatusAvailable)}}},
		{{Key: "$group", Value: bson.M{"_id": "$genre", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: topGenres}},
	})
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Total: int(total), Available: int(available), TopGenres: make([]GenreCount, len(groups))}
	for i, g := range groups {
		st.TopGenres[i] = GenreCount{Name: g.Key, Count: g.Count}
	}
	return st, nil
}
