package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// document is the persisted shape of catalog items and cart entries.
type document struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"item_name"`
	Price    float64            `bson:"price"`
	Quantity int                `bson:"quantity"`
}

func (d document) record() record {
	return record{id: d.ID.Hex(), name: d.Name, price: d.Price, quantity: d.Quantity}
}

// MongoOptions configures the MongoDB backend.
type MongoOptions struct {
	URI         string
	Database    string
	MaxPoolSize uint64
}

// MongoStore owns the client connection and both collections.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	items  *MongoItemStore
	cart   *MongoCartStore
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures the
// unique item_name index on both collections.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(opts.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	db := client.Database(opts.Database)
	s := &MongoStore{
		client: client,
		db:     db,
		items:  &MongoItemStore{coll: &mongoCollection{coll: db.Collection(ItemsCollection)}},
		cart:   &MongoCartStore{coll: &mongoCollection{coll: db.Collection(CartCollection)}},
	}

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	for _, c := range []*mongoCollection{s.items.coll, s.cart.coll} {
		if err := c.ensureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}

	return s, nil
}

// Items returns the catalog collection.
func (s *MongoStore) Items() *MongoItemStore {
	return s.items
}

// Cart returns the cart collection.
func (s *MongoStore) Cart() *MongoCartStore {
	return s.cart
}

// Ping checks that the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

// Drop removes the database. Used by tests.
func (s *MongoStore) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}

// mongoCollection implements the name-keyed document operations on a single collection.
type mongoCollection struct {
	coll *mongo.Collection
}

func byName(name string) bson.D {
	return bson.D{{Key: "item_name", Value: name}}
}

func (c *mongoCollection) ensureIndexes(ctx context.Context) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "item_name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("item_name_unique"),
	})
	if err != nil {
		return fmt.Errorf("create index on %s: %w", c.coll.Name(), err)
	}
	return nil
}

func (c *mongoCollection) list(ctx context.Context) ([]record, error) {
	cursor, err := c.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}

	out := make([]record, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.record())
	}
	return out, nil
}

func (c *mongoCollection) get(ctx context.Context, name string) (record, error) {
	var doc document
	err := c.coll.FindOne(ctx, byName(name)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return record{}, ErrNotFound
	}
	if err != nil {
		return record{}, fmt.Errorf("get document: %w", err)
	}
	return doc.record(), nil
}

func (c *mongoCollection) insert(ctx context.Context, rec record) (record, error) {
	doc := document{Name: rec.name, Price: rec.price, Quantity: rec.quantity}

	res, err := c.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return record{}, ErrAlreadyExists
	}
	if err != nil {
		return record{}, fmt.Errorf("insert document: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return doc.record(), nil
}

// update applies update to the document named name when it also matches
// cond. If the document exists but cond does not match, condErr is returned.
func (c *mongoCollection) update(ctx context.Context, name string, cond bson.D, update bson.D, condErr error) (record, error) {
	filter := append(byName(name), cond...)

	var doc document
	err := c.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.record(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return record{}, fmt.Errorf("update document: %w", err)
	}

	if _, err := c.get(ctx, name); err != nil {
		return record{}, err
	}
	if condErr == nil {
		return record{}, ErrNotFound
	}
	return record{}, condErr
}

func (c *mongoCollection) remove(ctx context.Context, name string) error {
	res, err := c.coll.DeleteOne(ctx, byName(name))
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func setFields(price float64, quantity int) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "price", Value: price},
		{Key: "quantity", Value: quantity},
	}}}
}
