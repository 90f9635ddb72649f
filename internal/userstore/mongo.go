package userstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/thanhdat24/code-learning/internal/progress"
)

// Mongo stores one document per user in a collection, keyed on the
// username field. Documents use the same field names as the JSON wire
// format.
type Mongo struct {
	client *mongo.Client
	col    *mongo.Collection
}

// DialMongo connects to uri and ensures a unique index on username.
func DialMongo(ctx context.Context, uri, db, collection string) (*Mongo, error) {
	if uri == "" {
		return nil, errors.New("MONGODB_URI is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	col := client.Database(db).Collection(collection)
	_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &Mongo{client: client, col: col}, nil
}

func (m *Mongo) Find(ctx context.Context, username string) (*progress.Record, error) {
	var doc bson.M
	opts := options.FindOne().SetProjection(bson.M{"_id": 0})
	err := m.col.FindOne(ctx, bson.M{"username": username}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return fromDocument(doc)
}

func (m *Mongo) Upsert(ctx context.Context, r progress.Record) error {
	doc, err := toDocument(r)
	if err != nil {
		return err
	}
	_, err = m.col.UpdateOne(ctx,
		bson.M{"username": r.Username},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("mongo upsert: %w", err)
	}
	return nil
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// toDocument goes through JSON so stored field names match the wire
// format rather than the driver's lowercased defaults.
func toDocument(r progress.Record) (bson.M, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("convert record: %w", err)
	}
	return doc, nil
}

func fromDocument(doc bson.M) (*progress.Record, error) {
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert document: %w", err)
	}
	return decodeRecord(data)
}
