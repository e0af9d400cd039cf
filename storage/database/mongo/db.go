package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/entregas/core"
)

const (
	usersCollection      = "users"
	deliveriesCollection = "deliveries"

	defaultCloseTimeout = 5 * time.Second
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ core.Pinger = (*DB)(nil) // interface compliance check

// Open connects to the configured MongoDB server and makes sure the indexes exist.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	opts := options.Client().
		ApplyURI(conf.Database.URI).
		SetAppName(conf.AppName).
		SetServerSelectionTimeout(conf.Database.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}

	db := &DB{client: client, db: client.Database(conf.Database.Name)}
	if err = db.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return db, nil
}

func (db *DB) EnsureIndexes(ctx context.Context) error {
	_, err := db.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "identifier", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "creating users index")
	}

	_, err = db.db.Collection(deliveriesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return errors.Wrap(err, "creating deliveries indexes")
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

func (db *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultCloseTimeout)
	defer cancel()
	return db.client.Disconnect(ctx)
}
