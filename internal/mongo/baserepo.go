package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultMongoURL = "mongodb://localhost:27017"
	defaultDBName   = "dopplebar"
	connectTimeout  = 10 * time.Second
)

// BaseRepo owns the Mongo client shared by the collection repos. Start it
// before building the repos and hand its Stop to the service lifecycle.
type BaseRepo struct {
	client *mongo.Client
	db     *mongo.Database
	logger aqm.Logger
	config *aqm.Config
}

func NewBaseRepo(config *aqm.Config, logger aqm.Logger) *BaseRepo {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &BaseRepo{
		logger: logger,
		config: config,
	}
}

func (r *BaseRepo) Start(ctx context.Context) error {
	url := r.config.GetStringOrDef("db.mongo.url", defaultMongoURL)
	dbName := r.config.GetStringOrDef("db.mongo.name", defaultDBName)

	opts := options.Client().ApplyURI(url).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("cannot reach MongoDB primary: %w", err)
	}

	r.client = client
	r.db = client.Database(dbName)

	r.logger.Info("connected to MongoDB", "url", url, "database", dbName)
	return nil
}

func (r *BaseRepo) Stop(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
	}
	r.logger.Info("disconnected from MongoDB")
	return nil
}

func (r *BaseRepo) GetDatabase() *mongo.Database {
	return r.db
}
