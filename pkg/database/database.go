package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stationly/stationly/pkg/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var MongoGlobalInstance *MongoInstance

const defaultConnectionString = "mongodb://localhost:27017/"
const defaultDatabase = "stationly"

const (
	StationsCollection     = "stations"
	ModesCollection        = "transport_modes"
	LinesCollection        = "lines"
	LineRoutesCollection   = "line_routes"
	LineStatusesCollection = "line_statuses"
)

func Connect() error {
	connectionString := defaultConnectionString
	dbName := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["STATIONLY_MONGODB_CONNECTION"] != "" {
		connectionString = env["STATIONLY_MONGODB_CONNECTION"]
	}

	if env["STATIONLY_MONGODB_DATABASE"] != "" {
		dbName = env["STATIONLY_MONGODB_DATABASE"]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	MongoGlobalInstance = &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
	}

	if err := client.Ping(context.Background(), nil); err != nil {
		return err
	}

	createIndexes()

	return nil
}

func GetCollection(collectionName string) *mongo.Collection {
	return MongoGlobalInstance.Database.Collection(collectionName)
}

func createIndexes() {
	stationsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "naptanid", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "searchkeys", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "stoptype", Value: 1}},
		},
	}

	_, err := GetCollection(StationsCollection).Indexes().CreateMany(context.Background(), stationsIndex, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}

	linesIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "modename", Value: 1}},
		},
	}

	_, err = GetCollection(LinesCollection).Indexes().CreateMany(context.Background(), linesIndex, options.CreateIndexes())
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
