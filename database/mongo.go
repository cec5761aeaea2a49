// Package database holds the Mongo client bootstrap shared by every
// repository package. Adapted from the teacher's database/db.go.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"caretime/logging"
)

// Client is the process-wide MongoDB client instance.
var Client *mongo.Client

// DB is the process-wide database handle, scoped to config.AppConfig.MongoDatabase.
var DB *mongo.Database

// Connect dials MongoDB and verifies connectivity with a ping. Call once
// during startup; Client/DB are populated for repositories to use.
func Connect(uri, dbName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}

	Client = client
	DB = client.Database(dbName)
	logging.L().Info("connected to mongodb", zap.String("database", dbName))
	return nil
}

// Disconnect closes the client connection. Call during graceful shutdown.
func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}
