package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultDatabase = "test"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI string
	// Database overrides the database named in URI. When both are empty the
	// driver's conventional "test" database is used.
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	name, err := DatabaseName(cfg.URI, cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(name), nil
}

// DatabaseName resolves the database to use: override, then the path of the
// connection string, then "test".
func DatabaseName(uri, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("mongo uri: %w", err)
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	return defaultDatabase, nil
}
