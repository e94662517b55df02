// client.go

package sqlmongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultTimeout bounds connection and ping when none is given
const DefaultTimeout = 5 * time.Second

// ============================================
// CLIENT STRUCT
// ============================================

// Client wraps a MongoDB connection used to check that a target deployment
// is reachable. It never executes translated queries.
type Client struct {
	mongo   *mongo.Client
	timeout time.Duration
}

// ConnectionStatus is the outcome of TestConnection
type ConnectionStatus struct {
	Connected bool     `json:"connected"`
	LatencyMS int64    `json:"latency_ms"`
	Databases []string `json:"databases,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// ============================================
// CONSTRUCTORS
// ============================================

// Connect opens a client for uri. The driver connects lazily; call Ping to
// verify the deployment.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*Client, error) {
	if uri == "" {
		return nil, errors.New("mongodb uri is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mongodb uri: %w", err)
	}

	mc, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect error: %w", err)
	}
	return &Client{mongo: mc, timeout: timeout}, nil
}

// ============================================
// OPERATIONS
// ============================================

// Ping checks the primary within the client timeout
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.mongo.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping error: %w", err)
	}
	return nil
}

// ListCollections returns the collection names of database db
func (c *Client) ListCollections(ctx context.Context, db string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	names, err := c.mongo.Database(db).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections error: %w", err)
	}
	return names, nil
}

// ListDatabases returns the database names visible to the connection
func (c *Client) ListDatabases(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	names, err := c.mongo.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list databases error: %w", err)
	}
	return names, nil
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.mongo.Disconnect(ctx)
}

// TestConnection connects, pings and lists databases. Failures are
// reported in the status; the error is only returned for an unusable uri.
func TestConnection(ctx context.Context, uri string, timeout time.Duration) (*ConnectionStatus, error) {
	c, err := Connect(ctx, uri, timeout)
	if err != nil {
		return nil, err
	}
	defer c.Close(context.Background())

	start := time.Now()
	if err := c.Ping(ctx); err != nil {
		return &ConnectionStatus{Error: err.Error()}, nil
	}
	status := &ConnectionStatus{
		Connected: true,
		LatencyMS: time.Since(start).Milliseconds(),
	}

	// listing needs privileges the user may not have
	if dbs, err := c.ListDatabases(ctx); err == nil {
		status.Databases = dbs
	}
	return status, nil
}
