// Package graph mirrors the supply chain into a Memgraph/Neo4j graph store over Bolt
package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sequoia/pkg/tracing"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config holds graph database configuration
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Client wraps the Bolt driver. Sessions are opened per call; the driver
// pools connections underneath.
type Client struct {
	driver neo4j.DriverWithContext
	logger ectologger.Logger
}

// NewClient builds the driver. Connectivity is not checked here; startup
// calls VerifyConnectivity once the dependency order allows it.
func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	uri := fmt.Sprintf("bolt://%s:%d", cfg.Host, cfg.Port)

	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph driver: %w", err)
	}

	return &Client{
		driver: driver,
		logger: logger,
	}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// ExecuteWrite runs a write transaction
func (c *Client) ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	return c.execute(ctx, neo4j.AccessModeWrite, "graph.Client.ExecuteWrite", work)
}

// ExecuteRead runs a read transaction
func (c *Client) ExecuteRead(ctx context.Context, work neo4j.ManagedTransactionWork) (any, error) {
	return c.execute(ctx, neo4j.AccessModeRead, "graph.Client.ExecuteRead", work)
}

func (c *Client) execute(ctx context.Context, mode neo4j.AccessMode, spanName string, work neo4j.ManagedTransactionWork) (any, error) {
	ctx, span := tracing.StartSpan(ctx, spanName)
	defer span.End()

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode})
	defer session.Close(ctx)

	if mode == neo4j.AccessModeRead {
		return session.ExecuteRead(ctx, work)
	}
	return session.ExecuteWrite(ctx, work)
}
