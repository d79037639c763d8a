package graph

import (
	"context"
	"errors"
)

// Client defines the minimal contract required by the repositories to interact
// with the underlying graph database. Every call runs in its own session or
// snapshot which is released before the call returns.
type Client interface {
	ExecuteWrite(ctx context.Context, query string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, query string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// Record groups key-value pairs returned from the graph engine.
type Record map[string]any

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")

// ErrMissingDatabase indicates the Spanner database path is not provided.
var ErrMissingDatabase = errors.New("spanner database path is required")
