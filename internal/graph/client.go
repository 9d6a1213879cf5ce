// Package graph wraps the graph database that can hold networks as an
// alternative to CSV edge lists.
package graph

import (
	"context"

	"github.com/pkg/errors"
)

// Client is the minimal Cypher contract the edge repository relies on.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// Record groups the named columns of one returned row.
type Record map[string]any

// String returns the column as a string, failing on a missing or non-string value.
func (r Record) String(key string) (string, error) {
	v, ok := r[key]
	if !ok {
		return "", errors.Errorf("column %q missing", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("column %q is %T, not string", key, v)
	}
	return s, nil
}

// Int64 returns the column as an int64. Bolt returns integers as int64.
func (r Record) Int64(key string) (int64, error) {
	switch v := r[key].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case nil:
		return 0, errors.Errorf("column %q missing", key)
	default:
		return 0, errors.Errorf("column %q is %T, not integer", key, v)
	}
}

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
