package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Client is a PostgreSQL client with connection pooling.
type Client struct {
	DB *pgxpool.Pool
}

// NewClient creates a new PostgreSQL client.
func NewClient(db *pgxpool.Pool) *Client {
	return &Client{DB: db}
}

// ValidateQueries prepares every statement on a single connection so that a
// schema mismatch surfaces at startup instead of on the first request.
func (c *Client) ValidateQueries(ctx context.Context, statements map[string]string) error {
	conn, err := c.DB.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for statement validation: %w", err)
	}
	defer conn.Release()

	for name, sql := range statements {
		if _, err := conn.Conn().Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
	}

	return nil
}

// Close releases the underlying pool.
func (c *Client) Close() {
	c.DB.Close()
}
