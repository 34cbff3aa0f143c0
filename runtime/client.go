package runtime

import (
	"fmt"
	"sync"

	"github.com/chorm-dev/chorm/internal/core/schema"
)

// Client owns the table registry and the execution collaborator. The
// registry is explicitly scoped to the client instance: two clients in
// one process never share state.
type Client struct {
	config *Config

	mu     sync.RWMutex
	tables map[string]*schema.Table
}

// NewClient creates a client from functional options.
func NewClient(opts ...Option) *Client {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	return &Client{
		config: config,
		tables: make(map[string]*schema.Table),
	}
}

// Register adds a validated table to the client's registry. Registering
// the same name twice replaces the previous table.
func (c *Client) Register(table *schema.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[table.Name()] = table
}

// Table returns a registered table by name.
func (c *Client) Table(name string) (*schema.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotRegistered, name)
	}
	return table, nil
}

// Tables returns the names of all registered tables.
func (c *Client) Tables() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	return names
}

// Model starts a query chain over a registered table.
func (c *Client) Model(name string) (*Model, error) {
	table, err := c.Table(name)
	if err != nil {
		return nil, err
	}
	return newModel(c, table), nil
}

func (c *Client) executor() (Executor, error) {
	if c.config.Executor == nil {
		return nil, ErrNoExecutor
	}
	return c.config.Executor, nil
}

func (c *Client) logQuery(sql string, params map[string]interface{}) {
	if c.config.LogQueries && c.config.Logger != nil {
		c.config.Logger.Printf("chorm: %s params=%v", sql, params)
	}
}
