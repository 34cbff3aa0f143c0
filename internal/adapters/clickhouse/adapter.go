// Package clickhouse implements the execution collaborator over the
// ClickHouse HTTP interface. The core's {paramN:Type} placeholder syntax
// is ClickHouse's native named-parameter syntax, so statements pass
// through untouched and parameters travel as param_<name> query
// parameters.
package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chorm-dev/chorm/internal/core/schema/typemap"
	"github.com/chorm-dev/chorm/runtime"
)

// Config configures the HTTP adapter.
type Config struct {
	// URL is the base HTTP endpoint, e.g. http://localhost:8123.
	URL string

	// Database is the target database. Optional.
	Database string

	// Username and Password are the HTTP basic-auth credentials.
	Username string
	Password string

	// Timeout bounds a single request. Default: 30s.
	Timeout time.Duration
}

// Adapter routes statements to a ClickHouse server over HTTP.
type Adapter struct {
	config Config
	client *http.Client
}

// New creates an adapter. The connection is stateless; there is nothing
// to open or close.
func New(config Config) (*Adapter, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("clickhouse: URL is required")
	}
	if _, err := url.Parse(config.URL); err != nil {
		return nil, fmt.Errorf("clickhouse: invalid URL: %w", err)
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Adapter{
		config: config,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Query runs a read statement and decodes JSONEachRow output.
func (a *Adapter) Query(ctx context.Context, sql string, params map[string]interface{}) ([]runtime.Row, error) {
	body, err := a.send(ctx, sql+" FORMAT JSONEachRow", params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var rows []runtime.Row
	decoder := json.NewDecoder(body)
	decoder.UseNumber()
	for decoder.More() {
		var row runtime.Row
		if err := decoder.Decode(&row); err != nil {
			return nil, fmt.Errorf("clickhouse: decode row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Exec runs a write or DDL statement. No rows are expected.
func (a *Adapter) Exec(ctx context.Context, sql string, params map[string]interface{}) error {
	body, err := a.send(ctx, sql, params)
	if err != nil {
		return err
	}
	body.Close()
	return nil
}

func (a *Adapter) send(ctx context.Context, sql string, params map[string]interface{}) (io.ReadCloser, error) {
	endpoint, err := url.Parse(a.config.URL)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: invalid URL: %w", err)
	}

	values := endpoint.Query()
	if a.config.Database != "" {
		values.Set("database", a.config.Database)
	}
	for name, value := range params {
		values.Set("param_"+name, encodeParam(value))
	}
	endpoint.RawQuery = values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(sql))
	if err != nil {
		return nil, fmt.Errorf("clickhouse: build request: %w", err)
	}
	if a.config.Username != "" {
		req.SetBasicAuth(a.config.Username, a.config.Password)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		message, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("clickhouse: status %d: %s", resp.StatusCode, strings.TrimSpace(string(message)))
	}
	return resp.Body, nil
}

// encodeParam renders a parameter value in ClickHouse's HTTP parameter
// format. Booleans encode as 0/1 to match the UInt8 wire token; times
// encode in the canonical DateTime layout in UTC.
func encodeParam(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "\\N"
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return v
	case *big.Int:
		return v.String()
	case time.Time:
		return v.UTC().Format(typemap.DateTimeLayout)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, "'"+strings.ReplaceAll(s, "'", "\\'")+"'")
				continue
			}
			parts = append(parts, encodeParam(item))
		}
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Ensure Adapter implements the executor contract.
var _ runtime.Executor = (*Adapter)(nil)
