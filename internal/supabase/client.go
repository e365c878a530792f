// Package supabase pushes flattened records into a Supabase project through
// its PostgREST surface. There is no DDL capability on this surface, table
// creation is advisory only.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/tally-bridge/backend/internal/schema"
)

// ErrTableMissing is returned when a destination table does not exist. The
// required DDL has been logged, creating the table is a manual dashboard
// action.
var ErrTableMissing = errors.New("destination table does not exist")

const (
	// DefaultBatchSize is the number of records per insert request.
	DefaultBatchSize = 100

	// DefaultBatchPause is the pause between insert batches, to stay under
	// the project's rate limits.
	DefaultBatchPause = 100 * time.Millisecond

	// DefaultTimeout is the per-request timeout against Supabase.
	DefaultTimeout = 30 * time.Second
)

// Config holds the connection settings for one Supabase project.
type Config struct {
	// ProjectURL is the project base URL, e.g. https://xyz.supabase.co.
	ProjectURL string

	// ServiceKey is the service role key. Admin operations bypass RLS.
	ServiceKey string

	// UserID, when set, is written into every inserted row for the
	// per-user RLS policy.
	UserID string

	BatchSize  int
	BatchPause time.Duration
	Timeout    time.Duration
}

// Client is a PostgREST client for one Supabase project.
type Client struct {
	http       *resty.Client
	userID     string
	batchSize  int
	batchPause time.Duration
}

// New returns a Client for the project described by cfg.
func New(cfg Config) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	if cfg.BatchPause <= 0 {
		cfg.BatchPause = DefaultBatchPause
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		http: resty.New().
			SetBaseURL(cfg.ProjectURL+"/rest/v1").
			SetTimeout(cfg.Timeout).
			SetHeader("apikey", cfg.ServiceKey).
			SetHeader("Authorization", "Bearer "+cfg.ServiceKey).
			SetHeader("Content-Type", "application/json").
			SetHeader("Prefer", "return=minimal"),
		userID:     cfg.UserID,
		batchSize:  cfg.BatchSize,
		batchPause: cfg.BatchPause,
	}
}

// Ping checks that the REST surface answers.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/")
	if err != nil {
		return fmt.Errorf("connecting to Supabase: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("Supabase returned HTTP %d", resp.StatusCode())
	}

	return nil
}

// TableExists probes a table through a count select.
func (c *Client) TableExists(ctx context.Context, table string) (bool, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("select", "count").
		Get("/" + table)
	if err != nil {
		return false, fmt.Errorf("probing table %s: %w", table, err)
	}

	return resp.IsSuccess(), nil
}

// ExistingTables returns the subset of candidates that exist in the project.
// Probe failures are skipped, not reported.
func (c *Client) ExistingTables(ctx context.Context, candidates []string) []string {
	existing := []string{}

	for _, table := range candidates {
		ok, err := c.TableExists(ctx, table)
		if err != nil {
			continue
		}

		if ok {
			existing = append(existing, table)
		}
	}

	return existing
}

// EnsureTable checks that a table exists. If it does not, the required DDL is
// logged for the operator and ErrTableMissing is returned.
func (c *Client) EnsureTable(ctx context.Context, table string, columns []schema.Column) error {
	exists, err := c.TableExists(ctx, table)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	log.Warn().
		Str("table", table).
		Msgf("table does not exist, create it in the Supabase dashboard:\n%s", schema.CreateTableSQL(table, columns))

	return fmt.Errorf("%w: %s", ErrTableMissing, table)
}

// Clear deletes all rows of a table.
func (c *Client) Clear(ctx context.Context, table string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		Delete("/" + table)
	if err != nil {
		return fmt.Errorf("clearing table %s: %w", table, err)
	}

	if resp.IsError() {
		return fmt.Errorf("clearing table %s: HTTP %d", table, resp.StatusCode())
	}

	log.Info().Str("table", table).Msg("cleared table")
	return nil
}

// Insert writes records in fixed-size batches with a pause between batches.
// The first failed batch aborts the remaining ones; batches already written
// stay in place, there is no rollback. Insert returns the number of records
// written.
func (c *Client) Insert(ctx context.Context, table string, records []map[string]any) (int, error) {
	if len(records) == 0 {
		log.Info().Str("table", table).Msg("no records to insert")
		return 0, nil
	}

	if c.userID != "" {
		prepared := make([]map[string]any, 0, len(records))
		for _, record := range records {
			row := make(map[string]any, len(record)+1)
			for k, v := range record {
				row[k] = v
			}
			row["user_id"] = c.userID

			prepared = append(prepared, row)
		}

		records = prepared
	}

	written := 0
	for start := 0; start < len(records); start += c.batchSize {
		end := min(start+c.batchSize, len(records))
		batch := records[start:end]

		if start > 0 {
			select {
			case <-time.After(c.batchPause):
			case <-ctx.Done():
				return written, ctx.Err()
			}
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(batch).
			Post("/" + table)
		if err != nil {
			return written, fmt.Errorf("inserting into %s: %w", table, err)
		}

		if resp.IsError() {
			return written, fmt.Errorf("inserting into %s: HTTP %d: %s", table, resp.StatusCode(), resp.String())
		}

		written += len(batch)
		log.Debug().Str("table", table).Int("records", written).Msg("inserted batch")
	}

	return written, nil
}
