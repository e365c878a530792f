package tally

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout is the request timeout against Tally. A hung Tally instance
// blocks the caller for the full timeout, there is no mid-request
// cancellation beyond the context.
const DefaultTimeout = 30 * time.Second

// elementTag maps an entity type to the response element that carries one
// instance of it.
var elementTag = map[Entity]string{
	EntityCompany:      "COMPANY",
	EntityGroup:        "GROUP",
	EntityLedger:       "LEDGER",
	EntityDivision:     "COSTCENTRE",
	EntityVoucher:      "VOUCHER",
	EntityVoucherEntry: "LEDGERENTRY",
}

// voucherContext is the parent context copied onto every flattened ledger
// entry of a voucher.
var voucherContext = FieldSet{
	{Tag: "VOUCHERNUMBER", Key: "VoucherNumber"},
	{Tag: "DATE", Key: "VoucherDate"},
	{Tag: "VOUCHERTYPENAME", Key: "VoucherType"},
}

// Client talks to a local Tally instance over its XML-over-HTTP interface.
type Client struct {
	http    *resty.Client
	fields  map[Entity]FieldSet
	reports []string
	cache   *ttlCache
}

// Option configures a Client.
type Option func(*Client)

// WithFields overrides the per-entity field lists.
func WithFields(fields map[Entity]FieldSet) Option {
	return func(c *Client) {
		c.fields = fields
	}
}

// WithReports overrides the voucher report names tried in order.
func WithReports(reports []string) Option {
	return func(c *Client) {
		c.reports = reports
	}
}

// WithCacheTTL overrides the record cache TTL. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = newTTLCache(ttl)
	}
}

// NewClient returns a Client for the Tally instance at baseURL, usually
// http://localhost:9000.
func NewClient(baseURL string, timeout time.Duration, options ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/xml"),
		fields:  DefaultFields(),
		reports: []string{"DayBook", "Voucher Register", "LedgerVouchers"},
		cache:   newTTLCache(DefaultCacheTTL),
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// send posts one request envelope and returns the parsed response tree.
func (c *Client) send(ctx context.Context, body string) (*Node, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("")
	if err != nil {
		return nil, fmt.Errorf("sending request to Tally: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("Tally returned HTTP %d", resp.StatusCode())
	}

	return Parse(resp.String())
}

// Ping checks that Tally answers a minimal company list request.
func (c *Client) Ping(ctx context.Context) error {
	body, err := CollectionRequest("Ping", "Company", []string{"NAME"}, "")
	if err != nil {
		return err
	}

	_, err = c.send(ctx, body)
	return err
}

// Companies returns the companies known to the Tally instance.
func (c *Client) Companies(ctx context.Context) ([]Record, error) {
	return c.fetchCollection(ctx, EntityCompany, "List of Companies", "Company", "")
}

// Groups returns the account groups of a company.
func (c *Client) Groups(ctx context.Context, company string) ([]Record, error) {
	return c.fetchCollection(ctx, EntityGroup, "List of Groups", "Group", company)
}

// Ledgers returns the ledgers of a company.
func (c *Client) Ledgers(ctx context.Context, company string) ([]Record, error) {
	return c.fetchCollection(ctx, EntityLedger, "List of Ledgers", "Ledger", company)
}

// Divisions returns the cost centres of a company.
func (c *Client) Divisions(ctx context.Context, company string) ([]Record, error) {
	return c.fetchCollection(ctx, EntityDivision, "List of Cost Centres", "CostCentre", company)
}

// Vouchers returns the vouchers of a company for the given date window.
func (c *Client) Vouchers(ctx context.Context, company string, from, to time.Time) ([]Record, error) {
	key := cacheKey(EntityVoucher, company, from, to)
	if records, ok := c.cache.get(key); ok {
		return records, nil
	}

	root, err := c.exportVouchers(ctx, company, from, to)
	if err != nil {
		return nil, err
	}

	records := Flatten(root, elementTag[EntityVoucher], c.fields[EntityVoucher])
	c.cache.put(key, records)

	return records, nil
}

// VoucherEntries returns the ledger entries nested inside the vouchers of a
// company, each annotated with its voucher's number, date and type.
func (c *Client) VoucherEntries(ctx context.Context, company string, from, to time.Time) ([]Record, error) {
	key := cacheKey(EntityVoucherEntry, company, from, to)
	if records, ok := c.cache.get(key); ok {
		return records, nil
	}

	root, err := c.exportVouchers(ctx, company, from, to)
	if err != nil {
		return nil, err
	}

	records := []Record{}
	for _, voucher := range root.FindAll(elementTag[EntityVoucher]) {
		parent := flattenOne(voucher, voucherContext)

		for _, entry := range voucher.FindAll(elementTag[EntityVoucherEntry]) {
			record := flattenOne(entry, c.fields[EntityVoucherEntry])
			for k, v := range parent {
				record[k] = v
			}

			records = append(records, record)
		}
	}

	c.cache.put(key, records)

	return records, nil
}

// fetchCollection sends a TYPE=Collection request and flattens the matching
// elements of the response.
func (c *Client) fetchCollection(ctx context.Context, entity Entity, id, objectType, company string) ([]Record, error) {
	key := cacheKey(entity, company)
	if records, ok := c.cache.get(key); ok {
		return records, nil
	}

	fields := c.fields[entity]

	body, err := CollectionRequest(id, objectType, fields.Tags(), company)
	if err != nil {
		return nil, err
	}

	root, err := c.send(ctx, body)
	if err != nil {
		return nil, err
	}

	records := Flatten(root, elementTag[entity], fields)
	log.Debug().Str("entity", string(entity)).Int("records", len(records)).Msg("fetched from Tally")

	c.cache.put(key, records)

	return records, nil
}

// exportVouchers tries the configured report names in order until one returns
// voucher data. Tally installations differ in which report names work, so
// this is the only place with a sequenced fallback.
func (c *Client) exportVouchers(ctx context.Context, company string, from, to time.Time) (*Node, error) {
	var lastErr error
	var lastEmpty *Node

	for _, report := range c.reports {
		body, err := ExportRequest(report, company, from, to)
		if err != nil {
			return nil, err
		}

		root, err := c.send(ctx, body)
		if err != nil {
			log.Warn().Err(err).Str("report", report).Msg("voucher report failed, trying next")
			lastErr = err
			continue
		}

		if len(root.FindAll(elementTag[EntityVoucher])) > 0 {
			return root, nil
		}

		lastEmpty = root
	}

	// An empty DayBook is a valid answer: no vouchers in the window.
	if lastEmpty != nil {
		return lastEmpty, nil
	}

	return nil, fmt.Errorf("no voucher report succeeded: %w", lastErr)
}

func cacheKey(entity Entity, company string, window ...time.Time) string {
	key := string(entity) + "/" + company
	for _, t := range window {
		key += "/" + t.Format(DateFormat)
	}

	return key
}
