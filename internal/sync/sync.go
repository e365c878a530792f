// Package sync runs the one-way Tally to Supabase synchronization: fetch,
// flatten, transform, push. There is no delta detection and no rollback, a
// run replaces the destination tables wholesale.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tally-bridge/backend/internal/config"
	"github.com/tally-bridge/backend/internal/schema"
	"github.com/tally-bridge/backend/internal/supabase"
	"github.com/tally-bridge/backend/internal/tally"
)

// ErrNoCompanies is returned when Tally reports no companies, there is
// nothing to sync then.
var ErrNoCompanies = errors.New("no companies found in Tally")

// Syncer orchestrates one synchronization run.
type Syncer struct {
	tally      *tally.Client
	db         *supabase.Client
	mapping    config.Mapping
	sampleSize int
	from, to   time.Time
}

// New returns a Syncer. All collaborators are passed in explicitly, the
// Syncer holds no global state.
func New(tallyClient *tally.Client, db *supabase.Client, mapping config.Mapping, sampleSize int, from, to time.Time) *Syncer {
	return &Syncer{
		tally:      tallyClient,
		db:         db,
		mapping:    mapping,
		sampleSize: sampleSize,
		from:       from,
		to:         to,
	}
}

// EntityResult is the outcome of one entity sync unit.
type EntityResult struct {
	Entity   tally.Entity `json:"entity"`
	Table    string       `json:"table"`
	Fetched  int          `json:"fetched"`
	Inserted int          `json:"inserted"`
	Note     string       `json:"note,omitempty"`
	Error    string       `json:"error,omitempty"`
}

// Outcome is the result of one run. A run with failed entities still
// completes the remaining ones, Failed reports whether anything went wrong.
type Outcome struct {
	RunID      uuid.UUID      `json:"run_id"`
	Company    string         `json:"company"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Results    []EntityResult `json:"results"`
}

// Failed reports whether any entity sync unit failed.
func (o Outcome) Failed() bool {
	for _, r := range o.Results {
		if r.Error != "" {
			return true
		}
	}

	return false
}

// Run performs one synchronization. Entities are synced in a fixed order so
// that parents land before the records referencing them. A failure in one
// entity is recorded and the run continues with the next; only a failure to
// reach Tally at all aborts the run.
func (s *Syncer) Run(ctx context.Context) (Outcome, error) {
	outcome := Outcome{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
	}

	companies, err := s.tally.Companies(ctx)
	if err != nil {
		return outcome, fmt.Errorf("could not fetch companies: %w", err)
	}

	if len(companies) == 0 {
		return outcome, ErrNoCompanies
	}

	// All company-scoped fetches use the first company, like the
	// destination schema expects.
	company, _ := companies[0]["Name"].(string)
	outcome.Company = company

	log.Info().Str("run-id", outcome.RunID.String()).Str("company", company).Msg("sync started")

	for _, entity := range tally.Entities() {
		records, err := s.fetch(ctx, entity, companies, company)
		outcome.Results = append(outcome.Results, s.syncEntity(ctx, entity, records, company, err))
	}

	outcome.FinishedAt = time.Now()

	log.Info().
		Str("run-id", outcome.RunID.String()).
		Bool("failed", outcome.Failed()).
		Dur("duration", outcome.FinishedAt.Sub(outcome.StartedAt)).
		Msg("sync finished")

	return outcome, nil
}

func (s *Syncer) fetch(ctx context.Context, entity tally.Entity, companies []tally.Record, company string) ([]tally.Record, error) {
	switch entity {
	case tally.EntityCompany:
		return companies, nil
	case tally.EntityGroup:
		return s.tally.Groups(ctx, company)
	case tally.EntityLedger:
		return s.tally.Ledgers(ctx, company)
	case tally.EntityDivision:
		return s.tally.Divisions(ctx, company)
	case tally.EntityVoucher:
		return s.tally.Vouchers(ctx, company, s.from, s.to)
	case tally.EntityVoucherEntry:
		return s.tally.VoucherEntries(ctx, company, s.from, s.to)
	}

	return nil, fmt.Errorf("unknown entity type %q", entity)
}

// syncEntity pushes one entity type into its destination table. Each step is
// independently fallible, the first failing step marks the unit failed.
// Already written batches stay in place.
func (s *Syncer) syncEntity(ctx context.Context, entity tally.Entity, records []tally.Record, company string, fetchErr error) EntityResult {
	result := EntityResult{
		Entity: entity,
		Table:  s.mapping.Table(entity),
	}

	if fetchErr != nil {
		return s.fail(result, fetchErr)
	}

	result.Fetched = len(records)

	// Zero records is success with nothing to do, not an error.
	if len(records) == 0 {
		result.Note = "no data"
		log.Info().Str("entity", string(entity)).Msg("no data, skipping")
		return result
	}

	rows := transform(entity, records, company)
	columns := schema.Infer(rows, s.sampleSize)

	if err := s.db.EnsureTable(ctx, result.Table, columns); err != nil {
		return s.fail(result, err)
	}

	if err := s.db.Clear(ctx, result.Table); err != nil {
		return s.fail(result, err)
	}

	inserted, err := s.db.Insert(ctx, result.Table, rows)
	result.Inserted = inserted
	if err != nil {
		return s.fail(result, err)
	}

	recordsSynced.WithLabelValues(string(entity)).Add(float64(inserted))
	log.Info().Str("entity", string(entity)).Int("records", inserted).Str("table", result.Table).Msg("synced")

	return result
}

func (s *Syncer) fail(result EntityResult, err error) EntityResult {
	result.Error = err.Error()
	entityFailures.WithLabelValues(string(result.Entity)).Inc()
	log.Error().Err(err).Str("entity", string(result.Entity)).Msg("entity sync failed")

	return result
}
