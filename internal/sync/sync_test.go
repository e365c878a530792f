package sync_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-bridge/backend/internal/config"
	"github.com/tally-bridge/backend/internal/supabase"
	"github.com/tally-bridge/backend/internal/sync"
	"github.com/tally-bridge/backend/internal/tally"
)

// fakeTally serves a small company with groups, ledgers and one voucher.
// Divisions are empty on purpose.
func fakeTally() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		request := string(body)

		var response string
		switch {
		case strings.Contains(request, "<TYPE>Company</TYPE>"):
			response = `<ENVELOPE><COLLECTION><COMPANY><NAME>Acme</NAME><GUID>g1</GUID></COMPANY></COLLECTION></ENVELOPE>`
		case strings.Contains(request, "<TYPE>Group</TYPE>"):
			response = `<ENVELOPE><COLLECTION><GROUP><NAME>Assets</NAME><GUID>g2</GUID></GROUP></COLLECTION></ENVELOPE>`
		case strings.Contains(request, "<TYPE>Ledger</TYPE>"):
			response = `<ENVELOPE><COLLECTION>
				<LEDGER><NAME>Cash</NAME><GUID>g3</GUID><OPENINGBALANCE>100.00</OPENINGBALANCE></LEDGER>
				<LEDGER><NAME>Bank</NAME><GUID>g4</GUID></LEDGER>
			</COLLECTION></ENVELOPE>`
		case strings.Contains(request, "<TYPE>CostCentre</TYPE>"):
			response = `<ENVELOPE><COLLECTION></COLLECTION></ENVELOPE>`
		case strings.Contains(request, "<REPORTNAME>"):
			response = `<ENVELOPE><VOUCHER>
				<VOUCHERNUMBER>V-1</VOUCHERNUMBER><DATE>20230401</DATE><VOUCHERTYPENAME>Sales</VOUCHERTYPENAME><AMOUNT>150.50</AMOUNT>
				<LEDGERENTRY><LEDGERNAME>Cash</LEDGERNAME><AMOUNT>150.50</AMOUNT></LEDGERENTRY>
			</VOUCHER></ENVELOPE>`
		}

		_, _ = w.Write([]byte(response))
	}))
}

// fakeSupabase records the rows written per table. Tables listed in missing
// answer 404 on the existence probe.
type fakeSupabase struct {
	rows    map[string][]map[string]any
	cleared []string
	missing map[string]bool
}

func (f *fakeSupabase) server() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")

		switch r.Method {
		case http.MethodGet:
			if f.missing[table] {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`[]`))
		case http.MethodDelete:
			f.cleared = append(f.cleared, table)
		case http.MethodPost:
			var batch []map[string]any
			_ = json.NewDecoder(r.Body).Decode(&batch)
			f.rows[table] = append(f.rows[table], batch...)
			w.WriteHeader(http.StatusCreated)
		}
	}))
}

func newSyncer(tallyURL, supabaseURL string) *sync.Syncer {
	tallyClient := tally.NewClient(tallyURL, time.Second, tally.WithCacheTTL(0))
	db := supabase.New(supabase.Config{
		ProjectURL: supabaseURL,
		ServiceKey: "k",
		BatchPause: time.Millisecond,
	})

	return sync.New(tallyClient, db, config.DefaultMapping(), 10, time.Time{}, time.Time{})
}

func TestRun(t *testing.T) {
	tallySrv := fakeTally()
	defer tallySrv.Close()

	db := &fakeSupabase{rows: map[string][]map[string]any{}, missing: map[string]bool{}}
	dbSrv := db.server()
	defer dbSrv.Close()

	outcome, err := newSyncer(tallySrv.URL, dbSrv.URL).Run(t.Context())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, outcome.RunID)
	assert.Equal(t, "Acme", outcome.Company)
	assert.False(t, outcome.Failed())
	require.Len(t, outcome.Results, 6)

	byEntity := map[tally.Entity]sync.EntityResult{}
	for _, r := range outcome.Results {
		byEntity[r.Entity] = r
	}

	assert.Equal(t, 1, byEntity[tally.EntityCompany].Inserted)
	assert.Equal(t, 1, byEntity[tally.EntityGroup].Inserted)
	assert.Equal(t, 2, byEntity[tally.EntityLedger].Inserted)
	assert.Equal(t, 1, byEntity[tally.EntityVoucher].Inserted)
	assert.Equal(t, 1, byEntity[tally.EntityVoucherEntry].Inserted)

	// Empty divisions are success with a note, not an error
	assert.Equal(t, "no data", byEntity[tally.EntityDivision].Note)
	assert.Empty(t, byEntity[tally.EntityDivision].Error)
	assert.Zero(t, byEntity[tally.EntityDivision].Inserted)

	// Tables are cleared before the insert, except the empty one
	assert.Contains(t, db.cleared, "tally_companies")
	assert.Contains(t, db.cleared, "tally_ledgers")
	assert.NotContains(t, db.cleared, "tally_divisions")

	// Destination rows use snake_case names and carry the company
	require.Len(t, db.rows["tally_ledgers"], 2)
	assert.Equal(t, "Cash", db.rows["tally_ledgers"][0]["name"])
	assert.Equal(t, "Acme", db.rows["tally_ledgers"][0]["company"])
	assert.Equal(t, "g1", db.rows["tally_companies"][0]["tally_guid"])
}

func TestRunNoCompanies(t *testing.T) {
	tallySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<ENVELOPE><COLLECTION></COLLECTION></ENVELOPE>`))
	}))
	defer tallySrv.Close()

	db := &fakeSupabase{rows: map[string][]map[string]any{}, missing: map[string]bool{}}
	dbSrv := db.server()
	defer dbSrv.Close()

	_, err := newSyncer(tallySrv.URL, dbSrv.URL).Run(t.Context())
	require.ErrorIs(t, err, sync.ErrNoCompanies)
}

func TestRunTallyUnreachable(t *testing.T) {
	tallySrv := fakeTally()
	tallySrv.Close()

	db := &fakeSupabase{rows: map[string][]map[string]any{}, missing: map[string]bool{}}
	dbSrv := db.server()
	defer dbSrv.Close()

	_, err := newSyncer(tallySrv.URL, dbSrv.URL).Run(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not fetch companies")
}

// A missing destination table fails that entity and the run carries on with
// the remaining ones.
func TestRunMissingTable(t *testing.T) {
	tallySrv := fakeTally()
	defer tallySrv.Close()

	db := &fakeSupabase{rows: map[string][]map[string]any{}, missing: map[string]bool{"tally_groups": true}}
	dbSrv := db.server()
	defer dbSrv.Close()

	outcome, err := newSyncer(tallySrv.URL, dbSrv.URL).Run(t.Context())
	require.NoError(t, err)

	assert.True(t, outcome.Failed())

	byEntity := map[tally.Entity]sync.EntityResult{}
	for _, r := range outcome.Results {
		byEntity[r.Entity] = r
	}

	assert.Contains(t, byEntity[tally.EntityGroup].Error, "does not exist")
	assert.Empty(t, db.rows["tally_groups"])

	// Later entities still synced
	assert.Equal(t, 2, byEntity[tally.EntityLedger].Inserted)
	assert.Len(t, db.rows["tally_ledgers"], 2)
}
