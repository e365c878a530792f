package tally_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-bridge/backend/internal/tally"
)

func TestCollectionRequest(t *testing.T) {
	body, err := tally.CollectionRequest("List of Ledgers", "Ledger", []string{"NAME", "GUID", "PARENT"}, "Acme")
	require.NoError(t, err)

	assert.Contains(t, body, "<TALLYREQUEST>Export</TALLYREQUEST>")
	assert.Contains(t, body, "<TYPE>Collection</TYPE>")
	assert.Contains(t, body, "<ID>List of Ledgers</ID>")
	assert.Contains(t, body, "<SVCOMPANYCONNECT>Acme</SVCOMPANYCONNECT>")
	assert.Contains(t, body, `<COLLECTION NAME="List of Ledgers">`)
	assert.Contains(t, body, "<FETCH>NAME,GUID,PARENT</FETCH>")
}

func TestCollectionRequestNoCompany(t *testing.T) {
	body, err := tally.CollectionRequest("List of Companies", "Company", []string{"NAME"}, "")
	require.NoError(t, err)

	assert.NotContains(t, body, "SVCOMPANYCONNECT")
}

// Company names with XML special characters must be escaped in the envelope.
func TestCollectionRequestEscaping(t *testing.T) {
	body, err := tally.CollectionRequest("List of Ledgers", "Ledger", []string{"NAME"}, "Fish & Chips <Pvt>")
	require.NoError(t, err)

	assert.Contains(t, body, "Fish &amp; Chips &lt;Pvt&gt;")
}

func TestExportRequest(t *testing.T) {
	from := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)

	body, err := tally.ExportRequest("DayBook", "Acme", from, to)
	require.NoError(t, err)

	assert.Contains(t, body, "<TALLYREQUEST>Export Data</TALLYREQUEST>")
	assert.Contains(t, body, "<REPORTNAME>DayBook</REPORTNAME>")
	assert.Contains(t, body, "<SVEXPORTFORMAT>$$SysName:XML</SVEXPORTFORMAT>")
	assert.Contains(t, body, "<SVCURRENTCOMPANY>Acme</SVCURRENTCOMPANY>")
	assert.Contains(t, body, `<SVFROMDATE Type="Date">1-Apr-2023</SVFROMDATE>`)
	assert.Contains(t, body, `<SVTODATE Type="Date">31-Mar-2025</SVTODATE>`)
}

func TestExportRequestNoWindow(t *testing.T) {
	body, err := tally.ExportRequest("DayBook", "Acme", time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.NotContains(t, body, "SVFROMDATE")
	assert.NotContains(t, body, "SVTODATE")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "1-Apr-2023", tally.FormatDate(time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "31-Mar-2025", tally.FormatDate(time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)))
}
