package tally_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-bridge/backend/internal/tally"
)

func TestEntitiesOrder(t *testing.T) {
	entities := tally.Entities()

	require.Len(t, entities, 6)
	assert.Equal(t, tally.EntityCompany, entities[0])
	assert.Equal(t, tally.EntityVoucherEntry, entities[5])
}

func TestFieldSetTags(t *testing.T) {
	fs := tally.FieldSet{
		{Tag: "NAME", Key: "Name"},
		{Tag: "GUID", Key: "GUID"},
	}

	assert.Equal(t, []string{"NAME", "GUID"}, fs.Tags())
}

func TestDefaultFieldsCoverAllEntities(t *testing.T) {
	fields := tally.DefaultFields()

	for _, entity := range tally.Entities() {
		assert.NotEmpty(t, fields[entity], "no field list for %s", entity)
	}
}

func TestLoadFieldOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	content := `
ledgers:
  - tag: NAME
    key: Name
  - tag: GUID
    key: GUID
  - tag: INCOMETAXNUMBER
    key: IncomeTaxNumber
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	fields, err := tally.LoadFieldOverrides(path)
	require.NoError(t, err)

	require.Len(t, fields[tally.EntityLedger], 3)
	assert.Equal(t, "INCOMETAXNUMBER", fields[tally.EntityLedger][2].Tag)

	// Entities not in the file keep the defaults
	assert.Equal(t, tally.DefaultFields()[tally.EntityGroup], fields[tally.EntityGroup])
}

func TestLoadFieldOverridesUnknownEntity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte("invoices:\n  - tag: NAME\n    key: Name\n"), 0o600))

	_, err := tally.LoadFieldOverrides(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity type")
}

func TestLoadFieldOverridesMissingFile(t *testing.T) {
	_, err := tally.LoadFieldOverrides(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
