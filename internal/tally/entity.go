package tally

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entity is one of the Tally object types this backend extracts.
type Entity string

const (
	EntityCompany      Entity = "companies"
	EntityGroup        Entity = "groups"
	EntityLedger       Entity = "ledgers"
	EntityDivision     Entity = "divisions"
	EntityVoucher      Entity = "vouchers"
	EntityVoucherEntry Entity = "voucher_entries"
)

// Entities lists all entity types in sync order. Parents come before the
// records that reference them.
func Entities() []Entity {
	return []Entity{
		EntityCompany,
		EntityGroup,
		EntityLedger,
		EntityDivision,
		EntityVoucher,
		EntityVoucherEntry,
	}
}

// Field maps one Tally FETCH field to the key it gets in a flattened record.
type Field struct {
	Tag string `yaml:"tag"`
	Key string `yaml:"key"`
}

// FieldSet is the ordered list of fields fetched for one entity type.
type FieldSet []Field

// Tags returns the Tally-side element names, in FETCH order.
func (fs FieldSet) Tags() []string {
	tags := make([]string, 0, len(fs))
	for _, f := range fs {
		tags = append(tags, f.Tag)
	}

	return tags
}

// DefaultFields returns the built-in field lists per entity type. These match
// the Tally collection FETCH lists the extraction was built against.
func DefaultFields() map[Entity]FieldSet {
	return map[Entity]FieldSet{
		EntityCompany: {
			{Tag: "NAME", Key: "Name"},
			{Tag: "GUID", Key: "GUID"},
			{Tag: "EMAIL", Key: "Email"},
			{Tag: "STATE", Key: "State"},
			{Tag: "PINCODE", Key: "Pincode"},
			{Tag: "PHONE", Key: "Phone"},
			{Tag: "COMPANYNUMBER", Key: "CompanyNumber"},
		},
		EntityGroup: {
			{Tag: "NAME", Key: "Name"},
			{Tag: "GUID", Key: "GUID"},
			{Tag: "PARENT", Key: "Parent"},
		},
		EntityLedger: {
			{Tag: "NAME", Key: "Name"},
			{Tag: "GUID", Key: "GUID"},
			{Tag: "PARENT", Key: "Parent"},
			{Tag: "OPENINGBALANCE", Key: "OpeningBalance"},
			{Tag: "CLOSINGBALANCE", Key: "ClosingBalance"},
		},
		EntityDivision: {
			{Tag: "NAME", Key: "Name"},
			{Tag: "GUID", Key: "GUID"},
			{Tag: "PARENT", Key: "Parent"},
			{Tag: "CATEGORY", Key: "Category"},
		},
		EntityVoucher: {
			{Tag: "VOUCHERNUMBER", Key: "VoucherNumber"},
			{Tag: "DATE", Key: "Date"},
			{Tag: "VOUCHERTYPENAME", Key: "VoucherTypeName"},
			{Tag: "NARRATION", Key: "Narration"},
			{Tag: "REFERENCE", Key: "Reference"},
			{Tag: "AMOUNT", Key: "Amount"},
		},
		EntityVoucherEntry: {
			{Tag: "LEDGERNAME", Key: "LedgerName"},
			{Tag: "AMOUNT", Key: "Amount"},
			{Tag: "NARRATION", Key: "Narration"},
			{Tag: "PARTYLEDGERNAME", Key: "PartyLedgerName"},
		},
	}
}

// LoadFieldOverrides reads per-entity field list overrides from a YAML file
// and merges them over the defaults. Entities not present in the file keep
// their built-in field lists.
func LoadFieldOverrides(path string) (map[Entity]FieldSet, error) {
	fields := DefaultFields()

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read field overrides: %w", err)
	}

	var overrides map[Entity]FieldSet
	if err := yaml.Unmarshal(content, &overrides); err != nil {
		return nil, fmt.Errorf("could not parse field overrides: %w", err)
	}

	for entity, fs := range overrides {
		if _, ok := fields[entity]; !ok {
			return nil, fmt.Errorf("unknown entity type %q in field overrides", entity)
		}

		if len(fs) > 0 {
			fields[entity] = fs
		}
	}

	return fields, nil
}
