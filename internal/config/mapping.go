package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tally-bridge/backend/internal/tally"
)

// MappingFileName is the name of the entity-to-table mapping file inside Dir.
const MappingFileName = "tally_supabase_mapping.json"

// Mapping maps each entity type to its destination table name.
type Mapping map[tally.Entity]string

// DefaultMapping returns the tally_* table names used when no mapping file
// exists.
func DefaultMapping() Mapping {
	m := make(Mapping)
	for _, entity := range tally.Entities() {
		m[entity] = "tally_" + string(entity)
	}

	return m
}

// Table returns the destination table for an entity, falling back to the
// default name for entities missing from the mapping.
func (m Mapping) Table(entity tally.Entity) string {
	if table, ok := m[entity]; ok && table != "" {
		return table
	}

	return "tally_" + string(entity)
}

// LoadMapping reads the mapping from path, falling back to the defaults when
// the file does not exist. Entities missing from the file keep their default
// table names.
func LoadMapping(path string) (Mapping, error) {
	m := DefaultMapping()

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	} else if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	var stored Mapping
	if err := json.Unmarshal(content, &stored); err != nil {
		return nil, fmt.Errorf("could not parse %s: %w", path, err)
	}

	for entity, table := range stored {
		if table != "" {
			m[entity] = table
		}
	}

	return m, nil
}

// Save writes the mapping to path, rewritten in full.
func (m Mapping) Save(path string) error {
	content, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode mapping: %w", err)
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}

	return nil
}
