// Package config holds the on-disk configuration of the bridge: connection
// settings in config.json and the entity-to-table mapping in
// tally_supabase_mapping.json, both in a per-user directory and rewritten
// wholesale on save.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// FileName is the name of the connection settings file inside Dir.
const FileName = "config.json"

// Config is the connection configuration. All durations are stored as
// seconds in JSON.
type Config struct {
	// TallyURL is the Tally XML interface, usually http://localhost:9000.
	TallyURL string `json:"tally_url"`

	// TallyTimeoutSeconds is the request timeout against Tally.
	TallyTimeoutSeconds int `json:"tally_timeout_seconds"`

	// SupabaseURL is the Supabase project base URL.
	SupabaseURL string `json:"supabase_url"`

	// SupabaseServiceKey is the service role key used for all requests.
	SupabaseServiceKey string `json:"supabase_service_key"`

	// UserID is written into every inserted row when set. Must be a UUID.
	UserID string `json:"user_id,omitempty"`

	// BatchSize is the number of records per insert request.
	BatchSize int `json:"batch_size"`

	// FromDate and ToDate bound the voucher export window, in Tally's
	// D-Mon-YYYY format. Empty means unbounded.
	FromDate string `json:"from_date,omitempty"`
	ToDate   string `json:"to_date,omitempty"`

	// SchemaSampleSize is how many records schema inference samples.
	SchemaSampleSize int `json:"schema_sample_size"`

	// FieldsFile optionally points to a YAML file overriding the
	// per-entity Tally field lists.
	FieldsFile string `json:"fields_file,omitempty"`
}

// Default returns the configuration used when no config.json exists yet.
func Default() Config {
	return Config{
		TallyURL:            "http://localhost:9000",
		TallyTimeoutSeconds: 30,
		BatchSize:           100,
		SchemaSampleSize:    10,
	}
}

// Dir returns the per-user configuration directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}

	dir := filepath.Join(home, ".tally-bridge")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create config directory: %w", err)
	}

	return dir, nil
}

// Load reads the configuration from path, falling back to defaults when the
// file does not exist, and applies environment overrides on top.
func Load(path string) (Config, error) {
	c := Default()

	content, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(content, &c); err != nil {
			return Config{}, fmt.Errorf("could not parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("could not read %s: %w", path, err)
	}

	c.applyEnv()

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Save writes the configuration to path. The file is rewritten in full, the
// destination filesystem's atomicity is all the protection there is.
func (c Config) Save(path string) error {
	content, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode configuration: %w", err)
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}

	return nil
}

// Validate checks the fields that have a constrained format.
func (c Config) Validate() error {
	if c.UserID != "" {
		if _, err := uuid.Parse(c.UserID); err != nil {
			return fmt.Errorf("user_id is not a valid UUID: %w", err)
		}
	}

	for _, date := range []string{c.FromDate, c.ToDate} {
		if date == "" {
			continue
		}

		if _, err := time.Parse("2-Jan-2006", date); err != nil {
			return fmt.Errorf("date %q is not in D-Mon-YYYY format: %w", date, err)
		}
	}

	return nil
}

// TallyTimeout returns the Tally request timeout as a duration.
func (c Config) TallyTimeout() time.Duration {
	return time.Duration(c.TallyTimeoutSeconds) * time.Second
}

// Window returns the configured voucher date window. Zero times mean
// unbounded; Validate has already checked the format.
func (c Config) Window() (from, to time.Time) {
	if c.FromDate != "" {
		from, _ = time.Parse("2-Jan-2006", c.FromDate)
	}

	if c.ToDate != "" {
		to, _ = time.Parse("2-Jan-2006", c.ToDate)
	}

	return from, to
}

// applyEnv overrides fields from the environment. Invalid numeric values are
// ignored, keeping the file's value.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("TALLY_URL"); ok {
		c.TallyURL = v
	}

	if v, ok := os.LookupEnv("TALLY_TIMEOUT_SECONDS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.TallyTimeoutSeconds = n
		}
	}

	if v, ok := os.LookupEnv("SUPABASE_URL"); ok {
		c.SupabaseURL = v
	}

	if v, ok := os.LookupEnv("SUPABASE_SERVICE_KEY"); ok {
		c.SupabaseServiceKey = v
	}

	if v, ok := os.LookupEnv("SYNC_USER_ID"); ok {
		c.UserID = v
	}

	if v, ok := os.LookupEnv("SYNC_BATCH_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchSize = n
		}
	}
}
