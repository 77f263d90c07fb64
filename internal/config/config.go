package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config is the root configuration, stored in ~/.timesheets/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	// BaseURL is the TrackingTime API root.
	BaseURL string `json:"base_url"`
	// AccountID identifies both the account whose events are fetched and the
	// user billed for them. Required; there is no usable default.
	AccountID int64 `json:"account_id"`
	// SpanColumns is the number of time-span cells shown per task row.
	SpanColumns int `json:"span_columns"`
	// OutputPath is where the HTML timesheet is written.
	OutputPath string `json:"output_path"`
	// DateFormat is the Go reference layout for date-header rows.
	DateFormat string `json:"date_format"`
}

// Credentials is the username/password pair for HTTP Basic authentication.
type Credentials struct {
	Username string
	Password string
}

const (
	// DefaultBaseURL is the production TrackingTime v4 endpoint.
	DefaultBaseURL = "https://app.trackingtime.co/api/v4/"
	// DefaultSpanColumns matches the fixed timesheet layout.
	DefaultSpanColumns = 5
	// DefaultOutputPath is relative to the working directory.
	DefaultOutputPath = "output/timesheet.html"
	// DefaultDateFormat renders headers like "Monday, 2 January 2006".
	DefaultDateFormat = "Monday, 2 January 2006"
)

// defaultConfig returns a Config pre-filled with defaults. AccountID stays
// zero and must be set by the user.
func defaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		SpanColumns: DefaultSpanColumns,
		OutputPath:  DefaultOutputPath,
		DateFormat:  DefaultDateFormat,
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// timesheets configuration – ~/.timesheets/config.json
//
// account_id is required; the remaining settings have working defaults.
// Credentials live next to this file in credentials.env:
//   TIMESHEETS_USERNAME=you@example.com
//   TIMESHEETS_PASSWORD=secret
{
  // TrackingTime API root.
  "base_url": "https://app.trackingtime.co/api/v4/",

  // Your TrackingTime account ID. Required.
  "account_id": 0,

  // Number of time-span columns per task row in the timesheet.
  "span_columns": 5,

  // Where the HTML timesheet is written (relative to the working directory).
  "output_path": "output/timesheet.html",

  // Go time layout for date-header rows.
  "date_format": "Monday, 2 January 2006"
}
`

// baseDir returns the configuration directory (~/.timesheets).
func baseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".timesheets"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// parse decodes annotated JSON config data and backfills zero-value fields
// with the built-in defaults.
func parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
		return defaultConfig(), err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SpanColumns <= 0 {
		cfg.SpanColumns = DefaultSpanColumns
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}
	return cfg, nil
}

// Load reads ~/.timesheets/config.json, creating it with annotated defaults
// on first run. A zero account_id is an error, since every API call needs it.
func Load() (Config, error) {
	dir, err := baseDir()
	if err != nil {
		return defaultConfig(), err
	}
	path := filepath.Join(dir, "config.json")

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if writeErr := writeDefault(path); writeErr != nil {
			return defaultConfig(), writeErr
		}
		return defaultConfig(), fmt.Errorf("wrote template config to %s; set account_id and retry", path)
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	if cfg.AccountID == 0 {
		return cfg, fmt.Errorf("account_id is not set in %s", path)
	}
	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// LoadCredentials reads the Basic-auth credentials from the environment,
// falling back to ~/.timesheets/credentials.env. Variables already set in the
// environment win; godotenv never overwrites them.
func LoadCredentials() (Credentials, error) {
	dir, err := baseDir()
	if err != nil {
		return Credentials{}, err
	}
	path := filepath.Join(dir, "credentials.env")

	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return Credentials{}, fmt.Errorf("reading credentials file %s: %w", path, err)
	}

	creds := Credentials{
		Username: os.Getenv("TIMESHEETS_USERNAME"),
		Password: os.Getenv("TIMESHEETS_PASSWORD"),
	}
	if creds.Username == "" || creds.Password == "" {
		return creds, fmt.Errorf("missing credentials: set TIMESHEETS_USERNAME and TIMESHEETS_PASSWORD in the environment or in %s", path)
	}
	return creds, nil
}
