// Package config provides configuration management for jira-issue-flow.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Environment variable names
const (
	EnvURL           = "MIGRATION_BACKLOG_JIRA_URL"
	EnvEmail         = "MIGRATION_BACKLOG_JIRA_EMAIL"
	EnvToken         = "MIGRATION_BACKLOG_JIRA_TOKEN"
	EnvProject       = "MIGRATION_BACKLOG_JIRA_PROJECT"
	EnvEpicLinkField = "MIGRATION_BACKLOG_JIRA_EPIC_LINK_FIELD"
	EnvEpicKey       = "MIGRATION_BACKLOG_JIRA_EPIC_KEY"
	EnvAuth          = "MIGRATION_BACKLOG_JIRA_AUTH"

	EnvTelemetryEnabled = "TELEMETRY_ENABLED"
	EnvOTLPEndpoint     = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// AuthMode selects how requests to Jira are authenticated
type AuthMode string

const (
	// AuthBasic uses email + API token (Jira Cloud)
	AuthBasic AuthMode = "basic"
	// AuthBearer uses a personal access token (Jira Server / Data Center)
	AuthBearer AuthMode = "bearer"
)

// ErrMissing is wrapped by every error reporting an unset required variable
var ErrMissing = errors.New("missing required environment variable")

// Config holds everything needed to talk to Jira and place issues in the backlog
type Config struct {
	URL           string
	Email         string
	Token         string
	Project       string
	EpicLinkField string
	EpicKey       string
	Auth          AuthMode

	TelemetryEnabled bool
	OTLPEndpoint     string

	// Parse problems found by Load, reported by Validate
	parseErrs []error
}

// Load loads configuration from environment variables. Problems are not reported until Validate is called, so that
// every one of them can be surfaced at once.
func Load() Config {
	config := Config{
		URL:           os.Getenv(EnvURL),
		Email:         os.Getenv(EnvEmail),
		Token:         os.Getenv(EnvToken),
		Project:       os.Getenv(EnvProject),
		EpicLinkField: os.Getenv(EnvEpicLinkField),
		EpicKey:       os.Getenv(EnvEpicKey),
		Auth:          AuthBasic, // Default
		OTLPEndpoint:  os.Getenv(EnvOTLPEndpoint),
	}

	if auth := os.Getenv(EnvAuth); auth != "" {
		config.Auth = AuthMode(auth)
	}

	if enabled := os.Getenv(EnvTelemetryEnabled); enabled != "" {
		b, err := strconv.ParseBool(enabled)
		if err != nil {
			config.parseErrs = append(config.parseErrs,
				fmt.Errorf("failed to parse environment variable '%s' value '%s' as bool: %w", EnvTelemetryEnabled, enabled, err))
		}
		config.TelemetryEnabled = b
	}

	return config
}

type requiredVar struct {
	key   string
	value string
}

// Validate checks that the required configuration is present. The returned error joins every problem found.
func (c Config) Validate() error {
	errs := append([]error{}, c.parseErrs...)

	required := []requiredVar{
		{EnvURL, c.URL},
		{EnvToken, c.Token},
		{EnvProject, c.Project},
		{EnvEpicLinkField, c.EpicLinkField},
		{EnvEpicKey, c.EpicKey},
	}

	switch c.Auth {
	case AuthBasic:
		required = append(required, requiredVar{EnvEmail, c.Email})
	case AuthBearer:
	default:
		errs = append(errs, fmt.Errorf("invalid %s '%s', expected '%s' or '%s'", EnvAuth, c.Auth, AuthBasic, AuthBearer))
	}

	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissing, r.key))
		}
	}

	return errors.Join(errs...)
}
