package models

import "fmt"

// ConfigurationError reports missing provider credentials or endpoint
// configuration. Fatal to the request; surfaced before any chunk is produced.
type ConfigurationError struct {
	Variable string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing %s environment variable", e.Variable)
}

// ProviderHTTPError reports a non-2xx response from a vendor API. Fatal to the
// request; no retry.
type ProviderHTTPError struct {
	Provider   string
	StatusCode int
	Status     string
	Body       string
}

func (e *ProviderHTTPError) Error() string {
	return fmt.Sprintf("%s API request failed: %s - %s", e.Provider, e.Status, e.Body)
}
