// Package models contains data types and constants for the Ads Assistant API.
package models

// Endpoint paths, relative to the configured backend URL
const (
	EndpointChat   = "/api/chat"
	EndpointHealth = "/api/health"
)

// DefaultBackendURL is where the assistant backend listens in local development
const DefaultBackendURL = "http://localhost:8000"

// UnreachableNotice is the single user-facing message for any failed turn
const UnreachableNotice = "Failed to connect to the Ads Assistant backend."

// DefaultHeaders returns the headers sent with every JSON request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
}
