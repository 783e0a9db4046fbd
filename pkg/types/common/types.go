// Package common holds shared primitive types used across all layers.
package common

import (
	"time"

	"github.com/google/uuid"
)

// ID is a UUID-backed entity identifier, stored in its canonical string
// form so it round-trips cleanly through JSON and SQL.
type ID string

// NewID generates a random v4 identifier.
func NewID() ID { return ID(uuid.NewString()) }

// String returns the canonical string form.
func (id ID) String() string { return string(id) }

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return id == "" }

// UserID identifies an authenticated principal as issued by the identity
// provider.
type UserID string

// String returns the canonical string form.
func (u UserID) String() string { return string(u) }

// IsZero reports whether the UserID is unset.
func (u UserID) IsZero() bool { return u == "" }

// Metadata is an open-ended string map attached to events and API payloads.
type Metadata map[string]string

// HealthStatus describes the availability of a component or the service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "ok"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusDown     HealthStatus = "down"
)

// ComponentHealth is one dependency's contribution to a health report.
type ComponentHealth struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// ErrorDetail is the wire form of an error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Timestamp formats t the way the API emits dates.
func Timestamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }
