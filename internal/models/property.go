package models

import (
	"time"
)

// Property represents an accommodation property tracked by the defrag system.
// StateCode is nil until the region classifier has resolved it; unresolvable
// properties keep a NULL state code and are simply never holiday-enriched.
type Property struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	ExternalRef string    `json:"external_ref,omitempty"`
	StateCode   *string   `json:"state_code,omitempty"`
	ID          int64     `json:"id"`
	Active      bool      `json:"active"`
}
