// Package identifications implements the identification record domain.
// It stores plant photos, tracks each recognition request from pending to
// a terminal status, and exposes the records over HTTP.
package identifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Identification statuses. pending is the only non-terminal status.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusNoMatch = "no_match"
)

// Statuses lists every valid status in display order.
var Statuses = []string{StatusPending, StatusSuccess, StatusFailed, StatusNoMatch}

// ValidStatus reports whether s is a known status.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends the recognition flow.
func Terminal(s string) bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusNoMatch
}

// Species describes the taxon of a candidate match.
type Species struct {
	ScientificName string   `json:"scientific_name"`
	CommonNames    []string `json:"common_names"`
	Family         string   `json:"family"`
	Genus          string   `json:"genus"`
}

// ReferenceImage is an example photo of a matched species.
type ReferenceImage struct {
	URL      string `json:"url"`
	Citation string `json:"citation,omitempty"`
}

// Match is one ranked candidate species with its confidence score in [0, 1].
type Match struct {
	Species Species          `json:"species"`
	Score   float64          `json:"score"`
	Images  []ReferenceImage `json:"images,omitempty"`
}

// Identification is one uploaded photo and the outcome of recognizing it.
// ImageURL is resolved on every read and is nil when no display URL could be produced.
type Identification struct {
	ID           uuid.UUID       `json:"id"`
	ImageKey     string          `json:"image_key"`
	Filename     *string         `json:"filename"`
	ContentType  *string         `json:"content_type"`
	SizeBytes    *int64          `json:"size_bytes"`
	Status       string          `json:"status"`
	Matches      []Match         `json:"matches"`
	RawResponse  json.RawMessage `json:"raw_response,omitempty"`
	ErrorMessage *string         `json:"error_message"`
	ImageURL     *string         `json:"image_url"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateCommand carries the data for a new pending record.
// Filename, ContentType, and SizeBytes are optional and stored as NULL when nil.
type CreateCommand struct {
	ImageKey    string
	Filename    *string
	ContentType *string
	SizeBytes   *int64
}

// UpdateCommand carries a partial update. Nil fields are left unchanged.
type UpdateCommand struct {
	Status       *string
	Matches      []Match
	RawResponse  json.RawMessage
	ErrorMessage *string
}

func (c UpdateCommand) empty() bool {
	return c.Status == nil && c.Matches == nil && c.RawResponse == nil && c.ErrorMessage == nil
}

// UploadCommand carries photo bytes received by the API.
type UploadCommand struct {
	Data        []byte
	Filename    string
	ContentType string
}

// RegisterCommand names a blob uploaded out-of-band with an upload handle.
type RegisterCommand struct {
	ImageKey string `json:"image_key"`
}

// UploadHandle authorizes a client to write one image directly to blob storage.
type UploadHandle struct {
	ImageKey  string    `json:"image_key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DeleteResult reports the outcome of a delete. Error is set only when Success is false.
type DeleteResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
