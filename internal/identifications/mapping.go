package identifications

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/flora/pkg/query"
	"github.com/JaimeStill/flora/pkg/repository"
)

// KeyPrefix is the blob key prefix for every stored photo.
const KeyPrefix = "identifications/"

var projection = query.
	NewProjectionMap("public", "identifications", "i").
	Project("id", "ID").
	Project("image_key", "ImageKey").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("status", "Status").
	Project("matches", "Matches").
	Project("raw_response", "RawResponse").
	Project("error_message", "ErrorMessage").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// ContentTypes are the accepted photo media types.
var ContentTypes = []string{
	"image/jpeg",
	"image/png",
	"image/heic",
	"image/heif",
	"image/webp",
}

// Filters contains optional filtering criteria for identification queries.
// Nil fields are ignored.
type Filters struct {
	Status *string `json:"status,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereEquals("Status", f.Status)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// An unknown status returns ErrInvalidStatus.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if s := values.Get("status"); s != "" {
		if !ValidStatus(s) {
			return f, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
		}
		f.Status = &s
	}

	return f, nil
}

func scanIdentification(s repository.Scanner) (Identification, error) {
	var (
		rec     Identification
		matches []byte
		raw     []byte
	)

	err := s.Scan(
		&rec.ID,
		&rec.ImageKey,
		&rec.Filename,
		&rec.ContentType,
		&rec.SizeBytes,
		&rec.Status,
		&matches,
		&raw,
		&rec.ErrorMessage,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return rec, err
	}

	if len(matches) > 0 {
		if err := json.Unmarshal(matches, &rec.Matches); err != nil {
			return rec, fmt.Errorf("decode matches: %w", err)
		}
	}
	if len(raw) > 0 {
		rec.RawResponse = json.RawMessage(raw)
	}

	return rec, nil
}

// AllowedContentType reports whether ct (parameters ignored) is an accepted photo type.
func AllowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	for _, allowed := range ContentTypes {
		if ct == allowed {
			return true
		}
	}
	return false
}

func buildImageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("%s%s/%s", KeyPrefix, id, sanitizeFilename(filename))
}

// idFromKey returns the record id embedded in a key issued by buildImageKey.
func idFromKey(key string) (uuid.UUID, bool) {
	rest, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok {
		return uuid.Nil, false
	}
	segment, _, _ := strings.Cut(rest, "/")
	id, err := uuid.Parse(segment)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func validImageKey(key string) bool {
	if strings.Contains(key, "..") {
		return false
	}
	if _, ok := idFromKey(key); !ok {
		return false
	}
	_, file, found := strings.Cut(strings.TrimPrefix(key, KeyPrefix), "/")
	return found && file != ""
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	return url.PathEscape(name)
}

func encodeMatches(matches []Match) (string, error) {
	data, err := json.Marshal(matches)
	if err != nil {
		return "", fmt.Errorf("encode matches: %w", err)
	}
	return string(data), nil
}

// DetectContentType prefers the declared part type and sniffs the data when
// the client sent none or a generic one.
func DetectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}
