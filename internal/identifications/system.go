package identifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/flora/pkg/storage"
)

// System defines the public contract for identification operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// List returns records most-recent-first with display URLs resolved.
	List(ctx context.Context, filters Filters) ([]Identification, error)
	// Find returns ErrNotFound when id does not resolve.
	Find(ctx context.Context, id uuid.UUID) (*Identification, error)
	Create(ctx context.Context, cmd CreateCommand) (*Identification, error)
	// Update applies a partial update. A missing id is a no-op.
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) error
	// Delete removes the record and then, best-effort, its image.
	Delete(ctx context.Context, id uuid.UUID) DeleteResult

	// Upload stores the photo, creates the record, and schedules recognition.
	Upload(ctx context.Context, cmd UploadCommand) (*Identification, error)
	// Register creates the record for an image written with an upload handle
	// and schedules recognition.
	Register(ctx context.Context, cmd RegisterCommand) (*Identification, error)
	UploadHandle(ctx context.Context, filename string) (*UploadHandle, error)
	// Image opens the stored photo of a record. The caller must close Body.
	Image(ctx context.Context, id uuid.UUID) (*storage.Blob, error)
}
