package identifications

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/flora/pkg/jobs"
	"github.com/JaimeStill/flora/pkg/query"
	"github.com/JaimeStill/flora/pkg/repository"
	"github.com/JaimeStill/flora/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	jobs       jobs.System
	logger     *slog.Logger
	urlWorkers int
}

// New creates an identification repository implementing the System interface.
// urlWorkers bounds the concurrent display URL resolutions of a single List.
func New(
	db *sql.DB,
	store storage.System,
	dispatcher jobs.System,
	logger *slog.Logger,
	urlWorkers int,
) System {
	if urlWorkers <= 0 {
		urlWorkers = 1
	}
	return &repo{
		db:         db,
		storage:    store,
		jobs:       dispatcher,
		logger:     logger.With("system", "identifications"),
		urlWorkers: urlWorkers,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) List(ctx context.Context, filters Filters) ([]Identification, error) {
	qb := query.NewBuilder(projection, defaultSort)
	filters.Apply(qb)

	q, args := qb.Build()
	records, err := repository.QueryMany(ctx, r.db, q, args, scanIdentification)
	if err != nil {
		return nil, fmt.Errorf("query identifications: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.urlWorkers)

	for i := range records {
		g.Go(func() error {
			records[i].ImageURL = r.imageURL(gctx, records[i].ImageKey)
			return nil
		})
	}
	g.Wait()

	return records, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Identification, error) {
	rec, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}

	rec.ImageURL = r.imageURL(ctx, rec.ImageKey)
	return rec, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Identification, error) {
	rec, err := r.insert(ctx, uuid.New(), cmd)
	if err != nil {
		return nil, err
	}

	createdTotal.WithLabelValues("create").Inc()
	r.logger.Info("identification created", "id", rec.ID, "image_key", rec.ImageKey)
	return rec, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) error {
	if cmd.empty() {
		return nil
	}

	qb := query.NewBuilder(projection).
		Set("Status", cmd.Status).
		Set("ErrorMessage", cmd.ErrorMessage).
		SetExpr("UpdatedAt", "NOW()").
		WhereEquals("ID", id)

	if cmd.Matches != nil {
		matches, err := encodeMatches(cmd.Matches)
		if err != nil {
			return err
		}
		qb.Set("Matches", matches)
	}
	if cmd.RawResponse != nil {
		qb.Set("RawResponse", string(cmd.RawResponse))
	}

	q, args := qb.BuildUpdate()
	n, err := repository.Exec(ctx, r.db, q, args...)
	if err != nil {
		if repository.IsCheckViolation(err) {
			return fmt.Errorf("%w: %v", ErrInvalidStatus, err)
		}
		return fmt.Errorf("update identification %s: %w", id, err)
	}

	if n == 0 {
		r.logger.Warn("update skipped, identification not found", "id", id)
		return nil
	}

	r.logger.Info("identification updated", "id", id, "status", deref(cmd.Status))
	return nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) DeleteResult {
	if _, err := r.find(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return DeleteResult{Error: MessageNotFound}
		}
		r.logger.Error("delete lookup failed", "id", id, "error", err)
		return DeleteResult{Error: err.Error()}
	}

	q, args := query.NewBuilder(projection).
		WhereEquals("ID", id).
		BuildDelete("ImageKey")

	key, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (string, error) {
		return repository.QueryOne(ctx, tx, q, args, func(s repository.Scanner) (string, error) {
			var k string
			err := s.Scan(&k)
			return k, err
		})
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DeleteResult{Error: MessageNotFound}
		}
		r.logger.Error("delete failed", "id", id, "error", err)
		return DeleteResult{Error: err.Error()}
	}
	deletedTotal.Inc()

	if err := r.storage.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		blobDeleteFailures.Inc()
		r.logger.Warn("blob delete failed after record delete", "key", key, "error", err)
	}

	r.logger.Info("identification deleted", "id", id)
	return DeleteResult{Success: true}
}

func (r *repo) Upload(ctx context.Context, cmd UploadCommand) (*Identification, error) {
	if len(cmd.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if !AllowedContentType(cmd.ContentType) {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, cmd.ContentType)
	}

	id := uuid.New()
	key := buildImageKey(id, cmd.Filename)

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	size := int64(len(cmd.Data))
	rec, err := r.insert(ctx, id, CreateCommand{
		ImageKey:    key,
		Filename:    &cmd.Filename,
		ContentType: &cmd.ContentType,
		SizeBytes:   &size,
	})
	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, err
	}

	createdTotal.WithLabelValues("upload").Inc()
	r.logger.Info("identification uploaded", "id", rec.ID, "image_key", key, "size", size)

	r.schedule(ctx, rec)
	rec.ImageURL = r.imageURL(ctx, rec.ImageKey)
	return rec, nil
}

func (r *repo) Register(ctx context.Context, cmd RegisterCommand) (*Identification, error) {
	if !validImageKey(cmd.ImageKey) {
		return nil, fmt.Errorf("%w: image key must come from an upload handle", ErrInvalidImage)
	}

	exists, err := r.storage.Exists(ctx, cmd.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("check image: %w", err)
	}
	if !exists {
		return nil, ErrImageNotFound
	}

	id, _ := idFromKey(cmd.ImageKey)
	rec, err := r.insert(ctx, id, CreateCommand{ImageKey: cmd.ImageKey})
	if err != nil {
		return nil, err
	}

	createdTotal.WithLabelValues("register").Inc()
	r.logger.Info("identification registered", "id", rec.ID, "image_key", rec.ImageKey)

	r.schedule(ctx, rec)
	rec.ImageURL = r.imageURL(ctx, rec.ImageKey)
	return rec, nil
}

func (r *repo) UploadHandle(ctx context.Context, filename string) (*UploadHandle, error) {
	key := buildImageKey(uuid.New(), filename)

	u, expires, err := r.storage.UploadURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("issue upload url: %w", err)
	}

	return &UploadHandle{
		ImageKey:  key,
		UploadURL: u,
		ExpiresAt: expires,
	}, nil
}

func (r *repo) Image(ctx context.Context, id uuid.UUID) (*storage.Blob, error) {
	rec, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}

	blob, err := r.storage.Download(ctx, rec.ImageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("download image: %w", err)
	}

	return blob, nil
}

func (r *repo) find(ctx context.Context, id uuid.UUID) (*Identification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanIdentification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

func (r *repo) insert(ctx context.Context, id uuid.UUID, cmd CreateCommand) (*Identification, error) {
	q, args := query.NewBuilder(projection).
		Set("ID", id).
		Set("ImageKey", cmd.ImageKey).
		Set("Filename", cmd.Filename).
		Set("ContentType", cmd.ContentType).
		Set("SizeBytes", cmd.SizeBytes).
		Set("Status", StatusPending).
		BuildInsert()

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanIdentification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rec, nil
}

// schedule submits the recognition job. A record whose job cannot be
// submitted is failed immediately so it never stays pending.
func (r *repo) schedule(ctx context.Context, rec *Identification) {
	err := r.jobs.Submit(ctx, jobs.Job{
		IdentificationID: rec.ID,
		ImageKey:         rec.ImageKey,
	})
	if err == nil {
		return
	}

	scheduleFailures.Inc()
	r.logger.Error("job submission failed", "id", rec.ID, "error", err)

	status := StatusFailed
	msg := MessageScheduleFailed
	if err := r.Update(ctx, rec.ID, UpdateCommand{Status: &status, ErrorMessage: &msg}); err != nil {
		r.logger.Error("failed to record scheduling failure", "id", rec.ID, "error", err)
		return
	}

	rec.Status = status
	rec.ErrorMessage = &msg
}

func (r *repo) imageURL(ctx context.Context, key string) *string {
	u, err := r.storage.URL(ctx, key)
	if err != nil {
		urlFailures.Inc()
		r.logger.Warn("display url unavailable", "key", key, "error", err)
		return nil
	}
	return &u
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
