// Package identify runs the recognition flow for one identification:
// read the stored photo, ask Pl@ntNet, and record exactly one outcome.
package identify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/flora/internal/identifications"
	"github.com/JaimeStill/flora/pkg/jobs"
	"github.com/JaimeStill/flora/pkg/plantnet"
	"github.com/JaimeStill/flora/pkg/storage"
)

// Outcome messages persisted on terminal records.
const (
	MessageNoMatch          = "No plant matches found. Try a clearer photo."
	MessageRateLimited      = "Rate limit exceeded. Please try again later."
	MessageInvalidKey       = "Invalid API key"
	MessageImageUnavailable = "could not retrieve uploaded image"
	MessageInterrupted      = "Identification interrupted by shutdown. Please upload the photo again."
)

// recordTimeout bounds the final update when the job context is already done.
const recordTimeout = 5 * time.Second

// Recorder persists the outcome of a run.
type Recorder interface {
	Update(ctx context.Context, id uuid.UUID, cmd identifications.UpdateCommand) error
}

// ImageSource opens stored photos. storage.System satisfies it.
type ImageSource interface {
	Download(ctx context.Context, key string) (*storage.Blob, error)
}

// Recognizer identifies a photo. *plantnet.Client satisfies it.
type Recognizer interface {
	Configured() bool
	Identify(ctx context.Context, photo plantnet.Photo) (*plantnet.Identification, error)
}

// Service executes recognition jobs.
type Service struct {
	records    Recorder
	images     ImageSource
	recognizer Recognizer
	logger     *slog.Logger
}

// New creates a Service.
func New(records Recorder, images ImageSource, recognizer Recognizer, logger *slog.Logger) *Service {
	return &Service{
		records:    records,
		images:     images,
		recognizer: recognizer,
		logger:     logger.With("system", "identify"),
	}
}

type outcome struct {
	status  string
	matches []identifications.Match
	raw     []byte
	message string
}

func (o outcome) command() identifications.UpdateCommand {
	cmd := identifications.UpdateCommand{Status: &o.status}
	if o.status == identifications.StatusSuccess {
		cmd.Matches = o.matches
		cmd.RawResponse = o.raw
	}
	if o.message != "" {
		cmd.ErrorMessage = &o.message
	}
	return cmd
}

func failed(msg string) outcome {
	return outcome{status: identifications.StatusFailed, message: msg}
}

func noMatch() outcome {
	return outcome{status: identifications.StatusNoMatch, message: MessageNoMatch}
}

// Run executes the recognition flow for job and records its outcome with a
// single update. It never retries. It satisfies jobs.Handler.
func (s *Service) Run(ctx context.Context, job jobs.Job) {
	start := time.Now()
	logger := s.logger.With("identification_id", job.IdentificationID)
	logger.Info("identification started", "image_key", job.ImageKey)

	result := s.recognize(ctx, job, logger)
	outcomes.WithLabelValues(result.status).Inc()

	if err := s.record(ctx, job, result); err != nil {
		logger.Error("failed to record outcome", "status", result.status, "error", err)
		return
	}

	logger.Info(
		"identification finished",
		"status", result.status,
		"matches", len(result.matches),
		"duration", time.Since(start),
	)
}

// Abandon marks a job that never ran as failed so its record does not stay
// pending. It satisfies jobs.Handler and is bound as the drop handler.
func (s *Service) Abandon(ctx context.Context, job jobs.Job) {
	logger := s.logger.With("identification_id", job.IdentificationID)

	if err := s.record(ctx, job, failed(MessageInterrupted)); err != nil {
		logger.Error("failed to record interrupted job", "error", err)
		return
	}
	logger.Warn("identification interrupted")
}

// record writes the single outcome update. A done ctx is detached so a run
// cut short by shutdown is still recorded.
func (s *Service) record(ctx context.Context, job jobs.Job, result outcome) error {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()
	}
	return s.records.Update(ctx, job.IdentificationID, result.command())
}

func (s *Service) recognize(ctx context.Context, job jobs.Job, logger *slog.Logger) outcome {
	if !s.recognizer.Configured() {
		logger.Warn("pl@ntnet api key not configured")
		return failed(plantnet.ErrMissingAPIKey.Error())
	}

	photo, err := s.photo(ctx, job.ImageKey)
	if err != nil {
		logger.Error("image unavailable", "image_key", job.ImageKey, "error", err)
		return failed(MessageImageUnavailable)
	}

	callStart := time.Now()
	ident, err := s.recognizer.Identify(ctx, photo)
	latency.Observe(time.Since(callStart).Seconds())

	if err != nil {
		return classify(err, logger)
	}

	matches := mapResults(ident.Response.Results)
	if len(matches) == 0 {
		return noMatch()
	}

	return outcome{
		status:  identifications.StatusSuccess,
		matches: matches,
		raw:     ident.Raw,
	}
}

func (s *Service) photo(ctx context.Context, key string) (plantnet.Photo, error) {
	blob, err := s.images.Download(ctx, key)
	if err != nil {
		return plantnet.Photo{}, err
	}
	defer blob.Body.Close()

	data, err := io.ReadAll(blob.Body)
	if err != nil {
		return plantnet.Photo{}, fmt.Errorf("read image: %w", err)
	}

	return plantnet.Photo{
		Data:        data,
		Filename:    photoFilename(blob.ContentType),
		ContentType: blob.ContentType,
	}, nil
}

func classify(err error, logger *slog.Logger) outcome {
	var apiErr *plantnet.APIError
	if !errors.As(err, &apiErr) {
		logger.Error("pl@ntnet request failed", "error", err)
		return failed(err.Error())
	}

	apiErrors.WithLabelValues(fmt.Sprint(apiErr.StatusCode)).Inc()

	switch apiErr.StatusCode {
	case 404:
		return noMatch()
	case 429:
		logger.Warn("pl@ntnet rate limit exceeded")
		return failed(MessageRateLimited)
	case 401:
		logger.Error("pl@ntnet rejected api key")
		return failed(MessageInvalidKey)
	default:
		logger.Error("pl@ntnet api error", "status", apiErr.StatusCode, "body", apiErr.Body)
		return failed(apiErr.Error())
	}
}

// photoFilename names the upload part; Pl@ntNet keys the decoder on the extension.
func photoFilename(contentType string) string {
	if strings.EqualFold(strings.TrimSpace(contentType), "image/png") {
		return "plant.png"
	}
	return "plant.jpg"
}
