package identifications_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/flora/pkg/jobs"
	"github.com/JaimeStill/flora/pkg/lifecycle"
	"github.com/JaimeStill/flora/pkg/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type storedBlob struct {
	data        []byte
	contentType string
}

// fakeStore is an in-memory storage.System. Error fields, when set, are
// returned by the matching method.
type fakeStore struct {
	mu        sync.Mutex
	blobs     map[string]storedBlob
	deleted   []string
	uploadErr error
	deleteErr error
	urlErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: make(map[string]storedBlob)}
}

func (f *fakeStore) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeStore) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = storedBlob{data: data, contentType: contentType}
	return nil
}

func (f *fakeStore) Download(_ context.Context, key string) (*storage.Blob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Body:          io.NopCloser(bytes.NewReader(b.data)),
		ContentType:   b.contentType,
		ContentLength: int64(len(b.data)),
	}, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.blobs, key)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[key]
	return ok, nil
}

func (f *fakeStore) URL(_ context.Context, key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://blobs.test/" + key + "?sp=r", nil
}

func (f *fakeStore) UploadURL(_ context.Context, key string) (string, time.Time, error) {
	return "https://blobs.test/" + key + "?sp=cw", time.Now().Add(15 * time.Minute), nil
}

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[key]
	return ok
}

// fakeJobs records submissions. submitErr, when set, is returned by Submit.
type fakeJobs struct {
	mu        sync.Mutex
	submitted []jobs.Job
	submitErr error
}

func (f *fakeJobs) Handle(jobs.Handler)                {}
func (f *fakeJobs) OnDrop(jobs.Handler)                {}
func (f *fakeJobs) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeJobs) Submit(_ context.Context, job jobs.Job) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, job)
	return nil
}

func (f *fakeJobs) list() []jobs.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]jobs.Job(nil), f.submitted...)
}

var errBoom = errors.New("boom")

func bytesReader(s string) io.Reader {
	return bytes.NewReader([]byte(s))
}
