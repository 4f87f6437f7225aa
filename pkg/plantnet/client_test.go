package plantnet_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/flora/pkg/plantnet"
)

const roseResponse = `{
  "language": "en",
  "preferedReferential": "k-world-flora",
  "bestMatch": "Rosa gallica L.",
  "results": [
    {
      "score": 0.87,
      "species": {
        "scientificNameWithoutAuthor": "Rosa gallica",
        "scientificNameAuthorship": "L.",
        "genus": {"scientificNameWithoutAuthor": "Rosa"},
        "family": {"scientificNameWithoutAuthor": "Rosaceae"},
        "commonNames": ["French rose"]
      },
      "images": [{"organ": "flower", "citation": "A. Author", "url": {"o": "o1", "m": "m1", "s": "s1"}}],
      "gbif": {"id": "8395064"}
    }
  ],
  "version": "2025-01-17 (7.3)",
  "remainingIdentificationRequests": 498
}`

func newClient(t *testing.T, baseURL, apiKey string) *plantnet.Client {
	t.Helper()

	cfg := &plantnet.Config{BaseURL: baseURL, APIKey: apiKey}
	require.NoError(t, cfg.Finalize(nil))

	return plantnet.New(cfg, plantnet.WithHTTPClient(http.DefaultClient))
}

func jpeg() plantnet.Photo {
	return plantnet.Photo{Data: []byte("jpeg-bytes"), Filename: "plant.jpg", ContentType: "image/jpeg"}
}

func TestIdentifyRequestShape(t *testing.T) {
	var captured struct {
		method, path string
		query        map[string]string
		organs       string
		filename     string
		partType     string
		data         string
		firstField   string
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.query = map[string]string{}
		for k := range r.URL.Query() {
			captured.query[k] = r.URL.Query().Get(k)
		}

		mr, err := r.MultipartReader()
		require.NoError(t, err)

		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			if captured.firstField == "" {
				captured.firstField = part.FormName()
			}

			body, _ := io.ReadAll(part)
			switch part.FormName() {
			case "organs":
				captured.organs = string(body)
			case "images":
				captured.filename = part.FileName()
				captured.partType = part.Header.Get("Content-Type")
				captured.data = string(body)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(roseResponse))
	}))
	defer srv.Close()

	photo := plantnet.Photo{Data: []byte("png-bytes"), Filename: "plant.png", ContentType: "image/png"}
	_, err := newClient(t, srv.URL, "secret").Identify(context.Background(), photo)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.method)
	assert.Equal(t, "/v2/identify/all", captured.path)
	assert.Equal(t, map[string]string{
		"api-key":                "secret",
		"include-related-images": "true",
		"no-reject":              "false",
		"nb-results":             "5",
		"lang":                   "en",
	}, captured.query)
	assert.Equal(t, "organs", captured.firstField)
	assert.Equal(t, "auto", captured.organs)
	assert.Equal(t, "plant.png", captured.filename)
	assert.Equal(t, "image/png", captured.partType)
	assert.Equal(t, "png-bytes", captured.data)
}

func TestIdentifyDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(roseResponse))
	}))
	defer srv.Close()

	got, err := newClient(t, srv.URL, "secret").Identify(context.Background(), jpeg())
	require.NoError(t, err)

	require.Len(t, got.Response.Results, 1)
	r := got.Response.Results[0]
	assert.InDelta(t, 0.87, r.Score, 1e-9)
	assert.Equal(t, "Rosa gallica", r.Species.ScientificNameWithoutAuthor)
	assert.Equal(t, "L.", r.Species.ScientificNameAuthorship)
	assert.Equal(t, "Rosaceae", r.Species.Family.ScientificNameWithoutAuthor)
	assert.Equal(t, "m1", r.Images[0].URL.M)
	assert.Equal(t, 498, got.Response.RemainingIdentificationRequests)
	assert.JSONEq(t, roseResponse, string(got.Raw))
}

func TestIdentifyAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"not found", http.StatusNotFound, `{"message":"Species not found"}`, `Pl@ntNet API error: 404 - {"message":"Species not found"}`},
		{"rate limited", http.StatusTooManyRequests, "Too Many Requests", "Pl@ntNet API error: 429 - Too Many Requests"},
		{"unauthorized", http.StatusUnauthorized, "Unauthorized", "Pl@ntNet API error: 401 - Unauthorized"},
		{"server error", http.StatusInternalServerError, "boom\n", "Pl@ntNet API error: 500 - boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newClient(t, srv.URL, "secret").Identify(context.Background(), jpeg())

			var apiErr *plantnet.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Error())
		})
	}
}

func TestIdentifyMissingAPIKey(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "  ")
	assert.False(t, client.Configured())

	_, err := client.Identify(context.Background(), jpeg())
	assert.ErrorIs(t, err, plantnet.ErrMissingAPIKey)
	assert.Equal(t, "Pl@ntNet API key not configured", err.Error())
	assert.Zero(t, calls)
}

type failingDoer struct{}

func (failingDoer) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestIdentifyTransportError(t *testing.T) {
	cfg := &plantnet.Config{APIKey: "secret"}
	require.NoError(t, cfg.Finalize(nil))

	_, err := plantnet.New(cfg, plantnet.WithHTTPClient(failingDoer{})).Identify(context.Background(), jpeg())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	var apiErr *plantnet.APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestIdentifyTransportErrorOmitsAPIKey(t *testing.T) {
	const key = "SECRET-KEY-123"

	t.Run("unreachable host", func(t *testing.T) {
		_, err := newClient(t, "http://127.0.0.1:1", key).Identify(context.Background(), jpeg())
		require.Error(t, err)
		assert.NotContains(t, err.Error(), key)
		assert.NotContains(t, err.Error(), "api-key")
		assert.NotContains(t, err.Error(), "latency")
	})

	t.Run("url error from doer", func(t *testing.T) {
		cfg := &plantnet.Config{APIKey: key}
		require.NoError(t, cfg.Finalize(nil))

		doer := doerFunc(func(req *http.Request) (*http.Response, error) {
			return nil, &url.Error{Op: "Post", URL: req.URL.String(), Err: errors.New("connection reset by peer")}
		})

		_, err := plantnet.New(cfg, plantnet.WithHTTPClient(doer)).Identify(context.Background(), jpeg())
		require.Error(t, err)
		assert.Equal(t, "execute request: connection reset by peer", err.Error())
	})
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func TestIdentifyDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL, "secret").Identify(context.Background(), jpeg())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
