// Package plantnet is a client for the Pl@ntNet plant identification API.
package plantnet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// MaxResults is the most candidates a single identify call requests.
const MaxResults = 5

const maxErrorBody = 64 << 10

// HTTPDoer executes HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client submits photos to the Pl@ntNet identify endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	language   string
	results    int
	httpClient HTTPDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// New creates a client from a finalized config.
func New(cfg *Config, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/v2/identify/" + url.PathEscape(cfg.Project),
		language:   cfg.Language,
		results:    cfg.Results,
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Identify submits a single photo with organ detection set to auto.
// A non-2xx response is returned as *APIError.
func (c *Client) Identify(ctx context.Context, photo Photo) (*Identification, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}

	body, contentType, err := encodePhoto(photo)
	if err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.requestURL(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", redactURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var payload Response
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &Identification{Response: &payload, Raw: raw}, nil
}

// redactURL drops the request URL, which carries the api key, from a
// transport error.
func redactURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func (c *Client) requestURL() string {
	params := url.Values{}
	params.Set("api-key", c.apiKey)
	params.Set("include-related-images", "true")
	params.Set("no-reject", "false")
	params.Set("nb-results", strconv.Itoa(c.results))
	params.Set("lang", c.language)
	return c.endpoint + "?" + params.Encode()
}

// encodePhoto writes the organs field before the image, the order the API pairs them in.
func encodePhoto(photo Photo) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("organs", "auto"); err != nil {
		return nil, "", err
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, photo.Filename))
	if photo.ContentType != "" {
		header.Set("Content-Type", photo.ContentType)
	} else {
		header.Set("Content-Type", "application/octet-stream")
	}

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(photo.Data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
