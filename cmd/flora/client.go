package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JaimeStill/flora/internal/identifications"
)

var errNotFound = errors.New("identification not found")

// client calls the identifications API of a flora server.
type client struct {
	base string
	http *http.Client
}

func newClient(server, apiPath string) *client {
	return &client{
		base: strings.TrimSuffix(server, "/") + apiPath + "/identifications",
		http: &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *client) upload(ctx context.Context, path string) (*identifications.Identification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", imageContentType(path, data))
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var rec identifications.Identification
	if err := c.do(req, http.StatusCreated, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *client) list(ctx context.Context, status string) ([]identifications.Identification, error) {
	u := c.base
	if status != "" {
		u += "?" + url.Values{"status": {status}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var records []identifications.Identification
	if err := c.do(req, http.StatusOK, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *client) find(ctx context.Context, id string) (*identifications.Identification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var rec identifications.Identification
	if err := c.do(req, http.StatusOK, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *client) remove(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact server: %w", err)
	}
	defer resp.Body.Close()

	var result identifications.DeleteResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	switch {
	case result.Success:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	default:
		return fmt.Errorf("delete failed: %s", result.Error)
	}
}

// wait polls the record every interval until it leaves pending.
func (c *client) wait(ctx context.Context, id string, interval time.Duration) (*identifications.Identification, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		rec, err := c.find(ctx, id)
		if err != nil {
			return nil, err
		}
		if identifications.Terminal(rec.Status) {
			return rec, nil
		}

		select {
		case <-ctx.Done():
			return rec, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *client) do(req *http.Request, want int, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return responseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func responseError(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}

	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}

func imageContentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return http.DetectContentType(data)
}
