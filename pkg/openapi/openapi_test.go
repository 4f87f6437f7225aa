package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/flora/pkg/openapi"
)

func TestNewSpec(t *testing.T) {
	cfg := &openapi.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	spec := openapi.NewSpec(cfg, "0.1.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Flora API" {
		t.Errorf("title: got %s", spec.Info.Title)
	}
	if spec.Info.Version != "0.1.0" {
		t.Errorf("version: got %s", spec.Info.Version)
	}
	if _, ok := spec.Components.Schemas["Error"]; !ok {
		t.Error("missing Error schema")
	}
	for _, name := range []string{"BadRequest", "NotFound", "Conflict", "PayloadTooLarge", "InternalError"} {
		if _, ok := spec.Components.Responses[name]; !ok {
			t.Errorf("missing %s response", name)
		}
	}
}

func TestConfigEnvAndMerge(t *testing.T) {
	t.Setenv("TEST_OPENAPI_TITLE", "Env Title")

	cfg := &openapi.Config{}
	if err := cfg.Finalize(&openapi.ConfigEnv{Title: "TEST_OPENAPI_TITLE"}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Title != "Env Title" {
		t.Errorf("title: got %s, want Env Title", cfg.Title)
	}

	cfg.Merge(&openapi.Config{Description: "Overlay"})
	if cfg.Title != "Env Title" || cfg.Description != "Overlay" {
		t.Errorf("merge: got %+v", cfg)
	}
}

func TestAddOperation(t *testing.T) {
	spec := openapi.NewSpec(&openapi.Config{}, "1")

	get := &openapi.Operation{Summary: "get"}
	del := &openapi.Operation{Summary: "delete"}
	spec.AddOperation("/items/{id}", http.MethodGet, get)
	spec.AddOperation("/items/{id}", http.MethodDelete, del)

	item := spec.Paths["/items/{id}"]
	if item.Get != get || item.Delete != del {
		t.Errorf("path item: got %+v", item)
	}
	if item.Post != nil || item.Put != nil {
		t.Error("unexpected operations on path item")
	}
}

func TestHelpers(t *testing.T) {
	if got := openapi.SchemaRef("Identification").Ref; got != "#/components/schemas/Identification" {
		t.Errorf("schema ref: got %s", got)
	}
	if got := openapi.ResponseRef("NotFound").Ref; got != "#/components/responses/NotFound" {
		t.Errorf("response ref: got %s", got)
	}

	mp := openapi.RequestBodyMultipart("image", "Plant photo")
	field := mp.Content["multipart/form-data"].Schema.Properties["image"]
	if field == nil || field.Format != "binary" {
		t.Errorf("multipart field: got %+v", field)
	}

	arr := openapi.ResponseJSONArray("list", "Identification")
	if arr.Content["application/json"].Schema.Items.Ref != "#/components/schemas/Identification" {
		t.Error("array items ref mismatch")
	}

	p := openapi.PathParam("id", "Identification ID")
	if p.In != "path" || !p.Required || p.Schema.Format != "uuid" {
		t.Errorf("path param: got %+v", p)
	}

	q := openapi.QueryEnum("status", "Filter", "pending", "success")
	if q.In != "query" || q.Required || len(q.Schema.Enum) != 2 {
		t.Errorf("query enum: got %+v", q)
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec(&openapi.Config{Title: "Flora API"}, "1")
	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	res := rec.Result()
	defer res.Body.Close()

	if ct := res.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content-type: got %s", ct)
	}

	body, _ := io.ReadAll(res.Body)
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if parsed["openapi"] != "3.1.0" {
		t.Errorf("openapi: got %v", parsed["openapi"])
	}
}
