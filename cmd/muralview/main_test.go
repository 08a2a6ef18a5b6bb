package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/muralmap/internal/adapters/mapdata"
	"github.com/samirrijal/muralmap/internal/adapters/memory"
	"github.com/samirrijal/muralmap/internal/viewer"
)

const murals = `{"type":"FeatureCollection","features":[
{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.27,37.80]},"properties":{"name":"Alpha"}},
{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.2701,37.8001]},"properties":{"name":"Beta"}},
{"type":"Feature","geometry":{"type":"Point","coordinates":[-122.20,37.75]},"properties":{"name":"Gamma"}}]}`

func newView(t *testing.T, handler http.HandlerFunc, out string) (*view, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	blobs := memory.NewBlobStore()
	ctrl := viewer.NewController("cli",
		viewer.NewMap(viewer.DefaultMapOptions()),
		mapdata.NewClient(srv.URL, "/get_mural_data", time.Second),
		blobs, nil)
	var buf bytes.Buffer
	return &view{ctrl: ctrl, blobs: blobs, zoom: 11.5, out: out, w: &buf}, &buf
}

func TestView_LoadClusterExport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "mural_data.json")
	v, buf := newView(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(murals))
	}, out)

	if err := v.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := buf.String()
	for _, want := range []string{"3 features, 3 markers", "2 clusters at zoom 11.5", "(2 murals within", "Gamma", "saved "} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, text)
		}
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), `"Gamma"`) {
		t.Errorf("expected export to carry the features, got %s", data)
	}
	if v.blobs.Len() != 1 {
		t.Errorf("expected a single live blob, got %d", v.blobs.Len())
	}
}

func TestView_SkipExport(t *testing.T) {
	v, buf := newView(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(murals))
	}, "")

	if err := v.run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(buf.String(), "saved") || v.blobs.Len() != 0 {
		t.Errorf("expected no export, got:\n%s", buf.String())
	}
}

func TestView_FetchFailure(t *testing.T) {
	v, _ := newView(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, "")

	if err := v.run(context.Background()); err == nil {
		t.Fatal("expected an error when the API is down")
	}
	if v.ctrl.Instructions() != viewer.InitialInstructions {
		t.Errorf("expected instructions untouched, got %q", v.ctrl.Instructions())
	}
}
