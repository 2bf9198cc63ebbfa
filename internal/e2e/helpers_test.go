package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"inferd/internal/httpapi"
	"inferd/internal/manager"
	"inferd/internal/registry"
	"inferd/internal/source"
	"inferd/pkg/types"
)

// createTempModelsDir populates a temp directory with empty .gguf files and
// returns its path. The filenames double as model IDs.
func createTempModelsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte(""), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", p, err)
		}
	}
	return dir
}

// newServerForDir scans dir, builds a manager over a scripted source with
// the given inter-fragment delay, and serves the full HTTP mux from a test
// server.
func newServerForDir(t *testing.T, dir, defaultModel string, delay time.Duration) (*httptest.Server, *manager.Manager) {
	t.Helper()
	reg, err := registry.LoadDir(dir)
	if err != nil {
		t.Fatalf("load models: %v", err)
	}
	src, err := source.ForName("scripted", source.Options{StreamDelay: delay})
	if err != nil {
		t.Fatalf("build source: %v", err)
	}
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Registry:     reg,
		DefaultModel: defaultModel,
		Source:       src,
		MaxWait:      2 * time.Second,
	})
	t.Cleanup(func() {
		if err := mgr.Close(); err != nil {
			t.Logf("manager close: %v", err)
		}
	})
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// getStatus fetches and decodes /status.
func getStatus(t *testing.T, base string) types.StatusResponse {
	t.Helper()
	resp, body := httpGet(t, base+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status status=%d body=%s", resp.StatusCode, body)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("/status json: %v body=%s", err, body)
	}
	return st
}

// waitFor polls cond until it holds or a short deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
