package inferctl

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inferd/pkg/types"
)

func runCommand(t *testing.T, srvURL string, args ...string) (string, error) {
	t.Helper()
	cfg := &Config{Addr: srvURL, TimeoutSec: 5, LogLvl: "error"}
	root := BuildRootCmd(cfg)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestModelsCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.ModelsResponse{Models: []types.Model{
			{ID: "tinyllama-q4", Kind: "gguf", Path: "/models/tiny.gguf"},
		}})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "models")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "tinyllama-q4") || !strings.Contains(out, "KIND") {
		t.Fatalf("output=%q", out)
	}
}

func TestStatusCommandJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.StatusResponse{State: "idle", LoadsTotal: 7})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "status", "--json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var st types.StatusResponse
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("output not JSON: %v: %q", err, out)
	}
	if st.State != "idle" || st.LoadsTotal != 7 {
		t.Fatalf("status=%+v", st)
	}
}

func TestStatusCommandRendersEngines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.StatusResponse{
			State:        "ready",
			DefaultModel: "m1",
			Engines: []types.EngineStatus{{
				ModelID:     "m1",
				Phase:       "ready",
				Generations: 4,
				Params:      types.ParamsView{Temperature: 0.7, TopP: 0.95, MaxGenLen: 1024},
			}},
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "status")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"state: ready", "default: m1", "MODEL", "PHASE", "m1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestGenerateCommandStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Prompt != "hello there" {
			t.Errorf("prompt=%q", req.Prompt)
		}
		enc := json.NewEncoder(w)
		enc.Encode(types.TokenLine{Token: "hi "})
		enc.Encode(types.TokenLine{Token: "friend"})
		enc.Encode(types.GenerateResponse{Done: true, Content: "hi friend", FinishReason: "stop", Fragments: 2})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "generate", "--stream", "hello", "there")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "hi friend\n" {
		t.Fatalf("output=%q", out)
	}
}

func TestGenerateCommandSendsOverrides(t *testing.T) {
	var got types.GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(types.GenerateResponse{Done: true, Content: "ok", FinishReason: "stop"})
	}))
	defer srv.Close()

	_, err := runCommand(t, srv.URL, "generate", "--model", "m2", "--temperature", "1.5", "--max-gen-len", "8", "prompt")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.Model != "m2" {
		t.Fatalf("model=%q", got.Model)
	}
	if got.Temperature == nil || *got.Temperature != 1.5 {
		t.Fatalf("temperature=%v", got.Temperature)
	}
	if got.MaxGenLen == nil || *got.MaxGenLen != 8 {
		t.Fatalf("max_gen_len=%v", got.MaxGenLen)
	}
	if got.TopP != nil {
		t.Fatalf("top_p should be unset, got %v", *got.TopP)
	}
}

func TestGenerateCommandNoPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	}))
	defer srv.Close()

	_, err := runCommand(t, srv.URL, "generate")
	if err == nil || !strings.Contains(err.Error(), "no prompt") {
		t.Fatalf("err=%v", err)
	}
}

func TestCancelCommandNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.CancelResponse{Canceled: false})
	}))
	defer srv.Close()

	_, err := runCommand(t, srv.URL, "cancel", "--model", "m1")
	if err == nil || !strings.Contains(err.Error(), "no matching") {
		t.Fatalf("err=%v", err)
	}
}

func TestParamsRequiresSubcommand(t *testing.T) {
	_, err := runCommand(t, "http://127.0.0.1:1", "params")
	if err == nil || !strings.Contains(err.Error(), "subcommand") {
		t.Fatalf("err=%v", err)
	}
}

func TestParamsSetRequiresAField(t *testing.T) {
	_, err := runCommand(t, "http://127.0.0.1:1", "params", "set")
	if err == nil || !strings.Contains(err.Error(), "nothing to set") {
		t.Fatalf("err=%v", err)
	}
}

func TestParamsSetCommand(t *testing.T) {
	var got types.ParamsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(types.ParamsView{Temperature: 1.1, TopP: 0.95, MaxGenLen: 1024})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "params", "set", "--temperature", "1.1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.Temperature == nil || *got.Temperature != 1.1 {
		t.Fatalf("request=%+v", got)
	}
	if !strings.Contains(out, "temperature=1.10") {
		t.Fatalf("output=%q", out)
	}
}

func TestResetCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.ResetResponse{Reset: true})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "reset", "--model", "m1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "reset") {
		t.Fatalf("output=%q", out)
	}
}

func TestServerErrorSurfacesToUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(types.ErrorResponse{Error: "load /m.gguf: truncated", Code: 503})
	}))
	defer srv.Close()

	_, err := runCommand(t, srv.URL, "generate", "prompt")
	if err == nil || !strings.Contains(err.Error(), "truncated") {
		t.Fatalf("err=%v", err)
	}
}
