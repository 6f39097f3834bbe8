package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/starford/scaffold/internal/journalservice"
	"github.com/starford/scaffold/internal/models"
	"github.com/starford/scaffold/internal/testutil"
	"github.com/starford/scaffold/internal/vault"
)

// testEnv sets up a temp vault, service, and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*vault.Vault, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) (*vault.Vault, http.Handler) {
	t.Helper()
	store := testutil.TestVault(t)
	svc := journalservice.NewService(store, nil, testutil.Logger())
	return store, NewRouter(svc, authEnabled, token, sseHandler)
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestEventsAndTimeline(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/events", map[string]string{
		"timestamp": "2025-01-01", "description": "Launch new venture", "outcome": "Success and fulfillment",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodPost, "/events", map[string]string{"timestamp": "2025-03-01"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create with empty fields = %d", w.Code)
	}

	w = do(t, router, http.MethodGet, "/events", nil)
	var list struct {
		Events []map[string]string `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Events) != 2 || list.Events[1]["outcome"] != "" {
		t.Errorf("events = %v", list.Events)
	}

	w = do(t, router, http.MethodGet, "/timeline", nil)
	want := "2025-01-01: Launch new venture -> Success and fulfillment\n2025-03-01:  -> "
	if w.Body.String() != want {
		t.Errorf("timeline = %q, want %q", w.Body.String(), want)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
}

func TestEmptyListsAreArrays(t *testing.T) {
	_, router := testEnv(t, "")
	for _, path := range []string{"/events", "/affirmations", "/reflections", "/holograms", "/reinforcements"} {
		w := do(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, w.Code)
		}
		if bytes.Contains(w.Body.Bytes(), []byte("null")) {
			t.Errorf("%s body = %s", path, w.Body.String())
		}
	}
	w := do(t, router, http.MethodGet, "/timeline", nil)
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Errorf("empty timeline = %d %q", w.Code, w.Body.String())
	}
}

func TestAffirmationRotation(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/affirmations/next", nil)
	var next NextAffirmationResponse
	_ = json.Unmarshal(w.Body.Bytes(), &next)
	if w.Code != http.StatusOK || next.Text != "" {
		t.Fatalf("next on empty = %d %q", w.Code, next.Text)
	}

	for _, text := range []string{"I adapt and grow.", "My goals are within reach."} {
		if w := do(t, router, http.MethodPost, "/affirmations", map[string]string{"text": text}); w.Code != http.StatusCreated {
			t.Fatalf("add status = %d", w.Code)
		}
	}

	var got []string
	for range 3 {
		w := do(t, router, http.MethodGet, "/affirmations/next", nil)
		_ = json.Unmarshal(w.Body.Bytes(), &next)
		got = append(got, next.Text)
	}
	want := []string{"I adapt and grow.", "My goals are within reach.", "I adapt and grow."}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("next[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReflections(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodPost, "/reflections", map[string]string{"text": "Feeling optimistic"}); w.Code != http.StatusCreated {
		t.Fatalf("reflect status = %d", w.Code)
	}
	w := do(t, router, http.MethodGet, "/reflections", nil)
	var list struct {
		Reflections []string `json:"reflections"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Reflections) != 1 || list.Reflections[0] != "Feeling optimistic" {
		t.Errorf("reflections = %v", list.Reflections)
	}
}

func TestValidationErrors(t *testing.T) {
	_, router := testEnv(t, "")

	cases := []struct {
		name string
		path string
		body any
	}{
		{"empty reflection", "/reflections", map[string]string{"text": ""}},
		{"empty affirmation", "/affirmations", map[string]string{}},
		{"layer without facet", "/holograms", map[string]string{"concept": "c"}},
		{"drill without concept", "/reinforcements", map[string]any{"expansion": "a b", "word_counts": []int{1}}},
		{"unknown field", "/events", map[string]string{"when": "now"}},
		{"wrong type", "/reinforcements", map[string]any{"concept": "c", "expansion": "a", "word_counts": "3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, tc.path, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestHologramLayers(t *testing.T) {
	_, router := testEnv(t, "")

	layers := []LayerRequest{
		{Concept: "Resilience", Facet: "visual", Description: "oak tree"},
		{Concept: "Other", Facet: "visual", Description: "river"},
		{Concept: "Resilience", Facet: "emotion", Description: "calm strength"},
		{Concept: "Resilience", Facet: "visual", Description: "oak tree bending but not breaking"},
	}
	var resp LayerResponse
	for _, l := range layers {
		w := do(t, router, http.MethodPost, "/holograms", l)
		if w.Code != http.StatusCreated {
			t.Fatalf("add layer status = %d", w.Code)
		}
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	want := "visual: oak tree bending but not breaking | emotion: calm strength"
	if resp.Synthesis != want {
		t.Errorf("synthesis after add = %q, want %q", resp.Synthesis, want)
	}

	w := do(t, router, http.MethodGet, "/holograms/Resilience/synthesis", nil)
	var syn SynthesisResponse
	_ = json.Unmarshal(w.Body.Bytes(), &syn)
	if w.Code != http.StatusOK || syn.Synthesis != want {
		t.Errorf("synthesis = %d %q", w.Code, syn.Synthesis)
	}

	w = do(t, router, http.MethodGet, "/holograms?concept=Resilience", nil)
	var list struct {
		Holograms []map[string]string `json:"holograms"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Holograms) != 3 {
		t.Errorf("filtered holograms = %d, want 3", len(list.Holograms))
	}
}

func TestSynthesis_EncodedConcept(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/holograms", LayerRequest{Concept: "Abundant mindset", Facet: "sound", Description: "chimes"})

	w := do(t, router, http.MethodGet, "/holograms/Abundant%20mindset/synthesis", nil)
	var syn SynthesisResponse
	_ = json.Unmarshal(w.Body.Bytes(), &syn)
	if w.Code != http.StatusOK || syn.Concept != "Abundant mindset" || syn.Synthesis != "sound: chimes" {
		t.Errorf("got %d %+v", w.Code, syn)
	}
}

func TestSynthesis_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/holograms/Nothing/synthesis", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDrill(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/reinforcements", DrillRequest{
		Concept: "focus", Expansion: "a b c d e", WordCounts: []int{3, 1, 0},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("drill status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp DrillResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	want := []string{"a b c", "a", ""}
	if len(resp.Summaries) != len(want) {
		t.Fatalf("summaries = %q", resp.Summaries)
	}
	for i := range want {
		if resp.Summaries[i] != want[i] {
			t.Errorf("summaries[%d] = %q, want %q", i, resp.Summaries[i], want[i])
		}
	}

	_ = do(t, router, http.MethodPost, "/reinforcements", DrillRequest{Concept: "other", Expansion: "x y"})

	w = do(t, router, http.MethodGet, "/reinforcements?concept=focus", nil)
	var list struct {
		Reinforcements []map[string]string `json:"reinforcements"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Reinforcements) != 4 {
		t.Fatalf("focus records = %d, want 4", len(list.Reinforcements))
	}
	phases := []string{"decompress", "compress_3", "compress_1", "compress_0"}
	for i, p := range phases {
		if list.Reinforcements[i]["phase"] != p {
			t.Errorf("phase[%d] = %q, want %q", i, list.Reinforcements[i]["phase"], p)
		}
	}

	w = do(t, router, http.MethodGet, "/reinforcements", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Reinforcements) != 5 {
		t.Errorf("all records = %d, want 5", len(list.Reinforcements))
	}
}

func TestCorruptVault(t *testing.T) {
	store, router := testEnv(t, "")
	if err := os.WriteFile(store.Path(), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := do(t, router, http.MethodGet, "/reflections", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("list status = %d, want 503", w.Code)
	}
	w = do(t, router, http.MethodPost, "/reflections", map[string]string{"text": "x"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("append status = %d, want 503", w.Code)
	}
	var body errResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error == "" {
		t.Error("expected error message")
	}
}

func TestMissingVaultIsInternalError(t *testing.T) {
	store, router := testEnv(t, "")
	if err := os.Remove(store.Path()); err != nil {
		t.Fatal(err)
	}
	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	req := httptest.NewRequest(http.MethodGet, "/reflections", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	w := do(t, router, http.MethodGet, "/reflections", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")
	req := httptest.NewRequest(http.MethodPost, "/reflections", bytes.NewReader([]byte(`{"text":"x"}`)))
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/affirmations", nil)
	if w.Code != http.StatusOK {
		t.Errorf("disabled auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestStream_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "secret", blockingSSE)

	w := do(t, router, http.MethodGet, "/stream", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestStream_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}

func TestStream_NotMountedWithoutHandler(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/stream", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSynthesis_LiteralPercentConcept(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/holograms", LayerRequest{Concept: "%41", Facet: "visual", Description: "percent"})
	_ = do(t, router, http.MethodPost, "/holograms", LayerRequest{Concept: "A", Facet: "visual", Description: "letter"})

	w := do(t, router, http.MethodGet, "/holograms/%2541/synthesis", nil)
	var syn SynthesisResponse
	_ = json.Unmarshal(w.Body.Bytes(), &syn)
	if w.Code != http.StatusOK || syn.Concept != "%41" || syn.Synthesis != "visual: percent" {
		t.Errorf("got %d %+v", w.Code, syn)
	}
}

func TestSynthesis_EncodedSlashConcept(t *testing.T) {
	_, router := testEnv(t, "")
	_ = do(t, router, http.MethodPost, "/holograms", LayerRequest{Concept: "mind/body", Facet: "emotion", Description: "whole"})

	w := do(t, router, http.MethodGet, "/holograms/mind%2Fbody/synthesis", nil)
	var syn SynthesisResponse
	_ = json.Unmarshal(w.Body.Bytes(), &syn)
	if w.Code != http.StatusOK || syn.Concept != "mind/body" || syn.Synthesis != "emotion: whole" {
		t.Errorf("got %d %+v", w.Code, syn)
	}
}

func TestDrill_TooManyWordCounts(t *testing.T) {
	store, router := testEnv(t, "")
	counts := make([]int, models.MaxDrillWordCounts+1)
	w := do(t, router, http.MethodPost, "/reinforcements", DrillRequest{Concept: "c", Expansion: "a b", WordCounts: counts})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	raw, err := store.ReadAll(models.Reinforcements)
	if err != nil || len(raw) != 0 {
		t.Errorf("rejected drill persisted records: %d, %v", len(raw), err)
	}

	counts = counts[:models.MaxDrillWordCounts]
	w = do(t, router, http.MethodPost, "/reinforcements", DrillRequest{Concept: "c", Expansion: "a b", WordCounts: counts})
	if w.Code != http.StatusCreated {
		t.Errorf("status at limit = %d, want 201", w.Code)
	}
}
