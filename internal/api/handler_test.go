package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/cymond/educhat/internal/character"
	"github.com/cymond/educhat/internal/emotion"
	"github.com/cymond/educhat/internal/engine"
	"github.com/cymond/educhat/internal/memory"
)

type fakeEngine struct {
	result *engine.TurnResult
	err    error
	calls  int
}

func (f *fakeEngine) ProcessTurn(_ context.Context, characterName, _, _ string) (*engine.TurnResult, error) {
	f.calls++
	if characterName == "Nobody" {
		return nil, character.ErrNotFound
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStates struct{}

func (fakeStates) LoadState(_ context.Context, _, _ string) (*character.DynamicState, *character.Relationship, error) {
	return character.NewDynamicState(), character.NewRelationship(), nil
}

func (fakeStates) SaveState(_ context.Context, _, _ string, _ *character.DynamicState, _ *character.Relationship) error {
	return nil
}

type fakeMemories struct {
	records []*memory.Record
}

func (f *fakeMemories) AllMemories(_ context.Context, _, _ string) ([]*memory.Record, error) {
	return f.records, nil
}

// newTestHandler creates a Handler wired with lightweight in-memory deps (no Postgres/Redis).
func newTestHandler(t *testing.T) (*fakeEngine, *fakeMemories, http.Handler) {
	t.Helper()
	logger := zap.NewNop()

	reg := character.NewRegistry(logger)
	for _, p := range character.BuiltinProfiles() {
		reg.Register(p)
	}

	eng := &fakeEngine{
		result: &engine.TurnResult{
			Response: "Hei! Tervetuloa.",
			Metadata: engine.Metadata{
				Emotion:           emotion.Engaged,
				EmotionConfidence: 0.3,
				AdaptationMode:    character.ModeBalanced,
				TokenBudget:       300,
			},
		},
	}
	mems := &fakeMemories{}

	h := NewHandler(eng, reg, fakeStates{}, mems, logger)
	return eng, mems, h.Router()
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body interface{}) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func getJSON(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// --- Tests ---

func TestHealthCheck(t *testing.T) {
	_, _, router := newTestHandler(t)
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp := getJSON(t, ts, "/api/health")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	decodeJSON(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestListCharacters(t *testing.T) {
	_, _, router := newTestHandler(t)
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp := getJSON(t, ts, "/api/characters")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var profiles []character.Profile
	decodeJSON(t, resp, &profiles)
	if len(profiles) != 4 {
		t.Fatalf("expected 4 built-in characters, got %d", len(profiles))
	}
	names := map[string]bool{}
	for _, p := range profiles {
		names[p.Name] = true
	}
	for _, want := range []string{"Aino", "Mase", "Anna", "Bee"} {
		if !names[want] {
			t.Errorf("missing character %s", want)
		}
	}
}

func TestGetCharacter(t *testing.T) {
	_, _, router := newTestHandler(t)
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp := getJSON(t, ts, "/api/characters/Aino")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var p character.Profile
	decodeJSON(t, resp, &p)
	if p.Name != "Aino" {
		t.Errorf("name = %q", p.Name)
	}

	resp = getJSON(t, ts, "/api/characters/Nobody")
	if resp.StatusCode != 404 {
		t.Errorf("unknown character: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGetCharacterState(t *testing.T) {
	_, _, router := newTestHandler(t)
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp := getJSON(t, ts, "/api/characters/Aino/state?user_id=u1")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Character string                   `json:"character"`
		State     *character.DynamicState  `json:"state"`
		Rel       *character.Relationship  `json:"relationship"`
	}
	decodeJSON(t, resp, &body)
	if body.Character != "Aino" {
		t.Errorf("character = %q", body.Character)
	}
	if body.State == nil || body.State.AdaptationMode != character.ModeBalanced {
		t.Errorf("unexpected initial state: %+v", body.State)
	}
	if body.Rel == nil || body.Rel.Rapport != 0.5 {
		t.Errorf("unexpected initial relationship: %+v", body.Rel)
	}

	resp = getJSON(t, ts, "/api/characters/Aino/state")
	if resp.StatusCode != 400 {
		t.Errorf("missing user_id: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestChat(t *testing.T) {
	eng, _, router := newTestHandler(t)
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp := postJSON(t, ts, "/api/chat", map[string]string{
		"character": "Aino",
		"user_id":   "u1",
		"message":   "hei!",
	})
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result engine.TurnResult
	decodeJSON(t, resp, &result)
	if result.Response != "Hei! Tervetuloa." {
		t.Errorf("response = %q", result.Response)
	}
	if result.Metadata.TokenBudget != 300 {
		t.Errorf("token budget = %d", result.Metadata.TokenBudget)
	}
	if eng.calls != 1 {
		t.Errorf("engine called %d times", eng.calls)
	}
}

func TestChatValidation(t *testing.T) {
	_, _, router := newTestHandler(t)
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp := postJSON(t, ts, "/api/chat", map[string]string{"character": "Aino"})
	if resp.StatusCode != 400 {
		t.Errorf("incomplete request: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, ts, "/api/chat", map[string]string{
		"character": "Nobody",
		"user_id":   "u1",
		"message":   "hi",
	})
	if resp.StatusCode != 404 {
		t.Errorf("unknown character: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestListMemoriesAndSummary(t *testing.T) {
	_, mems, router := newTestHandler(t)
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp := getJSON(t, ts, "/api/memories?character=Aino&user_id=u1")
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var records []*memory.Record
	decodeJSON(t, resp, &records)
	if len(records) != 0 {
		t.Errorf("expected empty list, got %d records", len(records))
	}

	rec := memory.NewRecord("Aino", "u1", memory.TypePreference, "User expressed: I love Finnish")
	rec.Importance = 7
	mems.records = []*memory.Record{rec}

	resp = getJSON(t, ts, "/api/memories/summary?character=Aino&user_id=u1")
	if resp.StatusCode != 200 {
		t.Fatalf("summary: expected 200, got %d", resp.StatusCode)
	}
	var sum memory.Summary
	decodeJSON(t, resp, &sum)
	if sum.TotalMemories != 1 {
		t.Errorf("total memories = %d", sum.TotalMemories)
	}
	if sum.ByType[memory.TypePreference] != 1 {
		t.Errorf("by_type = %v", sum.ByType)
	}

	resp = getJSON(t, ts, "/api/memories")
	if resp.StatusCode != 400 {
		t.Errorf("missing params: expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
