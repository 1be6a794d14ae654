package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"live-trivia-service/internal/app"
	"live-trivia-service/internal/domain"
	"live-trivia-service/internal/infra/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.Game) {
	t.Helper()
	catalog := memory.NewCatalog(memory.NewStaticSetLoader([]domain.QuestionSet{
		{
			ID:   "general",
			Name: "General Knowledge",
			Questions: []domain.SetQuestion{
				{Prompt: "Largest planet?", Options: []string{"Jupiter", "Mars"}, CorrectIndex: 0},
			},
		},
	}), time.Minute)
	game := app.NewGame(catalog, nil, 10)

	mux := http.NewServeMux()
	NewAPI(game).Register(mux)
	mux.HandleFunc("/ws", NewWSHandler(game).ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, game
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return payload
}

func TestJoinAndDuplicateNickname(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/join", map[string]string{"nickname": "Ann"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	joined := decodeBody(t, resp)
	if joined["playerId"] == "" || joined["nickname"] != "Ann" {
		t.Fatalf("unexpected join payload: %v", joined)
	}

	resp = postJSON(t, server.URL+"/join", map[string]string{"nickname": "ann"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate nickname, got %d", resp.StatusCode)
	}
	conflict := decodeBody(t, resp)
	suggestions, ok := conflict["suggestions"].([]any)
	if !ok || len(suggestions) != 5 {
		t.Fatalf("expected 5 suggestions, got %v", conflict["suggestions"])
	}
}

func TestQuestionAnswerRevealFlow(t *testing.T) {
	server, _ := newTestServer(t)

	joined := decodeBody(t, postJSON(t, server.URL+"/join", map[string]string{"nickname": "Ann"}))
	playerID := joined["playerId"].(string)

	resp := postJSON(t, server.URL+"/question", map[string]any{
		"prompt":  "Best editor?",
		"options": []string{"ed", "cat"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/answer", map[string]any{
		"playerId":    playerID,
		"answerIndex": 0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Duplicate submissions are acknowledged, not rejected.
	dup := decodeBody(t, postJSON(t, server.URL+"/answer", map[string]any{
		"playerId":    playerID,
		"answerIndex": 1,
	}))
	if dup["duplicate"] != true {
		t.Fatalf("expected duplicate flag, got %v", dup)
	}

	revealed := decodeBody(t, postJSON(t, server.URL+"/reveal", map[string]int{"correctIndex": 0}))
	if revealed["correctIndex"].(float64) != 0 {
		t.Fatalf("unexpected reveal payload: %v", revealed)
	}

	stateResp, err := http.Get(server.URL + "/state?playerId=" + playerID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	var snap domain.Snapshot
	if err := json.NewDecoder(stateResp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	stateResp.Body.Close()
	if snap.Question.Status != domain.StatusRevealed {
		t.Fatalf("expected revealed state, got %s", snap.Question.Status)
	}
	if len(snap.Leaderboard) != 1 || snap.Leaderboard[0].Score != 10 {
		t.Fatalf("expected Ann scored, got %+v", snap.Leaderboard)
	}
	if snap.SelfAnswer == nil || !snap.SelfAnswer.Correct {
		t.Fatalf("expected own correct answer, got %+v", snap.SelfAnswer)
	}
}

func TestSetEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	listResp, err := http.Get(server.URL + "/sets")
	if err != nil {
		t.Fatalf("get sets: %v", err)
	}
	listing := decodeBody(t, listResp)
	sets, ok := listing["sets"].([]any)
	if !ok || len(sets) != 1 {
		t.Fatalf("expected one set, got %v", listing)
	}

	resp := postJSON(t, server.URL+"/sets/start", map[string]string{"setId": "missing"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown set, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/sets/start", map[string]string{"setId": "general"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	next := decodeBody(t, postJSON(t, server.URL+"/sets/next", nil))
	if next["index"].(float64) != 0 || next["setId"] != "general" {
		t.Fatalf("unexpected advance payload: %v", next)
	}

	// Advancing again while the question is live is a conflict.
	resp = postJSON(t, server.URL+"/sets/next", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	revealed := decodeBody(t, postJSON(t, server.URL+"/sets/reveal", nil))
	if revealed["correctIndex"].(float64) != 0 {
		t.Fatalf("unexpected set reveal payload: %v", revealed)
	}

	// The single-question set is now exhausted.
	resp = postJSON(t, server.URL+"/sets/next", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when set exhausted, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestResetEndpoint(t *testing.T) {
	server, game := newTestServer(t)

	player, err := game.Join("Ann", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := game.AskCustom("q", []string{"a", "b"}); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if _, err := game.Submit(player.ID, "", 0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := game.RevealManual(0); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	cleared := decodeBody(t, postJSON(t, server.URL+"/reset", nil))
	if cleared["cleared"] != true {
		t.Fatalf("unexpected reset payload: %v", cleared)
	}
	snap := game.Snapshot(player.ID)
	if snap.Question.Status != domain.StatusIdle || len(snap.Leaderboard) != 0 || snap.ZeroScorePlayers != 1 {
		t.Fatalf("expected cleared game with Ann kept, got %+v", snap)
	}
}
