package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"live-trivia-service/internal/app"
	"live-trivia-service/internal/domain"
)

// API exposes the game operations over plain JSON endpoints. The
// websocket stream in ws_handler.go carries the state back out.
type API struct {
	game *app.Game
}

func NewAPI(game *app.Game) *API {
	return &API{game: game}
}

// Register mounts every route on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/state", a.handleState)
	mux.HandleFunc("/join", a.handleJoin)
	mux.HandleFunc("/question", a.handleAskCustom)
	mux.HandleFunc("/answer", a.handleAnswer)
	mux.HandleFunc("/reveal", a.handleReveal)
	mux.HandleFunc("/reset", a.handleReset)
	mux.HandleFunc("/leave", a.handleLeave)
	mux.HandleFunc("/sets", a.handleSets)
	mux.HandleFunc("/sets/start", a.handleStartSet)
	mux.HandleFunc("/sets/next", a.handleAdvanceSet)
	mux.HandleFunc("/sets/reveal", a.handleRevealSet)
}

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, a.game.Snapshot(r.URL.Query().Get("playerId")))
}

func (a *API) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
		PlayerID string `json:"playerId"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	player, err := a.game.Join(req.Nickname, req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"playerId": player.ID,
		"nickname": player.Nickname,
		"state":    a.game.Snapshot(player.ID),
	})
}

func (a *API) handleAskCustom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt  string   `json:"prompt"`
		Options []string `json:"options"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	questionID, err := a.game.AskCustom(req.Prompt, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"questionId": questionID})
}

func (a *API) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID    string `json:"playerId"`
		Nickname    string `json:"nickname"`
		AnswerIndex int    `json:"answerIndex"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	result, err := a.game.Submit(req.PlayerID, req.Nickname, req.AnswerIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := map[string]any{"received": true}
	if result.Duplicate {
		resp["duplicate"] = true
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CorrectIndex int `json:"correctIndex"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	correctIndex, err := a.game.RevealManual(req.CorrectIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revealed": true, "correctIndex": correctIndex})
}

func (a *API) handleRevealSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	correctIndex, err := a.game.RevealSet()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revealed": true, "correctIndex": correctIndex})
}

func (a *API) handleStartSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SetID string `json:"setId"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	activeSet, err := a.game.StartSet(r.Context(), req.SetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activeSet": activeSet})
}

func (a *API) handleAdvanceSet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := a.game.AdvanceSet(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (a *API) handleSets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sets, err := a.game.Sets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if sets == nil {
		sets = []domain.SetSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sets": sets})
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.game.Reset()
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (a *API) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
	}
	if !decodePost(w, r, &req) {
		return
	}
	removed := a.game.Leave(req.PlayerID)
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func decodePost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var taken *domain.NicknameTakenError
	if errors.As(err, &taken) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"message":     "Nickname already taken. Pick another.",
			"suggestions": taken.Suggestions,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSetNotFound), errors.Is(err, domain.ErrSetExhausted):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSetGone):
		status = http.StatusGone
	}
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	writeJSON(w, status, map[string]string{"message": err.Error()})
}
