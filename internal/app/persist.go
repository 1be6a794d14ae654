package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"live-trivia-service/internal/domain"
)

const saveTimeout = 5 * time.Second

// persistedState is the durable mirror of a Game: everything needed to
// resume a round after a restart, including the hidden correct index.
type persistedState struct {
	Players   []domain.Player          `json:"players"`
	Order     []string                 `json:"order"`
	Question  persistedQuestion        `json:"question"`
	Answers   map[string]domain.Answer `json:"answers"`
	ActiveSet *domain.ActiveSet        `json:"activeSet"`
	SetAnswer int                      `json:"setAnswerIndex"`
}

type persistedQuestion struct {
	ID           string                `json:"id"`
	Prompt       string                `json:"prompt"`
	Options      []string              `json:"options"`
	Status       domain.QuestionStatus `json:"status"`
	CorrectIndex int                   `json:"correctIndex"`
	CreatedAt    time.Time             `json:"createdAt"`
	Source       *domain.SourceSet     `json:"source"`
}

// saveLocked mirrors the state to the durable store after a mutation.
// The write happens on its own goroutine; a failure is logged and never
// rolls back the in-memory change or the broadcast.
func (g *Game) saveLocked() {
	if g.store == nil {
		return
	}
	blob, err := json.Marshal(g.persistedLocked())
	if err != nil {
		log.Printf("state snapshot marshal failed: %v", err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := g.store.Save(ctx, blob); err != nil {
			log.Printf("best-effort state save failed: %v", err)
		}
	}()
}

func (g *Game) persistedLocked() persistedState {
	state := persistedState{
		Players: make([]domain.Player, 0, len(g.roster.players)),
		Order:   append([]string(nil), g.roster.order...),
		Question: persistedQuestion{
			ID:           g.question.ID,
			Prompt:       g.question.Prompt,
			Options:      g.question.Options,
			Status:       g.question.Status,
			CorrectIndex: g.question.CorrectIndex,
			CreatedAt:    g.question.CreatedAt,
			Source:       g.question.Source,
		},
		Answers:   make(map[string]domain.Answer, len(g.answers)),
		ActiveSet: g.activeSet,
		SetAnswer: g.setAnswer,
	}
	for _, p := range g.roster.ordered() {
		state.Players = append(state.Players, *p)
	}
	for id, ans := range g.answers {
		state.Answers[id] = ans
	}
	return state
}

// Restore rehydrates the game from the durable store. Call once at
// startup before serving; an absent blob is not an error.
func (g *Game) Restore(ctx context.Context) error {
	if g.store == nil {
		return nil
	}
	blob, ok, err := g.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load persisted state: %w", err)
	}
	if !ok {
		return nil
	}
	var state persistedState
	if err := json.Unmarshal(blob, &state); err != nil {
		return fmt.Errorf("decode persisted state: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.roster = newRoster()
	byID := make(map[string]domain.Player, len(state.Players))
	for _, p := range state.Players {
		byID[p.ID] = p
	}
	for _, id := range state.Order {
		if p, ok := byID[id]; ok {
			restored := g.roster.add(p.ID, p.Nickname)
			restored.Score = p.Score
			delete(byID, id)
		}
	}
	for _, p := range state.Players {
		if _, ok := byID[p.ID]; ok {
			restored := g.roster.add(p.ID, p.Nickname)
			restored.Score = p.Score
		}
	}

	g.question = domain.Question{
		ID:           state.Question.ID,
		Prompt:       state.Question.Prompt,
		Options:      state.Question.Options,
		Status:       state.Question.Status,
		CorrectIndex: state.Question.CorrectIndex,
		CreatedAt:    state.Question.CreatedAt,
		Source:       state.Question.Source,
	}
	if g.question.Status == "" {
		g.question = idleQuestion()
	}
	g.answers = state.Answers
	if g.answers == nil {
		g.answers = make(map[string]domain.Answer)
	}
	g.activeSet = state.ActiveSet
	g.setAnswer = state.SetAnswer

	g.broadcastLocked()
	return nil
}
