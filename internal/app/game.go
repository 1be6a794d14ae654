package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"live-trivia-service/internal/domain"
)

// SetCatalog is the read-only source of pre-validated question sets.
type SetCatalog interface {
	ListSets(ctx context.Context) ([]domain.SetSummary, error)
	GetSet(ctx context.Context, setID string) (domain.QuestionSet, error)
}

// StateStore mirrors the game state to durable storage. Saves are
// best-effort and asynchronous; Load is only consulted at startup.
type StateStore interface {
	Save(ctx context.Context, blob []byte) error
	Load(ctx context.Context) ([]byte, bool, error)
}

// Game is the single authoritative trivia state: roster, current
// question, answer ledger, and active-set cursor. Every mutation funnels
// through its mutex, then fans a fresh per-viewer snapshot out to all
// subscribers.
type Game struct {
	catalog SetCatalog
	store   StateStore // optional
	points  int
	now     func() time.Time
	newID   func() string

	mu          sync.RWMutex
	roster      roster
	question    domain.Question
	answers     map[string]domain.Answer
	activeSet   *domain.ActiveSet
	setAnswer   int // stashed correct index for the paired set reveal, -1 when absent
	subscribers map[*subscriber]struct{}
	rnd         *rand.Rand
}

type subscriber struct {
	playerID string
	ch       chan domain.Snapshot
}

// NewGame builds a game with an optional durable store. points is the
// fixed score awarded per correct answer.
func NewGame(catalog SetCatalog, store StateStore, points int) *Game {
	return NewGameWithClock(catalog, store, points, time.Now)
}

// NewGameWithClock is test-only for deterministic timestamps.
func NewGameWithClock(catalog SetCatalog, store StateStore, points int, now func() time.Time) *Game {
	if points <= 0 {
		points = 10
	}
	g := &Game{
		catalog:     catalog,
		store:       store,
		points:      points,
		now:         now,
		newID:       uuid.NewString,
		answers:     make(map[string]domain.Answer),
		roster:      newRoster(),
		setAnswer:   -1,
		subscribers: make(map[*subscriber]struct{}),
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	g.question = idleQuestion()
	return g
}

func idleQuestion() domain.Question {
	return domain.Question{Status: domain.StatusIdle, CorrectIndex: -1}
}

// Join registers a player under a nickname. Re-joining with an existing
// id and the same nickname is idempotent; a nickname held by a different
// player fails with NicknameTakenError carrying five free alternatives.
func (g *Game) Join(nickname, existingID string) (domain.Player, error) {
	name := cleanNickname(nickname)

	g.mu.Lock()
	defer g.mu.Unlock()

	if existingID != "" {
		if p, ok := g.roster.get(existingID); ok && strings.EqualFold(p.Nickname, name) {
			return *p, nil
		}
	}

	if holder, ok := g.roster.holder(name); ok && holder.ID != existingID {
		return domain.Player{}, &domain.NicknameTakenError{
			Nickname:    name,
			Suggestions: suggestNicknames(g.rnd, name, g.roster.taken, 5),
		}
	}

	id := existingID
	if id == "" {
		id = g.newID()
	}
	p, ok := g.roster.get(id)
	if ok {
		p.Nickname = name // score preserved on nickname change
	} else {
		p = g.roster.add(id, name)
	}

	g.broadcastLocked()
	g.saveLocked()
	return *p, nil
}

// AskCustom replaces the current question with a host-written one and
// puts it live. The answer ledger is cleared; the active set cursor is
// left alone, but the new question carries no set linkage.
func (g *Game) AskCustom(prompt string, options []string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	opts := make([]string, 0, len(options))
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			opts = append(opts, o)
		}
	}
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt must not be empty", domain.ErrInvalidArgument)
	}
	if len(opts) < 2 || len(opts) > 6 {
		return "", fmt.Errorf("%w: need between 2 and 6 options, got %d", domain.ErrInvalidArgument, len(opts))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.question = domain.Question{
		ID:           g.newID(),
		Prompt:       prompt,
		Options:      opts,
		Status:       domain.StatusActive,
		CorrectIndex: -1,
		CreatedAt:    g.now(),
	}
	g.answers = make(map[string]domain.Answer)
	g.setAnswer = -1

	g.broadcastLocked()
	g.saveLocked()
	return g.question.ID, nil
}

// StartSet selects a question set from the catalog and rewinds its
// cursor. The current question is discarded back to idle.
func (g *Game) StartSet(ctx context.Context, setID string) (domain.ActiveSet, error) {
	set, err := g.catalog.GetSet(ctx, strings.TrimSpace(setID))
	if err != nil {
		return domain.ActiveSet{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.activeSet = &domain.ActiveSet{ID: set.ID, Name: set.Name, Index: -1, Total: len(set.Questions)}
	g.clearQuestionLocked()

	g.broadcastLocked()
	g.saveLocked()
	return *g.activeSet, nil
}

// AdvanceResult reports where the set cursor landed after AdvanceSet.
type AdvanceResult struct {
	QuestionID string `json:"questionId"`
	SetID      string `json:"setId"`
	Index      int    `json:"index"`
	Remaining  int    `json:"remaining"`
}

// AdvanceSet puts the next question of the active set live. It refuses
// to advance while any question is still active, and stashes the set's
// correct index for the paired RevealSet call.
func (g *Game) AdvanceSet(ctx context.Context) (AdvanceResult, error) {
	g.mu.RLock()
	var setID string
	if g.activeSet != nil {
		setID = g.activeSet.ID
	}
	questionLive := g.question.Status == domain.StatusActive
	g.mu.RUnlock()

	if setID == "" {
		return AdvanceResult{}, fmt.Errorf("%w: no active set, start one first", domain.ErrConflict)
	}
	if questionLive {
		return AdvanceResult{}, fmt.Errorf("%w: current question still live", domain.ErrConflict)
	}

	// Catalog lookups may hit the network; never hold the state lock here.
	set, err := g.catalog.GetSet(ctx, setID)
	if err != nil {
		if errors.Is(err, domain.ErrSetNotFound) {
			return AdvanceResult{}, fmt.Errorf("%w: set %q", domain.ErrSetGone, setID)
		}
		return AdvanceResult{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.activeSet == nil || g.activeSet.ID != setID {
		return AdvanceResult{}, fmt.Errorf("%w: active set changed", domain.ErrConflict)
	}
	if g.question.Status == domain.StatusActive {
		return AdvanceResult{}, fmt.Errorf("%w: current question still live", domain.ErrConflict)
	}
	next := g.activeSet.Index + 1
	if next >= len(set.Questions) {
		return AdvanceResult{}, domain.ErrSetExhausted
	}

	sq := set.Questions[next]
	g.question = domain.Question{
		ID:           g.newID(),
		Prompt:       sq.Prompt,
		Options:      sq.Options,
		Status:       domain.StatusActive,
		CorrectIndex: -1,
		CreatedAt:    g.now(),
		Source:       &domain.SourceSet{SetID: set.ID, SetName: set.Name, Index: next},
	}
	g.activeSet.Index = next
	g.activeSet.Total = len(set.Questions)
	g.answers = make(map[string]domain.Answer)
	g.setAnswer = sq.CorrectIndex

	g.broadcastLocked()
	g.saveLocked()
	return AdvanceResult{
		QuestionID: g.question.ID,
		SetID:      set.ID,
		Index:      next,
		Remaining:  len(set.Questions) - next - 1,
	}, nil
}

// SubmitResult reports whether a submission was a first answer or an
// acknowledged duplicate.
type SubmitResult struct {
	Duplicate bool `json:"duplicate,omitempty"`
}

// Submit records a player's answer to the live question. The first
// submission wins; repeats are acknowledged without changing anything.
// Unknown player ids are silently enrolled with the fallback nickname.
func (g *Game) Submit(playerID, fallbackNickname string, answerIndex int) (SubmitResult, error) {
	if playerID == "" {
		return SubmitResult{}, fmt.Errorf("%w: player id is required", domain.ErrInvalidArgument)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.roster.ensure(playerID, cleanNickname(fallbackNickname))

	if g.question.Status != domain.StatusActive {
		return SubmitResult{}, fmt.Errorf("%w: no active question", domain.ErrConflict)
	}
	if answerIndex < 0 || answerIndex >= len(g.question.Options) {
		return SubmitResult{}, fmt.Errorf("%w: answer index %d out of range", domain.ErrInvalidArgument, answerIndex)
	}
	if _, ok := g.answers[playerID]; ok {
		return SubmitResult{Duplicate: true}, nil
	}

	g.answers[playerID] = domain.Answer{AnswerIndex: answerIndex, AnsweredAt: g.now()}

	g.broadcastLocked()
	g.saveLocked()
	return SubmitResult{}, nil
}

// RevealManual scores the live question against a host-provided correct
// index and exposes it to all viewers.
func (g *Game) RevealManual(correctIndex int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.question.Status != domain.StatusActive {
		return 0, fmt.Errorf("%w: no active question to reveal", domain.ErrConflict)
	}
	if correctIndex < 0 || correctIndex >= len(g.question.Options) {
		return 0, fmt.Errorf("%w: correct index %d out of range", domain.ErrInvalidArgument, correctIndex)
	}

	g.revealLocked(correctIndex)
	return correctIndex, nil
}

// RevealSet scores the live question against the correct index stashed
// by AdvanceSet. The question must still belong to the active set, so a
// custom question swapped in between cannot be revealed with stale set
// data.
func (g *Game) RevealSet() (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.question.Status != domain.StatusActive {
		return 0, fmt.Errorf("%w: no active question to reveal", domain.ErrConflict)
	}
	if g.activeSet == nil || g.question.Source == nil || g.question.Source.SetID != g.activeSet.ID {
		return 0, fmt.Errorf("%w: current question is not from the active set", domain.ErrConflict)
	}
	if g.setAnswer < 0 || g.setAnswer >= len(g.question.Options) {
		return 0, fmt.Errorf("%w: no stored correct answer for this question", domain.ErrInvalidArgument)
	}

	correctIndex := g.setAnswer
	g.revealLocked(correctIndex)
	return correctIndex, nil
}

// revealLocked is the single scoring path shared by both reveal flavors.
// It runs at most once per question because it flips the status off
// active, which both entry points require.
func (g *Game) revealLocked(correctIndex int) {
	g.question.Status = domain.StatusRevealed
	g.question.CorrectIndex = correctIndex
	for id, ans := range g.answers {
		ans.Correct = ans.AnswerIndex == correctIndex
		g.answers[id] = ans
		if ans.Correct {
			g.roster.credit(id, g.points)
		}
	}
	g.setAnswer = -1

	g.broadcastLocked()
	g.saveLocked()
}

// Reset returns the game to a blank slate: idle question, no active set,
// all scores zeroed. Player identities and nicknames survive.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.clearQuestionLocked()
	g.activeSet = nil
	g.roster.resetScores()

	g.broadcastLocked()
	g.saveLocked()
}

func (g *Game) clearQuestionLocked() {
	g.question = idleQuestion()
	g.answers = make(map[string]domain.Answer)
	g.setAnswer = -1
}

// Leave tears down every live connection bound to the player. The roster
// entry and its score stay behind.
func (g *Game) Leave(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	removed := false
	for sub := range g.subscribers {
		if sub.playerID != "" && sub.playerID == playerID {
			delete(g.subscribers, sub)
			close(sub.ch)
			removed = true
		}
	}
	if removed {
		g.broadcastLocked()
	}
	return removed
}

// Sets lists the catalog for hosts picking a set.
func (g *Game) Sets(ctx context.Context) ([]domain.SetSummary, error) {
	return g.catalog.ListSets(ctx)
}

// Snapshot builds the current state as seen by viewerID. Read-only and
// safe to call repeatedly.
func (g *Game) Snapshot(viewerID string) domain.Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotLocked(viewerID)
}

// Subscribe registers a connection for snapshot pushes. The first
// snapshot is delivered immediately; the caller must invoke the returned
// cancel function to avoid leaks. Cancel is idempotent.
func (g *Game) Subscribe(playerID string) (<-chan domain.Snapshot, func()) {
	sub := &subscriber{playerID: playerID, ch: make(chan domain.Snapshot, 8)}

	g.mu.Lock()
	g.subscribers[sub] = struct{}{}
	// Delivers the initial snapshot to the new connection and refreshes
	// everyone else's online count in one pass.
	g.broadcastLocked()
	g.mu.Unlock()

	cancel := func() {
		g.mu.Lock()
		if _, ok := g.subscribers[sub]; ok {
			delete(g.subscribers, sub)
			close(sub.ch)
			if sub.playerID != "" && !g.onlineLocked(sub.playerID) {
				g.broadcastLocked()
			}
		}
		g.mu.Unlock()
	}
	return sub.ch, cancel
}

// onlineLocked reports whether the player still has a live connection.
func (g *Game) onlineLocked(playerID string) bool {
	for sub := range g.subscribers {
		if sub.playerID == playerID {
			return true
		}
	}
	return false
}

// broadcastLocked pushes a personalized snapshot to every subscriber.
// Full buffers drop the stale snapshot rather than block, so one slow
// connection never delays the others or the next mutation.
func (g *Game) broadcastLocked() {
	for sub := range g.subscribers {
		snap := g.snapshotLocked(sub.playerID)
		select {
		case sub.ch <- snap:
		default:
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- snap
		}
	}
}
