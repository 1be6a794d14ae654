package domain

import "time"

// QuestionStatus is the lifecycle state of the current question.
type QuestionStatus string

const (
	StatusIdle     QuestionStatus = "idle"
	StatusActive   QuestionStatus = "active"
	StatusRevealed QuestionStatus = "revealed"
)

// Player is a joined participant and their accumulated score.
// Players are never deleted; leaving only drops their live connections.
type Player struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

// SourceSet links a question back to the set it was loaded from.
type SourceSet struct {
	SetID   string `json:"setId"`
	SetName string `json:"setName"`
	Index   int    `json:"index"`
}

// Question is the single current question. CorrectIndex is only
// meaningful once Status is revealed; the projector hides it before that.
type Question struct {
	ID           string
	Prompt       string
	Options      []string
	Status       QuestionStatus
	CorrectIndex int
	CreatedAt    time.Time
	Source       *SourceSet
}

// Answer records one player's submission for the current question.
// Correct is resolved at reveal time.
type Answer struct {
	AnswerIndex int       `json:"answerIndex"`
	AnsweredAt  time.Time `json:"answeredAt"`
	Correct     bool      `json:"correct"`
}

// RevealedAnswer is the post-reveal view of a submission with the
// nickname resolved.
type RevealedAnswer struct {
	PlayerID    string    `json:"playerId"`
	Nickname    string    `json:"nickname"`
	AnswerIndex int       `json:"answerIndex"`
	Correct     bool      `json:"correct"`
	AnsweredAt  time.Time `json:"answeredAt"`
}

// ActiveSet is the cursor into the question set currently being hosted.
// Index -1 means the set was selected but not yet advanced.
type ActiveSet struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Index int    `json:"index"`
	Total int    `json:"total"`
}

// SetQuestion is one entry of a pre-validated question set.
type SetQuestion struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// QuestionSet is a read-only collection of questions the host can step through.
type QuestionSet struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Questions []SetQuestion `json:"questions"`
}

// SetSummary is the catalog listing form of a QuestionSet.
type SetSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"total"`
}

// QuestionView is the client-facing question. CorrectIndex stays nil
// until the question is revealed.
type QuestionView struct {
	ID           string         `json:"id,omitempty"`
	Prompt       string         `json:"prompt"`
	Options      []string       `json:"options"`
	Status       QuestionStatus `json:"status"`
	CorrectIndex *int           `json:"correctIndex"`
	CreatedAt    *time.Time     `json:"createdAt"`
	Set          *SourceSet     `json:"set"`
}

// Snapshot is the per-viewer projection of the full game state pushed to
// every subscriber after each mutation.
type Snapshot struct {
	Question         QuestionView     `json:"question"`
	Leaderboard      []Player         `json:"leaderboard"`
	ZeroScorePlayers int              `json:"zeroScorePlayers"`
	AnswerCounts     []int            `json:"answerCounts"`
	Answers          []RevealedAnswer `json:"answers"`
	SelfAnswer       *Answer          `json:"selfAnswer"`
	PlayersOnline    int              `json:"playersOnline"`
	ActiveSet        *ActiveSet       `json:"activeSet"`
}
