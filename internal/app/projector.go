package app

import (
	"sort"

	"live-trivia-service/internal/domain"
)

// snapshotLocked derives the client-facing view of the game for one
// viewer. It is a pure read of the locked state: the correct index stays
// hidden until reveal, the leaderboard carries only scoring players, and
// ties keep arrival order.
func (g *Game) snapshotLocked(viewerID string) domain.Snapshot {
	online := make(map[string]struct{}, len(g.subscribers))
	for sub := range g.subscribers {
		if sub.playerID != "" {
			online[sub.playerID] = struct{}{}
		}
	}

	snap := domain.Snapshot{
		Question:      g.questionViewLocked(),
		AnswerCounts:  []int{},
		Answers:       []domain.RevealedAnswer{},
		PlayersOnline: len(online),
	}

	leaders := make([]domain.Player, 0, len(g.roster.players))
	for _, p := range g.roster.ordered() {
		if p.Score > 0 {
			leaders = append(leaders, *p)
		} else {
			snap.ZeroScorePlayers++
		}
	}
	sort.SliceStable(leaders, func(i, j int) bool {
		return leaders[i].Score > leaders[j].Score
	})
	snap.Leaderboard = leaders

	if g.question.Status != domain.StatusIdle {
		snap.AnswerCounts = make([]int, len(g.question.Options))
		for _, ans := range g.answers {
			if ans.AnswerIndex >= 0 && ans.AnswerIndex < len(snap.AnswerCounts) {
				snap.AnswerCounts[ans.AnswerIndex]++
			}
		}
	}

	if g.question.Status == domain.StatusRevealed {
		for _, p := range g.roster.ordered() {
			ans, ok := g.answers[p.ID]
			if !ok {
				continue
			}
			snap.Answers = append(snap.Answers, domain.RevealedAnswer{
				PlayerID:    p.ID,
				Nickname:    p.Nickname,
				AnswerIndex: ans.AnswerIndex,
				Correct:     ans.Correct,
				AnsweredAt:  ans.AnsweredAt,
			})
		}
	}

	if ans, ok := g.answers[viewerID]; ok && viewerID != "" {
		snap.SelfAnswer = &ans
	}

	if g.activeSet != nil {
		as := *g.activeSet
		snap.ActiveSet = &as
	}

	return snap
}

func (g *Game) questionViewLocked() domain.QuestionView {
	view := domain.QuestionView{
		ID:      g.question.ID,
		Prompt:  g.question.Prompt,
		Options: g.question.Options,
		Status:  g.question.Status,
		Set:     g.question.Source,
	}
	if view.Options == nil {
		view.Options = []string{}
	}
	if g.question.Status == domain.StatusRevealed {
		ci := g.question.CorrectIndex
		view.CorrectIndex = &ci
	}
	if !g.question.CreatedAt.IsZero() {
		at := g.question.CreatedAt
		view.CreatedAt = &at
	}
	return view
}
