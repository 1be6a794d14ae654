package app

import (
	"strings"

	"live-trivia-service/internal/domain"
)

// roster owns the player records. It is not safe for concurrent use on
// its own; the Game mutex guards every call.
type roster struct {
	players map[string]*domain.Player
	order   []string // player IDs in arrival order, used for tie-breaking
}

func newRoster() roster {
	return roster{players: make(map[string]*domain.Player)}
}

func (r *roster) get(id string) (*domain.Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// add inserts a brand-new player record and tracks its arrival position.
func (r *roster) add(id, nickname string) *domain.Player {
	p := &domain.Player{ID: id, Nickname: nickname}
	r.players[id] = p
	r.order = append(r.order, id)
	return p
}

// ensure returns the player for id, creating a zero-score record with the
// fallback nickname when the id is unknown (e.g. answering after a reload
// without an explicit join).
func (r *roster) ensure(id, fallbackNickname string) *domain.Player {
	if p, ok := r.players[id]; ok {
		return p
	}
	return r.add(id, fallbackNickname)
}

// holder returns the player currently owning nickname, case-insensitively.
func (r *roster) holder(nickname string) (*domain.Player, bool) {
	for _, p := range r.players {
		if strings.EqualFold(p.Nickname, nickname) {
			return p, true
		}
	}
	return nil, false
}

func (r *roster) taken(nickname string) bool {
	_, ok := r.holder(nickname)
	return ok
}

// credit adds points to a player's score; unknown ids are ignored.
func (r *roster) credit(id string, points int) {
	if p, ok := r.players[id]; ok {
		p.Score += points
	}
}

// resetScores zeroes every score while keeping identities and nicknames.
func (r *roster) resetScores() {
	for _, p := range r.players {
		p.Score = 0
	}
}

// ordered returns all players in arrival order.
func (r *roster) ordered() []*domain.Player {
	out := make([]*domain.Player, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}
