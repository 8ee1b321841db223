// Package engine owns the authoritative match state: the roster, the
// round counter, per-player win tallies and the human-readable game log.
// It is a plain synchronous package; serializing concurrent access is
// the lobby's job.
package engine

import (
	"fmt"
	"strings"

	"github.com/DoyleJ11/dice-game-backend/internal/dice"
)

// Player is one contestant. Wins only ever goes up, except through Reset.
type Player struct {
	Name string
	Wins int
}

// Result is the immutable outcome of a single round. Players holds
// value copies taken as the round resolved, so later rounds never
// rewrite a stored record. Winner is nil when the round was a tie;
// Rolls is positionally aligned with Players.
type Result struct {
	Round       int
	Players     []Player
	Rolls       []int
	Winner      *Player
	WinningRoll int
}

// TiedPlayers returns the players sharing the highest roll, in roster
// order. Empty when the round had a sole winner.
func (r Result) TiedPlayers() []Player {
	if r.Winner != nil {
		return nil
	}
	var tied []Player
	for i, p := range r.Players {
		if r.Rolls[i] == r.WinningRoll {
			tied = append(tied, p)
		}
	}
	return tied
}

type Engine struct {
	players []*Player
	roller  dice.Roller
	gameLog []string
	rounds  []Result
	round   int
}

// New builds an engine for the given roster, in registration order.
// An empty roster is a programming error, not a runtime condition.
func New(names []string, roller dice.Roller) *Engine {
	if len(names) == 0 {
		panic("engine: roster must not be empty")
	}
	players := make([]*Player, len(names))
	for i, name := range names {
		players[i] = &Player{Name: name}
	}
	return &Engine{players: players, roller: roller}
}

// Players returns the roster in registration order. The order is
// significant: it is mirrored in every broadcast and log line.
func (e *Engine) Players() []*Player {
	out := make([]*Player, len(e.players))
	copy(out, e.players)
	return out
}

// Round returns the number of rounds played so far.
func (e *Engine) Round() int { return e.round }

// GameLog returns the accumulated per-round log lines.
func (e *Engine) GameLog() []string {
	out := make([]string, len(e.gameLog))
	copy(out, e.gameLog)
	return out
}

// Rounds returns every round record so far, oldest first. Always the
// same length as GameLog.
func (e *Engine) Rounds() []Result {
	out := make([]Result, len(e.rounds))
	copy(out, e.rounds)
	return out
}

// PlayRound rolls once for every player in roster order and resolves the
// winner. Resolution is incremental, left to right, because the log text
// depends on the order ties are discovered in: a new strictly-highest
// roll makes that player the sole candidate, while an equal roll cancels
// the candidate and grows the tied set.
func (e *Engine) PlayRound() Result {
	e.round++

	highest := 0
	var winner *Player
	var tied []*Player
	rolls := make([]int, len(e.players))
	parts := make([]string, len(e.players))

	for i, p := range e.players {
		roll := e.roller.Roll()
		rolls[i] = roll
		parts[i] = fmt.Sprintf("%s rolled %d", p.Name, roll)

		switch {
		case roll > highest:
			highest = roll
			winner = p
			tied = tied[:0]
			tied = append(tied, p)
		case roll == highest:
			if !containsPlayer(tied, p) {
				if winner != nil && !containsPlayer(tied, winner) {
					tied = append(tied, winner)
				}
				tied = append(tied, p)
			}
			winner = nil
		}
	}

	line := fmt.Sprintf("Round %d: %s", e.round, strings.Join(parts, ", "))
	if winner != nil {
		winner.Wins++
		line += fmt.Sprintf(" Winner: %s", winner.Name)
	} else {
		names := make([]string, len(tied))
		for i, p := range tied {
			names[i] = p.Name
		}
		line += fmt.Sprintf(" Tie between: %s", strings.Join(names, ", "))
	}
	e.gameLog = append(e.gameLog, line)

	snapshot := make([]Player, len(e.players))
	res := Result{
		Round:       e.round,
		Players:     snapshot,
		Rolls:       rolls,
		WinningRoll: highest,
	}
	for i, p := range e.players {
		snapshot[i] = *p
		if p == winner {
			res.Winner = &snapshot[i]
		}
	}
	e.rounds = append(e.rounds, res)
	return res
}

// Reset zeroes every win counter and clears the round log, for a fresh
// match on the same roster.
func (e *Engine) Reset() {
	for _, p := range e.players {
		p.Wins = 0
	}
	e.gameLog = nil
	e.rounds = nil
	e.round = 0
}

func containsPlayer(players []*Player, p *Player) bool {
	for _, q := range players {
		if q == p {
			return true
		}
	}
	return false
}
