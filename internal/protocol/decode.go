package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// PlayerRoll is one player's entry in a decoded round result.
type PlayerRoll struct {
	Name string
	Roll int
	Wins int
}

// RoundOutcome is the client-side view of a ROUND_RESULT message.
type RoundOutcome struct {
	Round   int
	Players []PlayerRoll
	Winner  string
	Tie     bool
}

// PlayerScore is one entry of a decoded PLAYERS message.
type PlayerScore struct {
	Name string
	Wins int
}

// ParseRoundResult decodes a ROUND_RESULT line back into its parts.
func ParseRoundResult(msg string) (RoundOutcome, error) {
	payload, ok := strings.CutPrefix(msg, MsgRoundResult+":")
	if !ok {
		return RoundOutcome{}, fmt.Errorf("%w: want %s prefix", ErrMalformedMessage, MsgRoundResult)
	}

	sections := strings.Split(payload, ";")
	if len(sections) != 3 {
		return RoundOutcome{}, fmt.Errorf("%w: want 3 sections, got %d", ErrMalformedMessage, len(sections))
	}

	round, err := strconv.Atoi(sections[0])
	if err != nil {
		return RoundOutcome{}, fmt.Errorf("%w: round number: %v", ErrMalformedMessage, err)
	}

	out := RoundOutcome{Round: round}
	for _, entry := range strings.Split(sections[1], ",") {
		fields := strings.Split(entry, ":")
		if len(fields) != 3 {
			return RoundOutcome{}, fmt.Errorf("%w: player entry %q", ErrMalformedMessage, entry)
		}
		roll, err := strconv.Atoi(fields[1])
		if err != nil {
			return RoundOutcome{}, fmt.Errorf("%w: roll: %v", ErrMalformedMessage, err)
		}
		wins, err := strconv.Atoi(fields[2])
		if err != nil {
			return RoundOutcome{}, fmt.Errorf("%w: wins: %v", ErrMalformedMessage, err)
		}
		out.Players = append(out.Players, PlayerRoll{Name: fields[0], Roll: roll, Wins: wins})
	}

	switch {
	case sections[2] == "TIE":
		out.Tie = true
	case strings.HasPrefix(sections[2], "WINNER:"):
		out.Winner = strings.TrimPrefix(sections[2], "WINNER:")
	default:
		return RoundOutcome{}, fmt.Errorf("%w: outcome %q", ErrMalformedMessage, sections[2])
	}
	return out, nil
}

// ParsePlayers decodes a PLAYERS line into roster order scores.
func ParsePlayers(msg string) ([]PlayerScore, error) {
	payload, ok := strings.CutPrefix(msg, MsgPlayers+":")
	if !ok {
		return nil, fmt.Errorf("%w: want %s prefix", ErrMalformedMessage, MsgPlayers)
	}

	var out []PlayerScore
	for _, entry := range strings.Split(payload, ",") {
		name, winsText, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("%w: player entry %q", ErrMalformedMessage, entry)
		}
		wins, err := strconv.Atoi(winsText)
		if err != nil {
			return nil, fmt.Errorf("%w: wins: %v", ErrMalformedMessage, err)
		}
		out = append(out, PlayerScore{Name: name, Wins: wins})
	}
	return out, nil
}
