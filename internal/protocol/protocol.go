// Package protocol implements the line-oriented wire codec. Every
// command and every server message is one UTF-8 text line; fields are
// separated by ':' with ';' between the sections of a round result.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/DoyleJ11/dice-game-backend/internal/engine"
)

// Client → server commands.
const (
	CmdSetName   = "SET_NAME"
	CmdStartGame = "START_GAME"
	CmdRollDice  = "ROLL_DICE"
	CmdGetStatus = "GET_STATUS"
)

// Server → client message prefixes.
const (
	MsgNameSet     = "NAME_SET"
	MsgPlayerCount = "PLAYER_COUNT"
	MsgGameStarted = "GAME_STARTED"
	MsgPlayers     = "PLAYERS"
	MsgRoundResult = "ROUND_RESULT"
	MsgError       = "ERROR"
	MsgGameStatus  = "GAME_STATUS"
)

var ErrEmptyCommand = errors.New("empty command")
var ErrUnknownCommand = errors.New("unknown command")
var ErrMissingName = errors.New("SET_NAME requires a name")
var ErrMalformedMessage = errors.New("malformed message")

// Command is one decoded client command. Name is only set for SET_NAME.
type Command struct {
	Type string
	Name string
}

// ParseCommand decodes one inbound line.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Command{}, ErrEmptyCommand
	}

	head, rest, hasPayload := strings.Cut(line, ":")
	switch head {
	case CmdSetName:
		if !hasPayload || rest == "" {
			return Command{}, ErrMissingName
		}
		return Command{Type: CmdSetName, Name: rest}, nil
	case CmdStartGame, CmdRollDice, CmdGetStatus:
		return Command{Type: head}, nil
	default:
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, head)
	}
}

// NameSet confirms the name assigned to one connection.
func NameSet(name string) string {
	return MsgNameSet + ":" + name
}

// PlayerCount reports the number of currently connected clients.
func PlayerCount(n int) string {
	return MsgPlayerCount + ":" + strconv.Itoa(n)
}

// GameStarted announces the WAITING → STARTED transition.
func GameStarted() string {
	return MsgGameStarted
}

// Error wraps a failure description for the wire.
func Error(msg string) string {
	return MsgError + ":" + msg
}

// GameStatus reports the match phase to the requesting connection.
func GameStatus(started bool) string {
	if started {
		return MsgGameStatus + ":STARTED"
	}
	return MsgGameStatus + ":WAITING"
}

// Players encodes the full roster snapshot, in roster order.
func Players(players []*engine.Player) string {
	var b strings.Builder
	b.WriteString(MsgPlayers + ":")
	for i, p := range players {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%d", p.Name, p.Wins)
	}
	return b.String()
}

// RoundResult encodes one round outcome:
//
//	ROUND_RESULT:<round>;<name>:<roll>:<wins>,...;WINNER:<name>
//	ROUND_RESULT:<round>;<name>:<roll>:<wins>,...;TIE
func RoundResult(res engine.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d;", MsgRoundResult, res.Round)
	for i, p := range res.Players {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%s:%d:%d", p.Name, res.Rolls[i], p.Wins)
	}
	if res.Winner != nil {
		fmt.Fprintf(&b, ";WINNER:%s", res.Winner.Name)
	} else {
		b.WriteString(";TIE")
	}
	return b.String()
}
