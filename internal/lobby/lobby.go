// Package lobby coordinates one match. A single goroutine owns every
// piece of shared state (connected clients, phase, engine); transports
// talk to it only through typed messages on the inbox, so each command
// is processed, and its consequence broadcast, as one indivisible step.
package lobby

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/dice-game-backend/internal/dice"
	"github.com/DoyleJ11/dice-game-backend/internal/engine"
	"github.com/DoyleJ11/dice-game-backend/internal/protocol"
)

// DefaultName is used for clients that never sent SET_NAME.
const DefaultName = "Unknown"

type Msg interface{ isLobbyMsg() }

// Join registers a connection. Outbox is where the lobby delivers
// outbound lines for that connection; a stalled outbox gets the client
// dropped rather than blocking the broadcaster.
type Join struct {
	ClientID string
	Outbox   chan string
}

func (Join) isLobbyMsg() {}

// Leave deregisters a connection. Safe to send for an already-removed
// client (the lobby may have dropped it first).
type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

// SetName assigns the connection's display name verbatim. Names are not
// required to be unique.
type SetName struct {
	ClientID string
	Name     string
}

func (SetName) isLobbyMsg() {}

// StartGame requests the WAITING → STARTED transition.
type StartGame struct{ ClientID string }

func (StartGame) isLobbyMsg() {}

// RollDice requests the next round.
type RollDice struct{ ClientID string }

func (RollDice) isLobbyMsg() {}

// GetStatus requests a targeted phase report.
type GetStatus struct{ ClientID string }

func (GetStatus) isLobbyMsg() {}

// BadCommand reports a malformed or unknown command line. The offending
// connection gets a targeted ERROR and stays connected.
type BadCommand struct {
	ClientID string
	Reason   string
}

func (BadCommand) isLobbyMsg() {}

// SaveResults appends a results block to Path if a match ever started.
type SaveResults struct {
	Path  string
	Reply chan error
}

func (SaveResults) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

// GetState reflects internal state without data races; test-only.
type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// Standing is one player's tally in a View.
type Standing struct {
	Name string
	Wins int
}

type View struct {
	NumClients int
	Started    bool
	Round      int
	Players    []Standing
}

type client struct {
	id     string
	name   string
	outbox chan string
}

type Lobby struct {
	inbox   chan Msg
	clients []*client // join order; mirrored in the roster
	byID    map[string]*client
	eng     *engine.Engine
	roller  dice.Roller
	started bool
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, roller dice.Roller, log *zap.Logger) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		inbox:  make(chan Msg, 64),
		byID:   make(map[string]*client),
		roller: roller,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}

	go l.loop()
	return l
}

// Inbox is how transports (and tests) send messages to the lobby.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Dispatch decodes one inbound command line and routes it. Transports
// call this from their read loops; malformed lines become a targeted
// ERROR for the sending connection.
func (l *Lobby) Dispatch(clientID, line string) {
	cmd, err := protocol.ParseCommand(line)
	if err != nil {
		l.inbox <- BadCommand{ClientID: clientID, Reason: err.Error()}
		return
	}

	switch cmd.Type {
	case protocol.CmdSetName:
		l.inbox <- SetName{ClientID: clientID, Name: cmd.Name}
	case protocol.CmdStartGame:
		l.inbox <- StartGame{ClientID: clientID}
	case protocol.CmdRollDice:
		l.inbox <- RollDice{ClientID: clientID}
	case protocol.CmdGetStatus:
		l.inbox <- GetStatus{ClientID: clientID}
	}
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				c := &client{id: msg.ClientID, name: DefaultName, outbox: msg.Outbox}
				l.clients = append(l.clients, c)
				l.byID[c.id] = c
				l.log.Info("client connected", zap.String("client_id", c.id), zap.Int("clients", len(l.clients)))
				l.broadcast(protocol.PlayerCount(len(l.clients)))

			case Leave:
				if l.remove(msg.ClientID) {
					l.log.Info("client disconnected", zap.String("client_id", msg.ClientID), zap.Int("clients", len(l.clients)))
					l.broadcast(protocol.PlayerCount(len(l.clients)))
				}

			case SetName:
				if c, ok := l.byID[msg.ClientID]; ok {
					c.name = msg.Name
					l.send(c, protocol.NameSet(c.name))
					l.prune()
				}

			case StartGame:
				l.startGame()

			case RollDice:
				l.playRound()

			case GetStatus:
				if c, ok := l.byID[msg.ClientID]; ok {
					l.send(c, protocol.GameStatus(l.started))
					l.prune()
				}

			case BadCommand:
				if c, ok := l.byID[msg.ClientID]; ok {
					l.send(c, protocol.Error(msg.Reason))
					l.prune()
				}

			case SaveResults:
				var err error
				if l.eng != nil {
					err = l.eng.SaveResults(msg.Path)
				}
				msg.Reply <- err

			case GetState:
				msg.Reply <- l.view()

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

// startGame freezes the current connection set into a roster, in join
// order, and moves to STARTED. Calling it again while already started
// rebuilds the engine and discards tallies; clients have always been
// able to trigger that, so it stays, but loudly.
func (l *Lobby) startGame() {
	if len(l.clients) < 2 {
		l.broadcast(protocol.Error("Need at least 2 players to start"))
		return
	}
	if l.started {
		l.log.Warn("START_GAME while already started; rebuilding match state")
	}

	names := make([]string, len(l.clients))
	for i, c := range l.clients {
		names[i] = c.name
	}
	l.eng = engine.New(names, l.roller)
	l.started = true

	l.log.Info("game started", zap.Strings("players", names))
	l.broadcast(protocol.GameStarted())
	l.broadcast(protocol.Players(l.eng.Players()))
}

func (l *Lobby) playRound() {
	if !l.started || l.eng == nil {
		l.broadcast(protocol.Error("Game not started"))
		return
	}

	res := l.eng.PlayRound()
	fields := []zap.Field{zap.Int("round", res.Round), zap.Int("roll", res.WinningRoll)}
	if res.Winner != nil {
		fields = append(fields, zap.String("winner", res.Winner.Name))
	} else {
		fields = append(fields, zap.Bool("tie", true))
	}
	l.log.Info("round played", fields...)
	l.broadcast(protocol.RoundResult(res))
}

func (l *Lobby) view() View {
	v := View{
		NumClients: len(l.clients),
		Started:    l.started,
	}
	if l.eng != nil {
		v.Round = l.eng.Round()
		for _, p := range l.eng.Players() {
			v.Players = append(v.Players, Standing{Name: p.Name, Wins: p.Wins})
		}
	}
	return v
}

func (l *Lobby) shutdown() {
	for _, c := range l.clients {
		if c.outbox != nil {
			close(c.outbox)
		}
		delete(l.byID, c.id)
	}
	l.clients = nil
	l.cancel()
}

// send queues one line for a single client. A full outbox means the
// client has stopped draining; it is closed and marked for removal.
func (l *Lobby) send(c *client, msg string) {
	if c.outbox == nil {
		return
	}
	select {
	case c.outbox <- msg:
	default:
		close(c.outbox)
		c.outbox = nil
		l.log.Warn("dropping stalled client", zap.String("client_id", c.id))
	}
}

func (l *Lobby) broadcast(msg string) {
	for _, c := range l.clients {
		l.send(c, msg)
	}
	l.prune()
}

// prune removes clients whose outbox was closed by send and announces
// the new count, repeating until no further client stalls out. Their
// handlers will follow up with a Leave, which is then a no-op.
func (l *Lobby) prune() {
	for {
		kept := l.clients[:0]
		removed := 0
		for _, c := range l.clients {
			if c.outbox == nil {
				delete(l.byID, c.id)
				removed++
				continue
			}
			kept = append(kept, c)
		}
		l.clients = kept
		if removed == 0 {
			return
		}
		for _, c := range l.clients {
			l.send(c, protocol.PlayerCount(len(l.clients)))
		}
	}
}

func (l *Lobby) remove(id string) bool {
	c, ok := l.byID[id]
	if !ok {
		return false
	}
	delete(l.byID, id)
	if c.outbox != nil {
		close(c.outbox)
		c.outbox = nil
	}
	kept := l.clients[:0]
	for _, cl := range l.clients {
		if cl != c {
			kept = append(kept, cl)
		}
	}
	l.clients = kept
	return true
}
