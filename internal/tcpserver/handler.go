package tcpserver

import (
	"bufio"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/dice-game-backend/internal/lobby"
)

const writeTimeout = 5 * time.Second

// maxLineLen bounds one command line. Oversized-but-bounded junk still
// gets an ERROR reply like any other bad command; only a line past this
// cap is treated as a transport failure and disconnects the client.
const maxLineLen = 1 << 20

// handle runs one connection until it closes or errors, then leaves the
// lobby. All outbound writes go through the writer goroutine so two
// broadcasts never interleave on the wire.
func handle(conn net.Conn, lb *lobby.Lobby, log *zap.Logger) {
	defer conn.Close()

	clientID := uuid.NewString()
	out := make(chan string, 16)

	lb.Inbox() <- lobby.Join{ClientID: clientID, Outbox: out}
	defer func() { lb.Inbox() <- lobby.Leave{ClientID: clientID} }()

	go writeLoop(conn, out)

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), maxLineLen)
	for sc.Scan() {
		lb.Dispatch(clientID, sc.Text())
	}
	if err := sc.Err(); err != nil {
		log.Debug("client read ended", zap.String("client_id", clientID), zap.Error(err))
	}
}

// writeLoop drains the lobby outbox onto the socket. The lobby closes
// the channel when the client is removed; a write failure closes the
// socket, which unblocks the reader, but keeps draining so the lobby is
// never left with a full outbox.
func writeLoop(conn net.Conn, out <-chan string) {
	broken := false
	for line := range out {
		if broken {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			conn.Close()
			broken = true
		}
	}
	conn.Close()
}
