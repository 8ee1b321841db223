package tcpserver

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/dice-game-backend/internal/lobby"
)

// scriptRoller replays a fixed sequence of rolls.
type scriptRoller struct {
	rolls []int
	next  int
}

func (s *scriptRoller) Roll() int {
	r := s.rolls[s.next%len(s.rolls)]
	s.next++
	return r
}

type testClient struct {
	conn net.Conn
	rd   *bufio.Reader
}

func dialServer(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &testClient{conn: conn, rd: bufio.NewReader(conn)}
}

func (c *testClient) sendLine(t *testing.T, line string) {
	t.Helper()
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		t.Fatalf("write %q: %v", line, err)
	}
}

func (c *testClient) readLine(t *testing.T) string {
	t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := c.rd.ReadString('\n')
	if err != nil {
		t.Fatalf("read line: %v", err)
	}
	return line[:len(line)-1]
}

func (c *testClient) expect(t *testing.T, want string) {
	t.Helper()
	if got := c.readLine(t); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func startServer(t *testing.T, rolls ...int) (string, *lobby.Lobby) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if len(rolls) == 0 {
		rolls = []int{1}
	}
	lb := lobby.New(ctx, &scriptRoller{rolls: rolls}, zap.NewNop())

	srv := New(lb, zap.NewNop())
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.Serve(ctx)

	return srv.Addr().String(), lb
}

func TestServer_FullMatchOverTCP(t *testing.T) {
	addr, _ := startServer(t, 2, 5)

	alice := dialServer(t, addr)
	alice.expect(t, "PLAYER_COUNT:1")

	bob := dialServer(t, addr)
	alice.expect(t, "PLAYER_COUNT:2")
	bob.expect(t, "PLAYER_COUNT:2")

	alice.sendLine(t, "SET_NAME:Alice")
	alice.expect(t, "NAME_SET:Alice")
	bob.sendLine(t, "SET_NAME:Bob")
	bob.expect(t, "NAME_SET:Bob")

	alice.sendLine(t, "START_GAME")
	alice.expect(t, "GAME_STARTED")
	alice.expect(t, "PLAYERS:Alice:0,Bob:0")
	bob.expect(t, "GAME_STARTED")
	bob.expect(t, "PLAYERS:Alice:0,Bob:0")

	bob.sendLine(t, "ROLL_DICE")
	alice.expect(t, "ROUND_RESULT:1;Alice:2:0,Bob:5:1;WINNER:Bob")
	bob.expect(t, "ROUND_RESULT:1;Alice:2:0,Bob:5:1;WINNER:Bob")
}

func TestServer_PreconditionErrors(t *testing.T) {
	addr, _ := startServer(t)

	c := dialServer(t, addr)
	c.expect(t, "PLAYER_COUNT:1")

	c.sendLine(t, "START_GAME")
	c.expect(t, "ERROR:Need at least 2 players to start")

	c.sendLine(t, "ROLL_DICE")
	c.expect(t, "ERROR:Game not started")

	c.sendLine(t, "GET_STATUS")
	c.expect(t, "GAME_STATUS:WAITING")
}

func TestServer_MalformedCommandKeepsConnection(t *testing.T) {
	addr, _ := startServer(t)

	c := dialServer(t, addr)
	c.expect(t, "PLAYER_COUNT:1")

	c.sendLine(t, "FROBNICATE")
	got := c.readLine(t)
	if len(got) < 6 || got[:6] != "ERROR:" {
		t.Fatalf("want ERROR reply, got %q", got)
	}

	// Still connected and serviceable.
	c.sendLine(t, "GET_STATUS")
	c.expect(t, "GAME_STATUS:WAITING")
}

func TestServer_OversizedLineGetsErrorNotDisconnect(t *testing.T) {
	addr, _ := startServer(t)

	c := dialServer(t, addr)
	c.expect(t, "PLAYER_COUNT:1")

	// Well past bufio.Scanner's default 64 KiB token limit, but under
	// the handler's cap: one bad command, not a dropped connection.
	c.sendLine(t, "JUNK:"+strings.Repeat("x", 100*1024))
	got := c.readLine(t)
	if !strings.HasPrefix(got, "ERROR:") {
		t.Fatalf("want ERROR reply, got %q", got)
	}

	c.sendLine(t, "GET_STATUS")
	c.expect(t, "GAME_STATUS:WAITING")
}

func TestServer_DisconnectBroadcastsCount(t *testing.T) {
	addr, _ := startServer(t)

	a := dialServer(t, addr)
	a.expect(t, "PLAYER_COUNT:1")
	b := dialServer(t, addr)
	a.expect(t, "PLAYER_COUNT:2")
	b.expect(t, "PLAYER_COUNT:2")
	c := dialServer(t, addr)
	a.expect(t, "PLAYER_COUNT:3")
	b.expect(t, "PLAYER_COUNT:3")
	c.expect(t, "PLAYER_COUNT:3")

	b.conn.Close()

	a.expect(t, "PLAYER_COUNT:2")
	c.expect(t, "PLAYER_COUNT:2")
}

func TestServer_BindFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	lb := lobby.New(ctx, &scriptRoller{rolls: []int{1}}, zap.NewNop())

	first := New(lb, zap.NewNop())
	if err := first.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("listen: %v", err)
	}

	second := New(lb, zap.NewNop())
	if err := second.Listen(first.Addr().String()); err == nil {
		t.Fatalf("expected bind failure on occupied port")
	}
}
