package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/dice-game-backend/internal/lobby"
)

type fixedRoller struct{ value int }

func (f fixedRoller) Roll() int { return f.value }

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebSocketBridge(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lb := lobby.New(ctx, fixedRoller{value: 4}, zap.NewNop())
	srv := httptest.NewServer(SetupRoutes(lb, zap.NewNop()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PLAYER_COUNT:1", string(data))

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("GET_STATUS")))
	_, data, err = conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "GAME_STATUS:WAITING", string(data))
}
