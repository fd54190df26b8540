package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gambit-server/internal/game"
)

func dialWS(t *testing.T, ctx context.Context, baseURL string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, wsURL(baseURL), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func sendWS(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := json.Marshal(ClientMessage{Type: msgType, Payload: raw})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func readWS(t *testing.T, ctx context.Context, conn *websocket.Conn) ServerMessage {
	t.Helper()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

// decodePayload round-trips the untyped payload into the wanted shape.
func decodePayload[T any](t *testing.T, msg ServerMessage) T {
	t.Helper()

	raw, err := json.Marshal(msg.Payload)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// expectSilence asserts no message arrives within a short window.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, _, err := conn.Read(ctx)
	assert.Error(t, err, "expected no message, but one arrived")
}

func subscribeWS(t *testing.T, ctx context.Context, conn *websocket.Conn, sessionID, playerID string) {
	t.Helper()

	sendWS(t, ctx, conn, MsgJoinGame, JoinGamePayload{SessionID: sessionID, PlayerID: playerID})
	msg := readWS(t, ctx, conn)
	require.Equal(t, MsgSessionState, msg.Type)
}

func TestPushJoinGame(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, baseURL, cleanup := setupTestServer(t)
	defer cleanup()

	sessionID := createSession(t, baseURL)

	conn1 := dialWS(t, ctx, baseURL)
	sendWS(t, ctx, conn1, MsgJoinGame, JoinGamePayload{SessionID: sessionID, PlayerID: "p1"})

	msg := readWS(t, ctx, conn1)
	assert.Equal(MsgSessionState, msg.Type)
	state := decodePayload[game.Session](t, msg)
	assert.Equal(sessionID, state.ID)

	// The second subscriber is announced to the first, not to itself.
	conn2 := dialWS(t, ctx, baseURL)
	subscribeWS(t, ctx, conn2, sessionID, "p2")

	joined := readWS(t, ctx, conn1)
	assert.Equal(string(game.UpdatePlayerJoined), joined.Type)
	assert.Equal("p2", decodePayload[game.PlayerData](t, joined).PlayerID)

	expectSilence(t, conn2)
}

func TestPushJoinUnknownSession(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, baseURL, cleanup := setupTestServer(t)
	defer cleanup()

	conn := dialWS(t, ctx, baseURL)
	sendWS(t, ctx, conn, MsgJoinGame, JoinGamePayload{SessionID: "missing", PlayerID: "p1"})

	msg := readWS(t, ctx, conn)
	assert.Equal(MsgError, msg.Type)
	assert.Equal("SESSION_NOT_FOUND", decodePayload[ErrorPayload](t, msg).Code)
}

func TestPushMoveBroadcast(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, baseURL, cleanup := setupTestServer(t)
	defer cleanup()

	sessionID := createSession(t, baseURL)
	joinSession(t, baseURL, sessionID, "p1", game.White)
	joinSession(t, baseURL, sessionID, "p2", game.Black)

	conn1 := dialWS(t, ctx, baseURL)
	subscribeWS(t, ctx, conn1, sessionID, "p1")
	conn2 := dialWS(t, ctx, baseURL)
	subscribeWS(t, ctx, conn2, sessionID, "p2")
	readWS(t, ctx, conn1) // PLAYER_JOINED for p2

	sendWS(t, ctx, conn1, MsgMoveRequest, MoveRequestPayload{
		SessionID: sessionID,
		Move:      MovePayload{From: game.Pos{X: 4, Y: 6}, To: game.Pos{X: 4, Y: 4}},
	})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg := readWS(t, ctx, conn)
		assert.Equal(string(game.UpdateMove), msg.Type)
		move := decodePayload[game.MoveData](t, msg)
		assert.Equal(game.Pos{X: 4, Y: 6}, move.From)
		assert.Equal(game.Pos{X: 4, Y: 4}, move.To)
		assert.Equal(game.Pawn, move.Piece.Type)
		assert.Equal(game.White, move.Piece.Color)
	}
}

func TestPushMoveOutOfTurn(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, baseURL, cleanup := setupTestServer(t)
	defer cleanup()

	sessionID := createSession(t, baseURL)
	joinSession(t, baseURL, sessionID, "p1", game.White)
	joinSession(t, baseURL, sessionID, "p2", game.Black)

	conn1 := dialWS(t, ctx, baseURL)
	subscribeWS(t, ctx, conn1, sessionID, "p1")
	conn2 := dialWS(t, ctx, baseURL)
	subscribeWS(t, ctx, conn2, sessionID, "p2")
	readWS(t, ctx, conn1) // PLAYER_JOINED for p2

	// Black tries to move while it is white's turn: the rejection goes to
	// the sender only.
	sendWS(t, ctx, conn2, MsgMoveRequest, MoveRequestPayload{
		SessionID: sessionID,
		Move:      MovePayload{From: game.Pos{X: 4, Y: 1}, To: game.Pos{X: 4, Y: 3}},
	})

	msg := readWS(t, ctx, conn2)
	assert.Equal(MsgError, msg.Type)
	assert.Equal("NOT_YOUR_TURN", decodePayload[ErrorPayload](t, msg).Code)
	expectSilence(t, conn1)
}

func TestPushMoveWithoutJoin(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, baseURL, cleanup := setupTestServer(t)
	defer cleanup()

	sessionID := createSession(t, baseURL)
	joinSession(t, baseURL, sessionID, "p1", game.White)
	joinSession(t, baseURL, sessionID, "p2", game.Black)

	conn := dialWS(t, ctx, baseURL)
	sendWS(t, ctx, conn, MsgMoveRequest, MoveRequestPayload{
		SessionID: sessionID,
		Move:      MovePayload{From: game.Pos{X: 4, Y: 6}, To: game.Pos{X: 4, Y: 4}},
	})

	msg := readWS(t, ctx, conn)
	assert.Equal(MsgError, msg.Type)
	assert.Equal("NOT_JOINED", decodePayload[ErrorPayload](t, msg).Code)
}

func TestPushCardPlayBroadcast(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, baseURL, cleanup := setupTestServer(t)
	defer cleanup()

	sessionID := createSession(t, baseURL)
	joinSession(t, baseURL, sessionID, "p1", game.White)
	joinSession(t, baseURL, sessionID, "p2", game.Black)

	conn1 := dialWS(t, ctx, baseURL)
	subscribeWS(t, ctx, conn1, sessionID, "p1")
	conn2 := dialWS(t, ctx, baseURL)
	subscribeWS(t, ctx, conn2, sessionID, "p2")
	readWS(t, ctx, conn1) // PLAYER_JOINED for p2

	sendWS(t, ctx, conn2, MsgCardPlayRequest, CardPlayRequestPayload{
		SessionID:     sessionID,
		PiecePosition: game.Pos{X: 0, Y: 0},
	})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		msg := readWS(t, ctx, conn)
		assert.Equal(string(game.UpdateCardPlay), msg.Type)
		play := decodePayload[game.CardPlayData](t, msg)
		assert.Equal(game.Pos{X: 0, Y: 0}, play.PiecePosition)
		assert.True(play.Card.Revealed)
	}
}

func TestPushCardPlayDeckEmpty(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, baseURL, cleanup := setupTestServer(t)
	defer cleanup()

	sessionID := createSession(t, baseURL)
	require.NoError(t, s.sessions.With(sessionID, func(session *game.Session) error {
		session.Deck.Deal(session.Deck.Count())
		return nil
	}))

	conn := dialWS(t, ctx, baseURL)
	subscribeWS(t, ctx, conn, sessionID, "p1")

	sendWS(t, ctx, conn, MsgCardPlayRequest, CardPlayRequestPayload{
		SessionID:     sessionID,
		PiecePosition: game.Pos{X: 0, Y: 0},
	})

	msg := readWS(t, ctx, conn)
	assert.Equal(MsgError, msg.Type)
	assert.Equal("DECK_EMPTY", decodePayload[ErrorPayload](t, msg).Code)
}

func TestPushMalformedMessages(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, baseURL, cleanup := setupTestServer(t)
	defer cleanup()

	var tests = []struct {
		name string
		send func(t *testing.T, conn *websocket.Conn)
	}{
		{"invalid json", func(t *testing.T, conn *websocket.Conn) {
			require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))
		}},
		{"unknown type", func(t *testing.T, conn *websocket.Conn) {
			sendWS(t, ctx, conn, "TELEPORT", struct{}{})
		}},
		{"join missing fields", func(t *testing.T, conn *websocket.Conn) {
			sendWS(t, ctx, conn, MsgJoinGame, JoinGamePayload{})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := dialWS(t, ctx, baseURL)
			tt.send(t, conn)

			msg := readWS(t, ctx, conn)
			assert.Equal(t, MsgError, msg.Type)
			assert.Equal(t, "INVALID_PAYLOAD", decodePayload[ErrorPayload](t, msg).Code)
		})
	}
}

func TestPushPingPong(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, baseURL, cleanup := setupTestServer(t)
	defer cleanup()

	conn := dialWS(t, ctx, baseURL)
	sendWS(t, ctx, conn, MsgPing, struct{}{})

	msg := readWS(t, ctx, conn)
	assert.Equal(MsgPong, msg.Type)
}

func TestDisconnectNotifiesSession(t *testing.T) {
	assert := assert.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, baseURL, cleanup := setupTestServer(t)
	defer cleanup()

	sessionID := createSession(t, baseURL)

	conn1 := dialWS(t, ctx, baseURL)
	subscribeWS(t, ctx, conn1, sessionID, "p1")
	conn2 := dialWS(t, ctx, baseURL)
	subscribeWS(t, ctx, conn2, sessionID, "p2")
	readWS(t, ctx, conn1) // PLAYER_JOINED for p2

	require.NoError(t, conn2.Close(websocket.StatusNormalClosure, "bye"))

	msg := readWS(t, ctx, conn1)
	assert.Equal(string(game.UpdatePlayerDisconnected), msg.Type)
	assert.Equal("p2", decodePayload[game.PlayerData](t, msg).PlayerID)

	// Exactly one registry entry is removed.
	assert.Eventually(func() bool { return s.connections.Count() == 1 },
		2*time.Second, 50*time.Millisecond)
}
